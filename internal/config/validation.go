package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidAddr indicates the listen address is malformed.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidCacheTTL indicates the cache TTL is out of range.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL")

	// ErrInvalidCacheSize indicates the cache size is out of range.
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidTimeout indicates the provider timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid provider timeout")

	// ErrInvalidRetries indicates the retry count is out of range.
	ErrInvalidRetries = errors.New("invalid retry count")

	// ErrInvalidBackoff indicates the backoff configuration is inconsistent.
	ErrInvalidBackoff = errors.New("invalid backoff configuration")

	// ErrInvalidBreaker indicates the circuit breaker configuration is out of range.
	ErrInvalidBreaker = errors.New("invalid circuit breaker configuration")

	// ErrInvalidRateLimit indicates the inbound rate limit is out of range.
	ErrInvalidRateLimit = errors.New("invalid rate limit")
)

// Validation bounds. Chosen to catch unit mistakes (seconds vs minutes)
// rather than to police taste.
const (
	maxCacheTTL        = 24 * time.Hour
	maxCacheSize       = 100_000
	minProviderTimeout = 100 * time.Millisecond
	maxProviderTimeout = 2 * time.Minute
	maxRetriesAllowed  = 10
	maxBackoff         = 5 * time.Minute
	maxBreakerFailures = 100
	maxBreakerCooldown = time.Hour
	maxRatePerMinute   = 100_000
)

// Validate checks all configuration values and returns the first violation.
// Wrapped sentinel errors allow callers to branch with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAddr, c.Addr, err)
	}

	if c.CacheTTL <= 0 || c.CacheTTL > maxCacheTTL {
		return fmt.Errorf("%w: %v (must be in (0, %v])", ErrInvalidCacheTTL, c.CacheTTL, maxCacheTTL)
	}
	if c.CacheSize <= 0 || c.CacheSize > maxCacheSize {
		return fmt.Errorf("%w: %d (must be in [1, %d])", ErrInvalidCacheSize, c.CacheSize, maxCacheSize)
	}

	if c.ProviderTimeout < minProviderTimeout || c.ProviderTimeout > maxProviderTimeout {
		return fmt.Errorf("%w: %v (must be in [%v, %v])",
			ErrInvalidTimeout, c.ProviderTimeout, minProviderTimeout, maxProviderTimeout)
	}
	if c.MaxRetries < 0 || c.MaxRetries > maxRetriesAllowed {
		return fmt.Errorf("%w: %d (must be in [0, %d])", ErrInvalidRetries, c.MaxRetries, maxRetriesAllowed)
	}
	if c.BackoffBase <= 0 || c.BackoffBase > maxBackoff {
		return fmt.Errorf("%w: base %v (must be in (0, %v])", ErrInvalidBackoff, c.BackoffBase, maxBackoff)
	}
	if c.BackoffMax < c.BackoffBase || c.BackoffMax > maxBackoff {
		return fmt.Errorf("%w: max %v (must be in [%v, %v])",
			ErrInvalidBackoff, c.BackoffMax, c.BackoffBase, maxBackoff)
	}

	if c.BreakerThreshold <= 0 || c.BreakerThreshold > maxBreakerFailures {
		return fmt.Errorf("%w: threshold %d (must be in [1, %d])",
			ErrInvalidBreaker, c.BreakerThreshold, maxBreakerFailures)
	}
	if c.BreakerCooldown <= 0 || c.BreakerCooldown > maxBreakerCooldown {
		return fmt.Errorf("%w: cooldown %v (must be in (0, %v])",
			ErrInvalidBreaker, c.BreakerCooldown, maxBreakerCooldown)
	}

	if c.RateLimit <= 0 || c.RateLimit > maxRatePerMinute {
		return fmt.Errorf("%w: %d (must be in [1, %d])", ErrInvalidRateLimit, c.RateLimit, maxRatePerMinute)
	}

	return nil
}
