package provider

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/time/rate"

	"github.com/dailymcp/daily/internal/config"
	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/tools"
)

// Tool names, as exposed to calling agents.
const (
	ToolWeather  = "weather.get_daily"
	ToolMobility = "mobility.get_commute"
	ToolCalendar = "calendar.list_events"
	ToolTodo     = "todo.list"
	ToolFinance  = "finance.get_quotes"
)

// Register builds all tool specs from config, registers them, and freezes
// the registry. Each networked tool gets the live adapter when its
// credential is configured and the offline one otherwise; the adapter choice
// is logged once at startup so an operator can tell which mode each tool
// runs in.
func Register(reg *tools.Registry, cfg *config.Config, logger log.Logger) error {
	if logger == nil {
		logger = log.NewNop()
	}
	client := NewHTTPClient()

	resilience := tools.ResilienceConfig{
		Timeout:          cfg.ProviderTimeout,
		MaxRetries:       cfg.MaxRetries,
		BackoffBase:      cfg.BackoffBase,
		BackoffMax:       cfg.BackoffMax,
		FailureThreshold: cfg.BreakerThreshold,
		Cooldown:         cfg.BreakerCooldown,
	}

	specs := []struct {
		name        string
		description string
		input       func() (*jsonschema.Schema, error)
		output      func() (*jsonschema.Schema, error)
		adapter     tools.Adapter
		live        bool
		limited     bool
	}{
		{
			name:        ToolWeather,
			description: "Get the daily weather forecast (high/low, precipitation chance, summary) for a location, today or tomorrow.",
			input:       weatherInputSchema,
			output:      weatherOutputSchema,
			adapter:     weatherAdapter(cfg, client, logger),
			live:        cfg.WeatherAPIKey != "",
			limited:     true,
		},
		{
			name:        ToolMobility,
			description: "Get commute time, distance, route, and traffic conditions between two locations.",
			input:       mobilityInputSchema,
			output:      mobilityOutputSchema,
			adapter:     mobilityAdapter(cfg, client, logger),
			live:        cfg.MapsAPIKey != "",
			limited:     true,
		},
		{
			name:        ToolCalendar,
			description: "List calendar events for a specific date.",
			input:       calendarInputSchema,
			output:      calendarOutputSchema,
			adapter:     NewCalendarAdapter(),
		},
		{
			name:        ToolTodo,
			description: "List todo items from a bucket (work, home, errands, personal), urgent items first.",
			input:       todoInputSchema,
			output:      todoOutputSchema,
			adapter:     NewTodoAdapter(),
		},
		{
			name:        ToolFinance,
			description: "Get current quotes for stock and cryptocurrency symbols.",
			input:       financeInputSchema,
			output:      financeOutputSchema,
			adapter:     financeAdapter(cfg, client, logger),
			live:        cfg.AlphaVantageKey != "",
			limited:     true,
		},
	}

	for _, s := range specs {
		input, err := s.input()
		if err != nil {
			return fmt.Errorf("building input schema for %s: %w", s.name, err)
		}
		output, err := s.output()
		if err != nil {
			return fmt.Errorf("building output schema for %s: %w", s.name, err)
		}

		spec := tools.Spec{
			Name:         s.name,
			Description:  s.description,
			InputSchema:  input,
			OutputSchema: output,
			CacheTTL:     cfg.CacheTTL,
			CacheSize:    cfg.CacheSize,
			Resilience:   resilience,
			Adapter:      s.adapter,
		}
		// Throttle only tools that can reach a metered upstream.
		if s.limited && s.live {
			spec.Limiter = upstreamLimiter(cfg.RateLimit)
		}

		if err := reg.Register(spec); err != nil {
			return fmt.Errorf("registering %s: %w", s.name, err)
		}
		logger.Info("tool registered", "tool", s.name, "live", s.live)
	}

	reg.Freeze()
	return nil
}

func weatherAdapter(cfg *config.Config, client *http.Client, logger log.Logger) tools.Adapter {
	if cfg.WeatherAPIKey == "" {
		return NewMockWeatherAdapter()
	}
	return NewWeatherAdapter(cfg.WeatherAPIKey, client, logger)
}

func mobilityAdapter(cfg *config.Config, client *http.Client, logger log.Logger) tools.Adapter {
	if cfg.MapsAPIKey == "" {
		return NewMockMobilityAdapter()
	}
	return NewMobilityAdapter(cfg.MapsAPIKey, client, logger)
}

func financeAdapter(cfg *config.Config, client *http.Client, logger log.Logger) tools.Adapter {
	if cfg.AlphaVantageKey == "" {
		return NewMockFinanceAdapter()
	}
	return NewFinanceAdapter(cfg.AlphaVantageKey, client, logger)
}

// upstreamLimiter spreads the per-minute budget evenly with a small burst,
// so a batch of morning-routine calls doesn't trip provider quotas.
func upstreamLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		perMinute = config.DefaultRatePerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5)
}
