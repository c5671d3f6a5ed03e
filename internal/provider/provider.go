// Package provider implements the upstream adapters behind each registered
// tool: weather (OpenWeatherMap), mobility (Google Maps Directions),
// calendar, todo, and finance (Alpha Vantage + CoinGecko).
//
// Every adapter has two variants with identical output contracts: a live one
// backed by the upstream API and an offline one that synthesizes
// deterministic data from the input. Register picks the variant per tool
// based on which credentials the config carries, so a server with no API
// keys is still fully functional.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxResponseSize bounds upstream response bodies. None of the providers we
// call legitimately returns more than a few hundred KB.
const maxResponseSize = 4 << 20

// NewHTTPClient builds the shared upstream client. No client-level timeout:
// the executor injects a per-attempt deadline through the request context,
// and a second competing timer would just make failures harder to classify.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        16,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// getJSON performs a GET with query params and decodes the JSON body into out.
// Non-2xx statuses become errors carrying the status code so the executor's
// retry classifier can see 429/5xx.
func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeInput maps a validated input payload onto a typed input struct.
// The payload already passed schema validation, so a decode failure here is
// a programming error, not caller input.
func decodeInput[T any](input map[string]any) (T, error) {
	var v T
	b, err := json.Marshal(input)
	if err != nil {
		return v, fmt.Errorf("encoding input: %w", err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decoding input: %w", err)
	}
	return v, nil
}

// encodeOutput round-trips a typed output struct into the map shape the
// dispatcher validates and caches.
func encodeOutput(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding output: %w", err)
	}
	return m, nil
}

// seed derives a stable hash from input parts. The offline adapters use it
// so the same input always yields the same synthetic payload, which keeps
// cache-idempotence observable end to end.
func seed(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
