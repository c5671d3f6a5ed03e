package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/tools"
)

const (
	openWeatherGeoURL      = "https://api.openweathermap.org/geo/1.0/direct"
	openWeatherForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
)

// WeatherAdapter resolves a location via the OpenWeatherMap geocoding API,
// pulls the 5-day/3-hour forecast, and condenses the slices for the target
// date into a single daily summary.
type WeatherAdapter struct {
	apiKey string
	client *http.Client
	logger log.Logger
	now    func() time.Time

	// Overridable in tests.
	geoURL      string
	forecastURL string
}

// NewWeatherAdapter creates the live weather adapter.
func NewWeatherAdapter(apiKey string, client *http.Client, logger log.Logger) *WeatherAdapter {
	if client == nil {
		client = NewHTTPClient()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &WeatherAdapter{
		apiKey:      apiKey,
		client:      client,
		logger:      logger,
		now:         time.Now,
		geoURL:      openWeatherGeoURL,
		forecastURL: openWeatherForecastURL,
	}
}

type geocodeEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

type forecastResponse struct {
	List []forecastSlice `json:"list"`
}

type forecastSlice struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Pop     float64 `json:"pop"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Fetch geocodes the location and retrieves the forecast for the target date.
func (a *WeatherAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[WeatherInput](input)
	if err != nil {
		return nil, err
	}

	var entries []geocodeEntry
	params := url.Values{}
	params.Set("q", in.Location)
	params.Set("limit", "1")
	params.Set("appid", a.apiKey)
	if err := getJSON(ctx, a.client, a.geoURL, params, &entries); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", in.Location, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("location %q not found", in.Location)
	}
	place := entries[0]
	display := place.Name
	if place.Country != "" {
		display += ", " + place.Country
	}

	var forecast forecastResponse
	params = url.Values{}
	params.Set("lat", strconv.FormatFloat(place.Lat, 'f', 4, 64))
	params.Set("lon", strconv.FormatFloat(place.Lon, 'f', 4, 64))
	params.Set("units", "imperial")
	params.Set("appid", a.apiKey)
	if err := getJSON(ctx, a.client, a.forecastURL, params, &forecast); err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	return a.summarize(forecast, display, in.When)
}

// Normalize maps the typed forecast summary into the declared output shape.
func (a *WeatherAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(WeatherOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	return encodeOutput(out)
}

// summarize collapses the 3-hour forecast slices for the target date into
// daily high/low, worst-case precipitation, and a midday summary.
func (a *WeatherAdapter) summarize(forecast forecastResponse, location, when string) (WeatherOutput, error) {
	target := targetDate(a.now(), when)

	var slices []forecastSlice
	for _, s := range forecast.List {
		if time.Unix(s.Dt, 0).UTC().Format("2006-01-02") == target {
			slices = append(slices, s)
		}
	}
	if len(slices) == 0 {
		return WeatherOutput{}, fmt.Errorf("%w: no forecast entries for %s", tools.ErrMalformedProviderResponse, target)
	}

	hi, lo := slices[0].Main.Temp, slices[0].Main.Temp
	precip := 0.0
	for _, s := range slices {
		if s.Main.Temp > hi {
			hi = s.Main.Temp
		}
		if s.Main.Temp < lo {
			lo = s.Main.Temp
		}
		if s.Pop > precip {
			precip = s.Pop
		}
	}

	summary := "No summary available"
	midday := slices[len(slices)/2]
	if len(midday.Weather) > 0 {
		summary = titleCase(midday.Weather[0].Description)
	}

	return WeatherOutput{
		TempHi:       round1(hi),
		TempLo:       round1(lo),
		PrecipChance: clamp(precip, 0, 1),
		Summary:      summary,
		Location:     location,
		Date:         target,
	}, nil
}

// MockWeatherAdapter synthesizes a deterministic forecast from the input, so
// the server works with no credentials and repeated calls produce identical
// (cacheable) results. Locations are labeled "(mock)" so callers can tell.
type MockWeatherAdapter struct {
	now func() time.Time
}

// NewMockWeatherAdapter creates the offline weather adapter.
func NewMockWeatherAdapter() *MockWeatherAdapter {
	return &MockWeatherAdapter{now: time.Now}
}

var mockSummaries = []string{
	"Clear skies",
	"Partly cloudy with light winds",
	"Overcast",
	"Scattered showers",
	"Morning fog clearing by noon",
	"Sunny and mild",
}

func (a *MockWeatherAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[WeatherInput](input)
	if err != nil {
		return nil, err
	}

	h := seed("weather", strings.ToLower(in.Location), in.When)
	base := 50.0 + float64(h%30)      // 50..79 F
	spread := 8.0 + float64((h>>8)%8) // hi-lo gap 8..15 F
	precip := float64((h>>16)%101) / 100

	return WeatherOutput{
		TempHi:       round1(base + spread/2),
		TempLo:       round1(base - spread/2),
		PrecipChance: clamp(precip, 0, 1),
		Summary:      mockSummaries[(h>>24)%uint64(len(mockSummaries))],
		Location:     in.Location + " (mock)",
		Date:         targetDate(a.now(), in.When),
	}, nil
}

func (a *MockWeatherAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(WeatherOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	return encodeOutput(out)
}

// targetDate resolves "today"/"tomorrow" to an ISO date.
func targetDate(now time.Time, when string) string {
	d := now
	if when == "tomorrow" {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// titleCase capitalizes each word of a provider description ("light rain"
// becomes "Light Rain").
func titleCase(s string) string {
	var b strings.Builder
	prevSpace := true
	for _, r := range s {
		if prevSpace {
			r = unicode.ToUpper(r)
		}
		prevSpace = unicode.IsSpace(r)
		b.WriteRune(r)
	}
	return b.String()
}
