package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dailymcp/daily/internal/tools"
)

func TestMockWeatherAdapter_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewMockWeatherAdapter()
	input := map[string]any{"location": "San Francisco, CA", "when": "today"}

	first, err := a.Fetch(context.Background(), input)
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	second, err := a.Fetch(context.Background(), input)
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	if first != second {
		t.Errorf("same input produced different forecasts:\n%+v\n%+v", first, second)
	}
}

func TestMockWeatherAdapter_OutputInvariants(t *testing.T) {
	t.Parallel()

	a := NewMockWeatherAdapter()
	a.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }

	for _, location := range []string{"NYC", "Tokyo", "Reykjavik", "a", ""} {
		raw, err := a.Fetch(context.Background(), map[string]any{"location": location, "when": "today"})
		if err != nil {
			t.Fatalf("Fetch(%q) = %v", location, err)
		}
		out := raw.(WeatherOutput)
		if out.TempHi < out.TempLo {
			t.Errorf("%q: temp_hi %v < temp_lo %v", location, out.TempHi, out.TempLo)
		}
		if out.PrecipChance < 0 || out.PrecipChance > 1 {
			t.Errorf("%q: precip_chance %v outside [0,1]", location, out.PrecipChance)
		}
		if !strings.HasSuffix(out.Location, "(mock)") {
			t.Errorf("%q: synthetic result not labeled: %q", location, out.Location)
		}
		if out.Date != "2025-03-10" {
			t.Errorf("%q: date = %q, want 2025-03-10", location, out.Date)
		}
	}
}

func TestMockWeatherAdapter_TomorrowShiftsDate(t *testing.T) {
	t.Parallel()

	a := NewMockWeatherAdapter()
	a.now = func() time.Time { return time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC) }

	raw, err := a.Fetch(context.Background(), map[string]any{"location": "NYC", "when": "tomorrow"})
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	if got := raw.(WeatherOutput).Date; got != "2026-01-01" {
		t.Errorf("date = %q, want year rollover to 2026-01-01", got)
	}
}

func TestWeatherAdapter_LiveForecast(t *testing.T) {
	defer verifyNoLeaks(t)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/geo"):
			if got := r.URL.Query().Get("q"); got != "Portland, OR" {
				t.Errorf("geocode query = %q", got)
			}
			fmt.Fprint(w, `[{"name":"Portland","lat":45.52,"lon":-122.68,"country":"US"}]`)
		default:
			resp := forecastResponse{List: []forecastSlice{
				slice(day.Add(6*time.Hour), 55.2, 0.1, "scattered clouds"),
				slice(day.Add(12*time.Hour), 68.7, 0.35, "light rain"),
				slice(day.Add(18*time.Hour), 61.0, 0.2, "scattered clouds"),
				slice(day.Add(30*time.Hour), 90.0, 0.9, "clear sky"), // tomorrow, must be ignored
			}}
			_ = json.NewEncoder(w).Encode(resp)
		}
	}))
	defer srv.Close()

	a := NewWeatherAdapter("test-key", testClient(t), nil)
	a.now = func() time.Time { return now }
	a.geoURL = srv.URL + "/geo"
	a.forecastURL = srv.URL + "/forecast"

	raw, err := a.Fetch(context.Background(), map[string]any{"location": "Portland, OR", "when": "today"})
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	out := raw.(WeatherOutput)

	if out.TempHi != 68.7 || out.TempLo != 55.2 {
		t.Errorf("hi/lo = %v/%v, want 68.7/55.2", out.TempHi, out.TempLo)
	}
	if out.PrecipChance != 0.35 {
		t.Errorf("precip_chance = %v, want worst slice 0.35", out.PrecipChance)
	}
	if out.Summary != "Light Rain" {
		t.Errorf("summary = %q, want midday slice title-cased", out.Summary)
	}
	if out.Location != "Portland, US" {
		t.Errorf("location = %q", out.Location)
	}
	if out.Date != "2025-06-02" {
		t.Errorf("date = %q", out.Date)
	}
}

func TestWeatherAdapter_LocationNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	a := NewWeatherAdapter("test-key", testClient(t), nil)
	a.geoURL = srv.URL

	_, err := a.Fetch(context.Background(), map[string]any{"location": "Nowhereville", "when": "today"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Fetch() = %v, want not-found error", err)
	}
}

func TestWeatherAdapter_NoSlicesForDateIsContractError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/geo") {
			fmt.Fprint(w, `[{"name":"Portland","lat":45.5,"lon":-122.7,"country":"US"}]`)
			return
		}
		fmt.Fprint(w, `{"list":[]}`)
	}))
	defer srv.Close()

	a := NewWeatherAdapter("test-key", testClient(t), nil)
	a.geoURL = srv.URL + "/geo"
	a.forecastURL = srv.URL + "/forecast"

	_, err := a.Fetch(context.Background(), map[string]any{"location": "Portland", "when": "today"})
	if !errors.Is(err, tools.ErrMalformedProviderResponse) {
		t.Errorf("Fetch() = %v, want ErrMalformedProviderResponse", err)
	}
}

func TestWeatherAdapter_NormalizeShape(t *testing.T) {
	t.Parallel()

	a := NewMockWeatherAdapter()
	raw, err := a.Fetch(context.Background(), map[string]any{"location": "NYC", "when": "today"})
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	m, err := a.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() = %v", err)
	}
	for _, key := range []string{"temp_hi", "temp_lo", "precip_chance", "summary", "location", "date"} {
		if _, ok := m[key]; !ok {
			t.Errorf("normalized output missing %q", key)
		}
	}
}

func TestWeatherAdapter_NormalizeRejectsWrongType(t *testing.T) {
	t.Parallel()

	if _, err := NewMockWeatherAdapter().Normalize("not a forecast"); err == nil {
		t.Error("Normalize(string) should fail")
	}
}

func slice(at time.Time, temp, pop float64, desc string) forecastSlice {
	var s forecastSlice
	s.Dt = at.Unix()
	s.Main.Temp = temp
	s.Pop = pop
	s.Weather = []struct {
		Description string `json:"description"`
	}{{Description: desc}}
	return s
}
