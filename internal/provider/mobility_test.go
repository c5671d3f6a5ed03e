package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMockMobilityAdapter_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewMockMobilityAdapter()
	input := map[string]any{"origin": "Home", "destination": "Office", "mode": "driving"}

	first, err := a.Fetch(context.Background(), input)
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	second, err := a.Fetch(context.Background(), input)
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	if first != second {
		t.Errorf("same input produced different commutes:\n%+v\n%+v", first, second)
	}
}

func TestMockMobilityAdapter_Modes(t *testing.T) {
	t.Parallel()

	a := NewMockMobilityAdapter()
	for _, mode := range []string{"driving", "transit", "bicycling", "walking"} {
		raw, err := a.Fetch(context.Background(), map[string]any{
			"origin": "A", "destination": "B", "mode": mode,
		})
		if err != nil {
			t.Fatalf("Fetch(%s) = %v", mode, err)
		}
		out := raw.(MobilityOutput)
		if out.Mode != mode {
			t.Errorf("mode echoed as %q, want %q", out.Mode, mode)
		}
		if out.DurationMinutes < 1 {
			t.Errorf("%s: duration %d below 1 minute floor", mode, out.DurationMinutes)
		}
		if out.DistanceMiles < 0.1 {
			t.Errorf("%s: distance %v below 0.1 mile floor", mode, out.DistanceMiles)
		}
		if mode != "driving" && out.TrafficStatus != "N/A" {
			t.Errorf("%s: traffic = %q, want N/A for non-driving", mode, out.TrafficStatus)
		}
	}
}

func TestMobilityAdapter_LiveDirections(t *testing.T) {
	defer verifyNoLeaks(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("mode"); got != "driving" {
			t.Errorf("mode param = %q", got)
		}
		// 1800 s normal, 2400 s in traffic (ratio 1.33 -> heavy), 16093 m.
		fmt.Fprint(w, `{
			"status": "OK",
			"routes": [{"legs": [{
				"start_address": "1 Main St, Springfield",
				"end_address": "100 Market St, Springfield",
				"duration": {"value": 1800},
				"duration_in_traffic": {"value": 2400},
				"distance": {"value": 16093},
				"steps": [
					{"html_instructions": "Turn left on Main St"},
					{"html_instructions": "Merge on Highway 101 north"},
					{"html_instructions": "Continue on Main St"}
				]
			}]}]
		}`)
	}))
	defer srv.Close()

	a := NewMobilityAdapter("test-key", testClient(t), nil)
	a.directionsURL = srv.URL

	raw, err := a.Fetch(context.Background(), map[string]any{
		"origin": "home", "destination": "work", "mode": "driving",
	})
	if err != nil {
		t.Fatalf("Fetch() = %v", err)
	}
	out := raw.(MobilityOutput)

	if out.DurationMinutes != 30 {
		t.Errorf("duration = %d min, want 30", out.DurationMinutes)
	}
	if out.DistanceMiles != 10.0 {
		t.Errorf("distance = %v mi, want 10.0", out.DistanceMiles)
	}
	if out.TrafficStatus != "Heavy traffic" {
		t.Errorf("traffic = %q, want Heavy traffic at 1.33x", out.TrafficStatus)
	}
	if out.Origin != "1 Main St, Springfield" || out.Destination != "100 Market St, Springfield" {
		t.Errorf("addresses not taken from the resolved leg: %q -> %q", out.Origin, out.Destination)
	}
	if !strings.HasPrefix(out.RouteSummary, "via ") {
		t.Errorf("route summary = %q", out.RouteSummary)
	}
	if strings.Count(out.RouteSummary, "main st") > 1 {
		t.Errorf("route summary repeats roads: %q", out.RouteSummary)
	}
}

func TestMobilityAdapter_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    string
		wantErr   string
		retryable bool
	}{
		{"ZERO_RESULTS", "no route found", false},
		{"NOT_FOUND", "no route found", false},
		{"OVER_QUERY_LIMIT", "quota exceeded", true},
		{"REQUEST_DENIED", "rejected", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"status": %q}`, tt.status)
			}))
			defer srv.Close()

			a := NewMobilityAdapter("test-key", testClient(t), nil)
			a.directionsURL = srv.URL

			_, err := a.Fetch(context.Background(), map[string]any{
				"origin": "a", "destination": "b", "mode": "driving",
			})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Fetch() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestTrafficStatus_Grades(t *testing.T) {
	t.Parallel()

	leg := func(normal, traffic int64) directionsLeg {
		var l directionsLeg
		l.Duration.Value = normal
		l.Traffic.Value = traffic
		return l
	}

	tests := []struct {
		name string
		leg  directionsLeg
		mode string
		want string
	}{
		{"non-driving", leg(600, 1200), "walking", "N/A"},
		{"free flow", leg(600, 620), "driving", "Light traffic"},
		{"moderate", leg(600, 750), "driving", "Moderate traffic"},
		{"heavy", leg(600, 880), "driving", "Heavy traffic"},
		{"gridlock", leg(600, 1300), "driving", "Very heavy traffic"},
		{"no live data", leg(600, 0), "driving", "Light traffic"},
	}
	for _, tt := range tests {
		if got := trafficStatus(tt.leg, tt.mode); got != tt.want {
			t.Errorf("%s: trafficStatus() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
