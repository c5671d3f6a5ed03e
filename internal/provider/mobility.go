package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/tools"
)

const googleDirectionsURL = "https://maps.googleapis.com/maps/api/directions/json"

const metersPerMile = 1609.344

// MobilityAdapter fetches a route from the Google Maps Directions API and
// condenses the first route's first leg into a commute summary.
type MobilityAdapter struct {
	apiKey string
	client *http.Client
	logger log.Logger

	// Overridable in tests.
	directionsURL string
}

// NewMobilityAdapter creates the live mobility adapter.
func NewMobilityAdapter(apiKey string, client *http.Client, logger log.Logger) *MobilityAdapter {
	if client == nil {
		client = NewHTTPClient()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &MobilityAdapter{
		apiKey:        apiKey,
		client:        client,
		logger:        logger,
		directionsURL: googleDirectionsURL,
	}
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		Legs []directionsLeg `json:"legs"`
	} `json:"routes"`
}

type directionsLeg struct {
	StartAddress string          `json:"start_address"`
	EndAddress   string          `json:"end_address"`
	Duration     durationValue   `json:"duration"`
	Traffic      durationValue   `json:"duration_in_traffic"`
	Distance     durationValue   `json:"distance"`
	Steps        []directionStep `json:"steps"`
}

type durationValue struct {
	Value int64 `json:"value"`
}

type directionStep struct {
	HTMLInstructions string `json:"html_instructions"`
}

// Fetch queries the Directions API with live traffic for driving routes.
func (a *MobilityAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[MobilityInput](input)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("origin", in.Origin)
	params.Set("destination", in.Destination)
	params.Set("mode", in.Mode)
	params.Set("departure_time", "now")
	params.Set("key", a.apiKey)

	var resp directionsResponse
	if err := getJSON(ctx, a.client, a.directionsURL, params, &resp); err != nil {
		return nil, fmt.Errorf("fetching directions: %w", err)
	}
	if err := directionsStatusErr(resp); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("%w: directions response has no route legs", tools.ErrMalformedProviderResponse)
	}

	leg := resp.Routes[0].Legs[0]
	return MobilityOutput{
		DurationMinutes: int(math.Round(float64(leg.Duration.Value) / 60)),
		DistanceMiles:   round1(float64(leg.Distance.Value) / metersPerMile),
		RouteSummary:    routeSummary(leg.Steps),
		TrafficStatus:   trafficStatus(leg, in.Mode),
		Origin:          leg.StartAddress,
		Destination:     leg.EndAddress,
		Mode:            in.Mode,
	}, nil
}

func (a *MobilityAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(MobilityOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	return encodeOutput(out)
}

// directionsStatusErr maps the API's status field onto error semantics.
// Quota statuses carry wording the retry classifier treats as retryable;
// not-found statuses fail fast.
func directionsStatusErr(resp directionsResponse) error {
	switch resp.Status {
	case "OK":
		return nil
	case "NOT_FOUND", "ZERO_RESULTS":
		return fmt.Errorf("no route found (%s): %s", resp.Status, resp.ErrorMessage)
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return fmt.Errorf("directions quota exceeded (%s)", resp.Status)
	case "UNKNOWN_ERROR":
		return fmt.Errorf("directions service unavailable (%s)", resp.Status)
	default:
		return fmt.Errorf("directions request rejected (%s): %s", resp.Status, resp.ErrorMessage)
	}
}

// routeSummary extracts up to three road names from turn instructions.
func routeSummary(steps []directionStep) string {
	var roads []string
	seen := make(map[string]bool)
	for _, step := range steps {
		instr := strings.ToLower(step.HTMLInstructions)
		idx := strings.Index(instr, "on ")
		if idx < 0 {
			continue
		}
		words := strings.Fields(instr[idx+len("on "):])
		if len(words) == 0 {
			continue
		}
		if len(words) > 2 {
			words = words[:2]
		}
		road := strings.Trim(strings.Join(words, " "), ",.")
		if len(road) <= 2 || seen[road] {
			continue
		}
		seen[road] = true
		roads = append(roads, road)
		if len(roads) == 3 {
			break
		}
	}
	if len(roads) == 0 {
		return "Most direct route available"
	}
	return "via " + strings.Join(roads, ", ")
}

// trafficStatus grades congestion by comparing live and free-flow durations.
// Only meaningful for driving.
func trafficStatus(leg directionsLeg, mode string) string {
	if mode != "driving" {
		return "N/A"
	}
	normal := leg.Duration.Value
	live := leg.Traffic.Value
	if live == 0 {
		live = normal
	}
	switch {
	case normal == 0:
		return "N/A"
	case float64(live) <= float64(normal)*1.1:
		return "Light traffic"
	case float64(live) <= float64(normal)*1.3:
		return "Moderate traffic"
	case float64(live) <= float64(normal)*1.5:
		return "Heavy traffic"
	default:
		return "Very heavy traffic"
	}
}

// MockMobilityAdapter synthesizes a deterministic commute from the input.
type MockMobilityAdapter struct{}

// NewMockMobilityAdapter creates the offline mobility adapter.
func NewMockMobilityAdapter() *MockMobilityAdapter {
	return &MockMobilityAdapter{}
}

var mockRouteSummaries = map[string]string{
	"driving":   "via Main St and Highway 101",
	"transit":   "via Metro Red Line and Bus Route 42",
	"bicycling": "via bike lanes on Oak Ave",
	"walking":   "via pedestrian paths",
}

var mockBaseDuration = map[string]int{
	"driving":   25,
	"transit":   45,
	"bicycling": 60,
	"walking":   120,
}

var mockBaseDistance = map[string]float64{
	"driving":   15.0,
	"transit":   12.0,
	"bicycling": 8.0,
	"walking":   3.0,
}

func (a *MockMobilityAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[MobilityInput](input)
	if err != nil {
		return nil, err
	}

	h := seed("mobility", strings.ToLower(in.Origin), strings.ToLower(in.Destination), in.Mode)
	duration := mockBaseDuration[in.Mode] + int(h%21) - 10 // +/- 10 minutes
	if duration < 1 {
		duration = 1
	}
	distance := mockBaseDistance[in.Mode] + float64((h>>8)%61)/10 - 3 // +/- 3 miles
	if distance < 0.1 {
		distance = 0.1
	}

	traffic := "N/A"
	if in.Mode == "driving" {
		grades := []string{"Light traffic", "Moderate traffic", "Heavy traffic"}
		traffic = grades[(h>>16)%uint64(len(grades))]
	}

	return MobilityOutput{
		DurationMinutes: duration,
		DistanceMiles:   round1(distance),
		RouteSummary:    mockRouteSummaries[in.Mode],
		TrafficStatus:   traffic,
		Origin:          in.Origin,
		Destination:     in.Destination,
		Mode:            in.Mode,
	}, nil
}

func (a *MockMobilityAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(MobilityOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	return encodeOutput(out)
}
