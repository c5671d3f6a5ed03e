package provider

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// datePattern accepts ISO calendar dates (YYYY-MM-DD). Enforced as a schema
// pattern so a malformed date fails input validation before any network cost.
const datePattern = `^\d{4}-\d{2}-\d{2}$`

// WeatherInput defines input for the weather.get_daily tool.
type WeatherInput struct {
	Location string `json:"location" jsonschema:"Location name (city, state/country) or coordinates"`
	When     string `json:"when,omitempty" jsonschema:"Whether to get weather for today or tomorrow"`
}

// WeatherOutput defines output for the weather.get_daily tool.
type WeatherOutput struct {
	TempHi       float64 `json:"temp_hi" jsonschema:"High temperature in Fahrenheit"`
	TempLo       float64 `json:"temp_lo" jsonschema:"Low temperature in Fahrenheit"`
	PrecipChance float64 `json:"precip_chance" jsonschema:"Precipitation probability in [0,1]"`
	Summary      string  `json:"summary" jsonschema:"Brief weather summary"`
	Location     string  `json:"location" jsonschema:"Resolved location name"`
	Date         string  `json:"date" jsonschema:"Date for the forecast (YYYY-MM-DD)"`
}

// MobilityInput defines input for the mobility.get_commute tool.
type MobilityInput struct {
	Origin      string `json:"origin" jsonschema:"Starting location (address, place name, or coordinates)"`
	Destination string `json:"destination" jsonschema:"Destination location (address, place name, or coordinates)"`
	Mode        string `json:"mode,omitempty" jsonschema:"Transportation mode for the commute"`
}

// MobilityOutput defines output for the mobility.get_commute tool.
type MobilityOutput struct {
	DurationMinutes int     `json:"duration_minutes" jsonschema:"Estimated travel time in minutes"`
	DistanceMiles   float64 `json:"distance_miles" jsonschema:"Total distance in miles"`
	RouteSummary    string  `json:"route_summary" jsonschema:"Brief description of the route"`
	TrafficStatus   string  `json:"traffic_status" jsonschema:"Current traffic conditions"`
	Origin          string  `json:"origin" jsonschema:"Resolved origin location"`
	Destination     string  `json:"destination" jsonschema:"Resolved destination location"`
	Mode            string  `json:"mode" jsonschema:"Transportation mode used"`
}

// CalendarInput defines input for the calendar.list_events tool.
type CalendarInput struct {
	Date string `json:"date" jsonschema:"Date to list events for (YYYY-MM-DD format)"`
}

// CalendarEvent is a single event in a calendar.list_events response.
type CalendarEvent struct {
	ID          string   `json:"id" jsonschema:"Unique event identifier"`
	Title       string   `json:"title" jsonschema:"Event title/summary"`
	StartTime   string   `json:"start_time" jsonschema:"Event start time (RFC 3339)"`
	EndTime     string   `json:"end_time" jsonschema:"Event end time (RFC 3339)"`
	Location    string   `json:"location,omitempty" jsonschema:"Event location"`
	Description string   `json:"description,omitempty" jsonschema:"Event description"`
	AllDay      bool     `json:"all_day" jsonschema:"Whether this is an all-day event"`
	Attendees   []string `json:"attendees,omitempty" jsonschema:"List of attendee emails"`
}

// CalendarOutput defines output for the calendar.list_events tool.
type CalendarOutput struct {
	Date        string          `json:"date" jsonschema:"Date queried for events"`
	Events      []CalendarEvent `json:"events" jsonschema:"List of events for the date"`
	TotalEvents int             `json:"total_events" jsonschema:"Total number of events found"`
}

// TodoInput defines input for the todo.list tool.
type TodoInput struct {
	Bucket           string `json:"bucket,omitempty" jsonschema:"Category/bucket to list todos from"`
	IncludeCompleted bool   `json:"include_completed,omitempty" jsonschema:"Whether to include completed todo items"`
}

// TodoItem is a single item in a todo.list response.
type TodoItem struct {
	ID        string   `json:"id" jsonschema:"Unique todo item identifier"`
	Title     string   `json:"title" jsonschema:"Todo item title/description"`
	Priority  string   `json:"priority" jsonschema:"Priority level of the todo item"`
	Completed bool     `json:"completed" jsonschema:"Whether the item is completed"`
	CreatedAt string   `json:"created_at" jsonschema:"When the todo was created (RFC 3339)"`
	DueDate   string   `json:"due_date,omitempty" jsonschema:"Due date if set (RFC 3339)"`
	Bucket    string   `json:"bucket" jsonschema:"Category/bucket this todo belongs to"`
	Tags      []string `json:"tags,omitempty" jsonschema:"Tags associated with the todo"`
}

// TodoOutput defines output for the todo.list tool.
type TodoOutput struct {
	Bucket         string     `json:"bucket" jsonschema:"Bucket/category queried"`
	Items          []TodoItem `json:"items" jsonschema:"List of todo items"`
	TotalItems     int        `json:"total_items" jsonschema:"Total number of items found"`
	CompletedCount int        `json:"completed_count" jsonschema:"Number of completed items"`
	PendingCount   int        `json:"pending_count" jsonschema:"Number of pending items"`
}

// FinanceInput defines input for the finance.get_quotes tool.
type FinanceInput struct {
	Symbols  []string `json:"symbols" jsonschema:"Stock tickers (e.g. MSFT) or crypto symbols (e.g. BTC)"`
	DataType string   `json:"data_type,omitempty" jsonschema:"Type of financial data: stocks, crypto, or mixed"`
}

// FinanceItem is a single instrument in a finance.get_quotes response.
type FinanceItem struct {
	Symbol        string  `json:"symbol" jsonschema:"Symbol/ticker"`
	Name          string  `json:"name" jsonschema:"Full instrument name"`
	Price         float64 `json:"price" jsonschema:"Current price"`
	Change        float64 `json:"change" jsonschema:"Price change"`
	ChangePercent float64 `json:"change_percent" jsonschema:"Percentage change"`
	Currency      string  `json:"currency" jsonschema:"Currency"`
	DataType      string  `json:"data_type" jsonschema:"stocks or crypto"`
	LastUpdated   string  `json:"last_updated" jsonschema:"Last update time (RFC 3339)"`
}

// FinanceOutput defines output for the finance.get_quotes tool.
type FinanceOutput struct {
	RequestTime  string        `json:"request_time" jsonschema:"When the request was made (RFC 3339)"`
	TotalItems   int           `json:"total_items" jsonschema:"Number of instruments returned"`
	MarketStatus string        `json:"market_status" jsonschema:"Market status (open/closed/mixed)"`
	Data         []FinanceItem `json:"data" jsonschema:"Quote data per symbol"`
	Summary      string        `json:"summary" jsonschema:"Brief summary of the quotes"`
}

// weatherInputSchema declares the weather.get_daily input contract:
// a required location plus an enumerated, defaulted "when".
func weatherInputSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[WeatherInput](nil)
	if err != nil {
		return nil, err
	}
	withEnum(s, "when", json.RawMessage(`"today"`), "today", "tomorrow")
	return s, nil
}

func weatherOutputSchema() (*jsonschema.Schema, error) {
	return jsonschema.For[WeatherOutput](nil)
}

func mobilityInputSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[MobilityInput](nil)
	if err != nil {
		return nil, err
	}
	withEnum(s, "mode", json.RawMessage(`"driving"`), "driving", "transit", "bicycling", "walking")
	return s, nil
}

func mobilityOutputSchema() (*jsonschema.Schema, error) {
	return jsonschema.For[MobilityOutput](nil)
}

func calendarInputSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[CalendarInput](nil)
	if err != nil {
		return nil, err
	}
	s.Properties["date"].Pattern = datePattern
	return s, nil
}

func calendarOutputSchema() (*jsonschema.Schema, error) {
	return jsonschema.For[CalendarOutput](nil)
}

func todoInputSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[TodoInput](nil)
	if err != nil {
		return nil, err
	}
	withEnum(s, "bucket", json.RawMessage(`"work"`), "work", "home", "errands", "personal")
	return s, nil
}

func todoOutputSchema() (*jsonschema.Schema, error) {
	return jsonschema.For[TodoOutput](nil)
}

func financeInputSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[FinanceInput](nil)
	if err != nil {
		return nil, err
	}
	one := 1
	s.Properties["symbols"].MinItems = &one
	withEnum(s, "data_type", json.RawMessage(`"mixed"`), "stocks", "crypto", "mixed")
	return s, nil
}

func financeOutputSchema() (*jsonschema.Schema, error) {
	return jsonschema.For[FinanceOutput](nil)
}

// withEnum narrows a generated string property to an enum with a default.
// Inferred schemas mark every non-omitempty field required; defaulted fields
// carry omitempty tags, so they are already optional.
func withEnum(s *jsonschema.Schema, field string, def json.RawMessage, values ...string) {
	p, ok := s.Properties[field]
	if !ok {
		panic(fmt.Sprintf("schema has no property %q", field))
	}
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	p.Enum = enum
	p.Default = def
}
