package provider

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// CalendarAdapter serves a synthetic schedule. There is no live calendar
// backend yet; events are generated deterministically from the requested
// date so repeated queries agree with each other and with the cache.
// Only dates within a week of now have events, and only past the schema's
// format check do we parse the date at all.
type CalendarAdapter struct {
	now func() time.Time
}

// NewCalendarAdapter creates the calendar adapter.
func NewCalendarAdapter() *CalendarAdapter {
	return &CalendarAdapter{now: time.Now}
}

type meetingKind struct {
	title       string
	description string
	location    string
	minutes     int
}

var morningMeetings = []meetingKind{
	{"Project Review", "Review project progress and blockers", "Zoom", 60},
	{"Client Call", "Weekly check-in with client stakeholders", "Zoom", 60},
	{"Design Review", "Review latest design mockups", "Zoom", 60},
	{"Planning Session", "Sprint planning and task breakdown", "Zoom", 60},
}

var afternoonMeetings = []meetingKind{
	{"One-on-One", "Weekly 1:1 with manager", "Conference Room B", 45},
	{"All Hands", "Company all-hands meeting", "Conference Room B", 45},
	{"Workshop", "Technical workshop or training", "Conference Room B", 45},
	{"Demo", "Product demo and feedback session", "Conference Room B", 45},
}

var weekendActivities = []meetingKind{
	{"Grocery Shopping", "Weekly grocery run", "Whole Foods", 60},
	{"Workout", "Gym session or outdoor exercise", "Local Gym", 90},
	{"Coffee with Friends", "Catch up over coffee", "Downtown Cafe", 120},
	{"Family Dinner", "Sunday family dinner", "Parents' House", 180},
	{"Hiking", "Nature hike and fresh air", "Local Trail", 180},
	{"Movie", "Weekend movie night", "Cinema", 150},
}

// Fetch generates the day's events. Weekdays get a standup and up to two
// meetings; weekends get at most one activity. Dates more than a week from
// now return an empty schedule rather than an error.
func (a *CalendarAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	in, err := decodeInput[CalendarInput](input)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation("2006-01-02", in.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", in.Date, err)
	}

	var events []CalendarEvent
	today := a.now().UTC().Truncate(24 * time.Hour)
	if delta := day.Sub(today); delta >= -7*24*time.Hour && delta <= 7*24*time.Hour {
		if wd := day.Weekday(); wd >= time.Monday && wd <= time.Friday {
			events = workdayEvents(day, in.Date)
		} else {
			events = weekendEvents(day, in.Date)
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].StartTime < events[j].StartTime })

	return CalendarOutput{
		Date:        in.Date,
		Events:      events,
		TotalEvents: len(events),
	}, nil
}

func (a *CalendarAdapter) Normalize(raw any) (map[string]any, error) {
	out, ok := raw.(CalendarOutput)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", raw)
	}
	if out.Events == nil {
		out.Events = []CalendarEvent{}
	}
	return encodeOutput(out)
}

func workdayEvents(day time.Time, date string) []CalendarEvent {
	h := seed("calendar", date)
	var events []CalendarEvent

	// Standup on most days.
	if h%10 < 7 {
		start := day.Add(9*time.Hour + time.Duration(15*(h%3))*time.Minute)
		events = append(events, event(
			fmt.Sprintf("event_%s_standup", date),
			"Daily Standup", "Daily team sync and planning", "Conference Room A",
			start, 30, []string{"team@company.com"},
		))
	}

	if (h>>4)%10 < 5 {
		kind := morningMeetings[(h>>8)%uint64(len(morningMeetings))]
		start := day.Add(10*time.Hour + time.Duration(30*((h>>12)%2))*time.Minute)
		events = append(events, event(
			fmt.Sprintf("event_%s_meeting1", date),
			kind.title, kind.description, kind.location,
			start, kind.minutes, []string{"colleague@company.com"},
		))
	}

	if (h>>16)%10 < 3 {
		start := day.Add(12*time.Hour + time.Duration(30*((h>>20)%2))*time.Minute)
		events = append(events, event(
			fmt.Sprintf("event_%s_lunch", date),
			"Lunch Meeting", "Casual lunch with colleague", "Local Cafe",
			start, 60, []string{"friend@company.com"},
		))
	}

	if (h>>24)%10 < 6 {
		kind := afternoonMeetings[(h>>28)%uint64(len(afternoonMeetings))]
		start := day.Add(14*time.Hour + time.Duration(30*((h>>32)%2))*time.Minute)
		events = append(events, event(
			fmt.Sprintf("event_%s_meeting2", date),
			kind.title, kind.description, kind.location,
			start, kind.minutes, []string{"manager@company.com"},
		))
	}

	return events
}

func weekendEvents(day time.Time, date string) []CalendarEvent {
	h := seed("calendar", date)
	if h%10 >= 4 {
		return nil
	}
	kind := weekendActivities[(h>>8)%uint64(len(weekendActivities))]
	hours := []int{10, 11, 14, 15}
	start := day.Add(time.Duration(hours[(h>>16)%uint64(len(hours))]) * time.Hour)
	return []CalendarEvent{event(
		fmt.Sprintf("event_%s_weekend", date),
		kind.title, kind.description, kind.location,
		start, kind.minutes, nil,
	)}
}

func event(id, title, description, location string, start time.Time, minutes int, attendees []string) CalendarEvent {
	return CalendarEvent{
		ID:          id,
		Title:       title,
		StartTime:   start.Format(time.RFC3339),
		EndTime:     start.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339),
		Location:    location,
		Description: description,
		AllDay:      false,
		Attendees:   attendees,
	}
}
