package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/bububa/atomic-assistant/schema"
)

const DefaultCalendarID = "primary"

// ScheduleEventInput schedules a single event
type ScheduleEventInput struct {
	schema.Base
	Summary     string `json:"summary" jsonschema:"title=summary,description=Title of the event." validate:"required"`
	StartTime   string `json:"start_time" jsonschema:"title=start_time" jsonschema_description:"Start of the event as an ISO 8601 date-time, e.g. 2025-03-01T10:00:00." validate:"required"`
	EndTime     string `json:"end_time" jsonschema:"title=end_time" jsonschema_description:"End of the event as an ISO 8601 date-time, e.g. 2025-03-01T11:00:00." validate:"required"`
	Description string `json:"description,omitempty" jsonschema:"title=description,description=Details of the event."`
	Location    string `json:"location,omitempty" jsonschema:"title=location,description=Where the event takes place."`
}

// ScheduleRecurringEventInput schedules an event repeating by a recurrence rule
type ScheduleRecurringEventInput struct {
	ScheduleEventInput
	RecurrenceRule string `json:"recurrence_rule" jsonschema:"title=recurrence_rule" jsonschema_description:"RFC 5545 recurrence rule, e.g. RRULE:FREQ=WEEKLY;BYDAY=MO." validate:"required"`
	CalendarID     string `json:"calendar_id,omitempty" jsonschema:"title=calendar_id,default=primary,description=Calendar to create the event in."`
}

func (i *ScheduleRecurringEventInput) SetDefaults() {
	if i.CalendarID == "" {
		i.CalendarID = DefaultCalendarID
	}
}

// ListUpcomingEventsInput lists the next events of the primary calendar
type ListUpcomingEventsInput struct {
	schema.Base
	NumEvents int `json:"num_events,omitempty" jsonschema:"title=num_events,default=3,minimum=1,maximum=250,description=How many events to list." validate:"min=1,max=250"`
}

func (i *ListUpcomingEventsInput) SetDefaults() {
	if i.NumEvents == 0 {
		i.NumEvents = 3
	}
}

// ListCalendarsInput takes no arguments
type ListCalendarsInput struct {
	schema.Base
}

// Event is the model facing view of a calendar event
type Event struct {
	ID          string `json:"id"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Recurring   bool   `json:"recurring,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
}

// Events are listed soonest first
type Events []Event

func (e Events) String() string {
	return schema.JSON(e)
}

// CalendarEntry identifies a calendar the user can access
type CalendarEntry struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

type Calendars []CalendarEntry

func (c Calendars) String() string {
	return schema.JSON(c)
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseDateTime parses a model supplied date-time, times without offset are in loc
func parseDateTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q, expect ISO 8601 like 2025-03-01T10:00:00", v)
}

var recurrencePrefixes = []string{"RRULE:", "EXRULE:", "RDATE", "EXDATE"}

// normalizeRecurrence adds the RRULE: prefix the API requires when missing
func normalizeRecurrence(rule string) string {
	rule = strings.TrimSpace(rule)
	upper := strings.ToUpper(rule)
	for _, prefix := range recurrencePrefixes {
		if strings.HasPrefix(upper, prefix) {
			return rule
		}
	}
	return "RRULE:" + rule
}
