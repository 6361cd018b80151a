// Package calendar exposes google calendar actions as tools
package calendar

import (
	"context"
	"errors"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/bububa/atomic-assistant/auth"
	"github.com/bububa/atomic-assistant/schema"
	"github.com/bububa/atomic-assistant/tools"
	"github.com/bububa/atomic-assistant/tools/google"
)

const ServiceName = "calendar"

const (
	ScheduleEventName          = "schedule_event"
	ScheduleRecurringEventName = "schedule_recurring_event"
	ListUpcomingEventsName     = "list_upcoming_events"
	ListCalendarsName          = "list_calendars"
)

var ErrEndBeforeStart = errors.New("end_time must be after start_time")

type Config struct {
	location    *time.Location
	now         func() time.Time
	serviceOpts []google.Option
}

// Calendar runs calendar actions with a credential borrowed per call
type Calendar struct {
	Config
	service *google.Service
}

func New(clients google.ClientProvider, opts ...Option) *Calendar {
	ret := new(Calendar)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.location == nil {
		ret.location = time.UTC
	}
	if ret.now == nil {
		ret.now = time.Now
	}
	ret.service = google.NewService(ServiceName, auth.CalendarKey, clients, ret.serviceOpts...)
	return ret
}

// Tools returns every calendar tool
func (c *Calendar) Tools(opts ...tools.Option) []tools.Tool {
	return []tools.Tool{
		tools.NewFunc(ScheduleEventName, "Schedule an event in Google Calendar.", c.ScheduleEvent, opts...),
		tools.NewFunc(ScheduleRecurringEventName, "Schedule a recurring event in Google Calendar.", c.ScheduleRecurringEvent, opts...),
		tools.NewFunc(ListUpcomingEventsName, "List upcoming events in Google Calendar.", c.ListUpcomingEvents, opts...),
		tools.NewFunc(ListCalendarsName, "List the calendars of the user with their ids.", c.ListCalendars, opts...),
	}
}

func (c *Calendar) client(ctx context.Context) (*calendar.Service, error) {
	opts, err := c.service.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, c.service.Error("connect", err)
	}
	return svc, nil
}

func (c *Calendar) newEvent(in *ScheduleEventInput) (*calendar.Event, error) {
	start, err := parseDateTime(in.StartTime, c.location)
	if err != nil {
		return nil, err
	}
	end, err := parseDateTime(in.EndTime, c.location)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}
	zone := c.location.String()
	return &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: zone,
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: zone,
		},
	}, nil
}

func (c *Calendar) ScheduleEvent(ctx context.Context, in *ScheduleEventInput) (*schema.String, error) {
	event, err := c.newEvent(in)
	if err != nil {
		return nil, err
	}
	created, err := c.insert(ctx, DefaultCalendarID, event)
	if err != nil {
		return nil, err
	}
	ret := schema.String("Event created: " + created.HtmlLink)
	return &ret, nil
}

func (c *Calendar) ScheduleRecurringEvent(ctx context.Context, in *ScheduleRecurringEventInput) (*schema.String, error) {
	event, err := c.newEvent(&in.ScheduleEventInput)
	if err != nil {
		return nil, err
	}
	event.Recurrence = []string{normalizeRecurrence(in.RecurrenceRule)}
	calendarID := in.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	created, err := c.insert(ctx, calendarID, event)
	if err != nil {
		return nil, err
	}
	ret := schema.String("Recurring event created: " + created.HtmlLink)
	return &ret, nil
}

func (c *Calendar) insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	svc, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	created, err := svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, c.service.Error("events.insert", err)
	}
	return created, nil
}

// ListUpcomingEvents lists single events starting from now, soonest first
func (c *Calendar) ListUpcomingEvents(ctx context.Context, in *ListUpcomingEventsInput) (*Events, error) {
	svc, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	num := in.NumEvents
	if num <= 0 {
		num = 3
	}
	resp, err := svc.Events.List(DefaultCalendarID).
		TimeMin(c.now().UTC().Format(time.RFC3339)).
		MaxResults(int64(num)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.service.Error("events.list", err)
	}
	ret := make(Events, 0, len(resp.Items))
	for _, item := range resp.Items {
		ret = append(ret, Event{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
			Location:    item.Location,
			Start:       eventTime(item.Start),
			End:         eventTime(item.End),
			Recurring:   item.RecurringEventId != "",
			HTMLLink:    item.HtmlLink,
		})
	}
	return &ret, nil
}

func eventTime(t *calendar.EventDateTime) string {
	switch {
	case t == nil:
		return ""
	case t.DateTime != "":
		return t.DateTime
	default:
		// all day event
		return t.Date
	}
}

func (c *Calendar) ListCalendars(ctx context.Context, _ *ListCalendarsInput) (*Calendars, error) {
	svc, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	var ret Calendars
	err = svc.CalendarList.List().Pages(ctx, func(page *calendar.CalendarList) error {
		for _, item := range page.Items {
			ret = append(ret, CalendarEntry{
				ID:      item.Id,
				Summary: item.Summary,
			})
		}
		return nil
	})
	if err != nil {
		return nil, c.service.Error("calendarList.list", err)
	}
	if ret == nil {
		ret = Calendars{}
	}
	return &ret, nil
}
