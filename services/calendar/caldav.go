// File: services/calendar/caldav.go
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"planora/models"
	"planora/utils"
)

// Custom property marking events this service created.
const PropXPlanora = "X-PLANORA"

// ErrNotConfigured means no CalDAV endpoint is set; reads degrade to an
// empty calendar, writes fail with this error.
var ErrNotConfigured = errors.New("calendar provider not configured")

// CalDAVService talks to any CalDAV calendar (Apple Calendar, Fastmail,
// Nextcloud, Radicale, etc.) over basic auth.
type CalDAVService struct {
	baseURL      string
	username     string
	password     string
	calendarPath string // specific calendar path, or empty for the first one found
	location     *time.Location
}

// NewCalDAVService creates a CalDAV-backed calendar service. An empty
// baseURL yields a service that reports an empty calendar, mirroring
// the unauthenticated mode of the rest of the app.
func NewCalDAVService(baseURL, username, password, calendarPath string, loc *time.Location) *CalDAVService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalDAVService{
		baseURL:      baseURL,
		username:     username,
		password:     password,
		calendarPath: calendarPath,
		location:     loc,
	}
}

func (s *CalDAVService) configured() bool { return s.baseURL != "" }

// ListEvents returns the timed and all-day events of one day.
func (s *CalDAVService) ListEvents(ctx context.Context, date time.Time) ([]models.CalendarEvent, error) {
	if !s.configured() {
		utils.GetLogger().Debug("CalDAV not configured, returning empty calendar")
		return nil, nil
	}

	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"SUMMARY", "DTSTART", "DTEND", "UID", "DESCRIPTION", PropXPlanora},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: dayStart,
					End:   dayEnd,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	events := make([]models.CalendarEvent, 0, len(objects))
	for _, obj := range objects {
		if event := parseCalendarObject(&obj, s.location); event != nil {
			events = append(events, *event)
		}
	}
	return events, nil
}

// BusyIntervals projects one day's events onto the minute timeline.
func (s *CalDAVService) BusyIntervals(ctx context.Context, date time.Time) ([]models.BusyInterval, error) {
	events, err := s.ListEvents(ctx, date)
	if err != nil {
		return nil, err
	}
	return ProjectBusyIntervals(events, date, s.location), nil
}

// CreateEvent writes a new event and returns its ID.
func (s *CalDAVService) CreateEvent(ctx context.Context, title, description string, start, end time.Time) (string, error) {
	if !s.configured() {
		return "", ErrNotConfigured
	}

	client, err := s.getClient()
	if err != nil {
		return "", err
	}
	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar: %w", err)
	}

	eventID := uuid.New().String()
	cal := toICalendar(eventID, title, description, start, end)
	if _, err := client.PutCalendarObject(ctx, eventPath(calPath, eventID), cal); err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return eventID, nil
}

// UpdateEvent rewrites an existing event in place.
func (s *CalDAVService) UpdateEvent(ctx context.Context, eventID, title, description string, start, end time.Time) error {
	if !s.configured() {
		return ErrNotConfigured
	}

	client, err := s.getClient()
	if err != nil {
		return err
	}
	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to find calendar: %w", err)
	}

	cal := toICalendar(eventID, title, description, start, end)
	if _, err := client.PutCalendarObject(ctx, eventPath(calPath, eventID), cal); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event by ID.
func (s *CalDAVService) DeleteEvent(ctx context.Context, eventID string) error {
	if !s.configured() {
		return ErrNotConfigured
	}

	client, err := s.getClient()
	if err != nil {
		return err
	}
	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to find calendar: %w", err)
	}
	if err := client.RemoveAll(ctx, eventPath(calPath, eventID)); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func eventPath(calPath, eventID string) string {
	return fmt.Sprintf("%s%s.ics", calPath, eventID)
}

func (s *CalDAVService) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username: s.username,
			password: s.password,
			base:     http.DefaultTransport,
		},
	}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, s.username, s.password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *CalDAVService) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.calendarPath != "" {
		return s.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	// Use first calendar as default
	return cals[0].Path, nil
}

// toICalendar builds the VCALENDAR for one scheduled todo.
func toICalendar(eventID, title, description string, start, end time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Planora//Todo Scheduler//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	event.Props.SetText(ical.PropSummary, title)
	if description != "" {
		event.Props.SetText(ical.PropDescription, description)
	}

	// Custom property to identify Planora-created events
	planoraProp := ical.NewProp(PropXPlanora)
	planoraProp.Value = "1"
	event.Props[PropXPlanora] = []ical.Prop{*planoraProp}

	cal.Children = append(cal.Children, event.Component)
	return cal
}

func parseCalendarObject(obj *caldav.CalendarObject, loc *time.Location) *models.CalendarEvent {
	if obj == nil || obj.Data == nil {
		return nil
	}

	event := &models.CalendarEvent{ID: obj.Path}
	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		if props := child.Props[ical.PropSummary]; len(props) > 0 {
			event.Summary = props[0].Value
		}
		if props := child.Props[ical.PropDescription]; len(props) > 0 {
			event.Description = props[0].Value
		}
		if props := child.Props[ical.PropUID]; len(props) > 0 {
			event.ID = strings.TrimSuffix(props[0].Value, ".ics")
		}

		icalEvent := &ical.Event{Component: child}
		if start, err := icalEvent.DateTimeStart(loc); err == nil {
			event.Start = start
		}
		if end, err := icalEvent.DateTimeEnd(loc); err == nil {
			event.End = end
		}

		// DATE-valued (all-day) events come back at midnight bounds.
		if event.Start.Hour() == 0 && event.Start.Minute() == 0 &&
			event.End.Hour() == 0 && event.End.Minute() == 0 && !event.End.Equal(event.Start) {
			event.AllDay = true
		}

		break // only the first VEVENT per object
	}

	if event.Start.IsZero() || event.End.IsZero() {
		utils.GetLogger().Debug("Skipping calendar object without times", zap.String("path", obj.Path))
		return nil
	}
	return event
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
