// File: services/calendar/interface.go
package calendar

import (
	"context"
	"time"

	"planora/models"
)

// Service is the capability the scheduler needs from a calendar
// provider: read one day's events and materialize scheduling decisions
// as events. Busy intervals are fetched fresh on every request; the
// calendar may change between calls, so nothing here is cached.
type Service interface {
	ListEvents(ctx context.Context, date time.Time) ([]models.CalendarEvent, error)
	BusyIntervals(ctx context.Context, date time.Time) ([]models.BusyInterval, error)
	CreateEvent(ctx context.Context, title, description string, start, end time.Time) (string, error)
	UpdateEvent(ctx context.Context, eventID, title, description string, start, end time.Time) error
	DeleteEvent(ctx context.Context, eventID string) error
}
