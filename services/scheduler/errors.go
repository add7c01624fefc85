package scheduler

import "errors"

var (
	// ErrNoSlotsAvailable means the free-slot list was empty or every
	// slot lies in the past. Callers turn it into a "no slots today"
	// response, never a server error.
	ErrNoSlotsAvailable = errors.New("no free slots available")

	// ErrBadClockTime marks a malformed "HH:MM" string.
	ErrBadClockTime = errors.New("invalid clock time")

	// ErrNotScheduled means the todo has no linked calendar event.
	ErrNotScheduled = errors.New("todo is not scheduled")
)
