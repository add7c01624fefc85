// File: services/calendar/busy.go
package calendar

import (
	"time"

	"planora/models"
)

// The projected day runs from minute 0 (00:00) to minute 1439 (23:59),
// matching the scheduler's sweep range.
const (
	dayStartMinutes = 0
	dayEndMinutes   = 1439
)

// ProjectBusyIntervals maps provider events onto one day's minute
// timeline. Only timed events starting on the target date participate;
// all-day events are skipped entirely. An event running past midnight
// blocks the rest of the day.
func ProjectBusyIntervals(events []models.CalendarEvent, date time.Time, loc *time.Location) []models.BusyInterval {
	year, month, day := date.In(loc).Date()

	var busy []models.BusyInterval
	for _, event := range events {
		if event.AllDay {
			continue
		}
		start := event.Start.In(loc)
		end := event.End.In(loc)
		sy, sm, sd := start.Date()
		if sy != year || sm != month || sd != day {
			continue
		}

		startMinutes := start.Hour()*60 + start.Minute()
		endMinutes := end.Hour()*60 + end.Minute()
		ey, em, ed := end.Date()
		if ey != year || em != month || ed != day {
			endMinutes = dayEndMinutes
		}

		if startMinutes < dayStartMinutes {
			startMinutes = dayStartMinutes
		}
		if endMinutes > dayEndMinutes {
			endMinutes = dayEndMinutes
		}
		if endMinutes <= startMinutes {
			continue
		}
		busy = append(busy, models.BusyInterval{Start: startMinutes, End: endMinutes})
	}
	return busy
}
