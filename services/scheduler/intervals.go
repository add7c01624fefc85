// File: services/scheduler/intervals.go
package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"planora/models"
)

// The scheduling day runs from minute 0 (00:00) to minute 1439 (23:59).
const (
	DayStartMinutes = 0
	DayEndMinutes   = 1439
)

// MinutesSinceMidnight parses an "HH:MM" clock string into minutes from
// midnight. Unlike the legacy behaviour of silently substituting zero,
// malformed input is reported to the caller.
func MinutesSinceMidnight(clock string) (int, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadClockTime, clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClockTime, clock)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClockTime, clock)
	}
	if hours < 0 || hours > 23 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClockTime, clock)
	}
	return hours*60 + mins, nil
}

// ClockTime renders minutes from midnight as a zero-padded "HH:MM"
// string. Out-of-range input is clamped to the day bounds.
func ClockTime(minutes int) string {
	if minutes < DayStartMinutes {
		minutes = DayStartMinutes
	}
	if minutes > DayEndMinutes {
		minutes = DayEndMinutes
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NewTimeSlot builds a labelled slot for the half-open range [start, end).
func NewTimeSlot(start, end int) models.TimeSlot {
	return models.TimeSlot{
		StartMinutes:    start,
		EndMinutes:      end,
		DurationMinutes: end - start,
		StartTime:       ClockTime(start),
		EndTime:         ClockTime(end),
	}
}

// FreeSlots computes the free portions of the day not covered by any
// busy interval, in chronological order, dropping gaps shorter than
// minDuration. Overlapping and contained busy intervals are handled by
// a merge-and-sweep: the cursor only ever moves forward, so two events
// like [100,200) and [150,300) block the single span [100,300).
func FreeSlots(busy []models.BusyInterval, minDuration int) []models.TimeSlot {
	sorted := make([]models.BusyInterval, 0, len(busy))
	for _, b := range busy {
		if b.End <= b.Start {
			continue
		}
		sorted = append(sorted, b)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var slots []models.TimeSlot
	cursor := DayStartMinutes
	for _, b := range sorted {
		if cursor < b.Start && b.Start-cursor >= minDuration {
			slots = append(slots, NewTimeSlot(cursor, b.Start))
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < DayEndMinutes && DayEndMinutes-cursor >= minDuration {
		slots = append(slots, NewTimeSlot(cursor, DayEndMinutes))
	}
	return slots
}
