// File: services/scheduler/fallback.go
package scheduler

import (
	"fmt"
	"strings"
	"time"

	"planora/models"
)

// Keyword lists for the deterministic fallback classifier. Matching is
// case-insensitive substring membership over title + " " + description.
var (
	workKeywords     = []string{"work", "meeting", "call", "project", "report", "email", "client", "business"}
	personalKeywords = []string{"grocery", "shopping", "exercise", "gym", "personal", "family", "home"}
	eveningKeywords  = []string{"sleep", "bed", "relax", "dinner", "evening", "night", "rest"}
)

const (
	categoryWork     = "Work"
	categoryPersonal = "Personal"
	categoryEvening  = "Evening"
	categoryDefault  = "General"
)

const (
	workdayStartMinutes = 8 * 60  // earliest desired start for work tasks
	eveningStartMinutes = 18 * 60 // a slot starting here or later counts as evening
	eveningAnchorMinutes = 20 * 60
)

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// estimateDuration returns the keyword-driven duration estimate in minutes.
func estimateDuration(text string) int {
	switch {
	case containsAny(text, []string{"meeting", "call", "appointment"}):
		return 60
	case containsAny(text, []string{"grocery", "shopping"}):
		return 45
	case containsAny(text, []string{"exercise", "gym", "workout"}):
		return 60
	default:
		return 30
	}
}

// filterFutureSlots keeps slots whose start, resolved on targetDate in
// loc, lies strictly after now. For a future targetDate every slot
// survives; the filter only bites when scheduling for today.
func filterFutureSlots(slots []models.TimeSlot, targetDate, now time.Time, loc *time.Location) []models.TimeSlot {
	var valid []models.TimeSlot
	for _, slot := range slots {
		instant := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(),
			slot.StartMinutes/60, slot.StartMinutes%60, 0, 0, loc)
		if instant.After(now) {
			valid = append(valid, slot)
		}
	}
	return valid
}

// fallbackSchedule is the deterministic slot selection used when no
// ranking model is configured or its output is unusable. It re-filters
// the original free-slot list for futurity on its own; the policy layer
// filters too, and keeping both passes preserves the legacy
// belt-and-suspenders behaviour.
//
// Branch order is fixed: work, then personal, then evening, then the
// first valid slot. The work and personal branches only override the
// default when more than one valid slot exists; the evening branch only
// when a slot starting at or after 18:00 exists.
func fallbackSchedule(title, description string, targetDate, now time.Time, loc *time.Location, freeSlots []models.TimeSlot) (*models.ScheduleDecision, error) {
	valid := filterFutureSlots(freeSlots, targetDate, now, loc)
	if len(valid) == 0 {
		return nil, ErrNoSlotsAvailable
	}

	text := strings.ToLower(title + " " + description)
	isWork := containsAny(text, workKeywords)
	isPersonal := containsAny(text, personalKeywords)
	isEvening := containsAny(text, eveningKeywords)

	selected := valid[0]
	desired := selected.StartMinutes
	category := categoryDefault

	switch {
	case isWork && len(valid) > 1:
		// Earliest slot, nudged to the start of the workday.
		selected = valid[0]
		desired = selected.StartMinutes
		if desired < workdayStartMinutes {
			desired = workdayStartMinutes
		}
		category = categoryWork
	case isPersonal && len(valid) > 1:
		// Latest slot, aimed at its midpoint.
		selected = valid[len(valid)-1]
		desired = selected.StartMinutes + (selected.EndMinutes-selected.StartMinutes)/2
		category = categoryPersonal
	case isEvening:
		var evening []models.TimeSlot
		for _, slot := range valid {
			if slot.StartMinutes >= eveningStartMinutes {
				evening = append(evening, slot)
			}
		}
		if len(evening) > 0 {
			selected = evening[len(evening)-1]
			// 20:00, or an hour before the slot ends, whichever is earlier.
			desired = selected.EndMinutes - 60
			if desired > eveningAnchorMinutes {
				desired = eveningAnchorMinutes
			}
			if desired < selected.StartMinutes {
				desired = selected.StartMinutes
			}
			category = categoryEvening
		}
	}

	// The computed start must land inside the chosen slot.
	if desired < selected.StartMinutes || desired > selected.EndMinutes {
		desired = selected.StartMinutes
	}

	reasoning := fmt.Sprintf("Fallback scheduling: %s task scheduled at %s", category, ClockTime(desired))
	decision := packageDecision(selected, desired, reasoning, estimateDuration(text), models.SourceFallback)
	return &decision, nil
}

// packageDecision assembles a ScheduleDecision, clamping the estimated
// duration so the task never runs past the end of the day.
func packageDecision(slot models.TimeSlot, chosenStart int, reasoning string, durationMinutes int, source string) models.ScheduleDecision {
	if chosenStart+durationMinutes > DayEndMinutes {
		durationMinutes = DayEndMinutes - chosenStart
	}
	return models.ScheduleDecision{
		Slot:                     slot,
		ChosenStartMinutes:       chosenStart,
		Reasoning:                reasoning,
		EstimatedDurationMinutes: durationMinutes,
		Source:                   source,
	}
}
