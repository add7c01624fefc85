// File: services/intelligence/interface.go
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"planora/models"
)

// ErrMalformedResponse marks a ranking reply that could not be parsed.
var ErrMalformedResponse = errors.New("malformed ranking response")

// RankRequest carries everything the ranking model sees: the todo text,
// the target date, the caller's current instant, and the future free
// slots (already filtered; indices in the reply point into this list).
type RankRequest struct {
	Title       string
	Description string
	TargetDate  time.Time
	Now         time.Time
	Slots       []models.TimeSlot
}

// SlotRanker proposes the best slot plus a start time for a todo.
// Implementations must respect ctx cancellation; any error means the
// caller falls back to deterministic scheduling.
type SlotRanker interface {
	RankSlots(ctx context.Context, req RankRequest) (*models.RankingResult, error)
}

// BuildRankingPrompt renders the scheduling prompt sent to the model.
func BuildRankingPrompt(req RankRequest) string {
	desc := req.Description
	if desc == "" {
		desc = "No description"
	}

	var slots strings.Builder
	for i, slot := range req.Slots {
		fmt.Fprintf(&slots, "Slot %d: %s - %s (%d min)\n", i, slot.StartTime, slot.EndTime, slot.DurationMinutes)
	}

	return fmt.Sprintf(`You schedule todo items onto a user's calendar. Analyze the available time slots and pick the best one WITH a specific start time within that slot.

Todo: %s
Description: %s
Date: %s
Current time: %s

Available time slots (only future times):
%s
Consider:
1. The nature of the todo (work, personal, urgent, etc.)
2. Time of day preferences:
   - MORNING (06:00-12:00): Work tasks, important meetings, high-energy activities
   - AFTERNOON (12:00-18:00): Routine tasks, personal errands, moderate energy
   - EVENING (18:00-22:00): Relaxing tasks, bedtime activities, low energy
   - NIGHT (22:00-06:00): Sleep-related, quiet activities
3. Choose the slot AND specific time in that slot that matches the activity's natural timing
4. Duration needed (estimate based on title/description)
5. Only select from the available future time slots

Return only a JSON object:
{
    "selected_slot_index": <index of the best slot>,
    "suggested_start_time": "<HH:MM - specific time within the slot>",
    "reasoning": "<brief explanation of why this time is best>",
    "estimated_duration": <minutes needed>
}`,
		req.Title, desc, req.TargetDate.Format("Monday, January 2, 2006"), req.Now.Format("15:04"), slots.String())
}

// ParseRankingResult extracts the JSON object from a model reply. The
// model sometimes wraps the object in prose or code fences, so the text
// between the first '{' and the last '}' is what gets decoded.
func ParseRankingResult(raw string) (*models.RankingResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}

	var result models.RankingResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.SelectedSlotIndex < 0 {
		return nil, fmt.Errorf("%w: negative slot index", ErrMalformedResponse)
	}
	return &result, nil
}
