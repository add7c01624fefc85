package models

// TimeSlot represents a maximal free interval of one day, in minutes
// from midnight (e.g., 420 for 7:00 AM). Produced by the availability
// sweep and never mutated afterwards.
type TimeSlot struct {
	StartMinutes    int    `json:"startMinutes"`
	EndMinutes      int    `json:"endMinutes"`
	DurationMinutes int    `json:"durationMinutes"`
	StartTime       string `json:"startTime"` // "HH:MM" label
	EndTime         string `json:"endTime"`   // "HH:MM" label
}

// BusyInterval is a calendar event projected onto one day's minute
// timeline. All-day events never become busy intervals.
type BusyInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Decision sources.
const (
	SourceGemini   = "gemini"
	SourceFallback = "fallback"
)

// ScheduleDecision is the output of slot selection: a chosen slot, a
// specific start within it, and an estimated duration.
type ScheduleDecision struct {
	Slot                     TimeSlot `json:"slot"`
	ChosenStartMinutes       int      `json:"chosenStartMinutes"`
	Reasoning                string   `json:"reasoning"`
	EstimatedDurationMinutes int      `json:"estimatedDurationMinutes"`
	// Source is "gemini" when the ranking model produced the decision
	// and "fallback" when the keyword heuristic did.
	Source string `json:"source"`
}

// RankingResult is the parsed reply of the ranking model. The index
// points into the filtered future-slot list the model was shown.
type RankingResult struct {
	SelectedSlotIndex        int    `json:"selected_slot_index"`
	SuggestedStartTime       string `json:"suggested_start_time,omitempty"`
	Reasoning                string `json:"reasoning"`
	EstimatedDurationMinutes int    `json:"estimated_duration"`
}

// SchedulePreview is a pending, not yet confirmed scheduling decision
// cached between the preview and confirm calls.
type SchedulePreview struct {
	TodoID   string           `json:"todoId"`
	Date     string           `json:"date"`
	Decision ScheduleDecision `json:"decision"`
}
