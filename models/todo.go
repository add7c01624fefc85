package models

import "time"

// Todo is a single todo item. Scheduling fields are empty until the
// item has been placed on the calendar.
type Todo struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Date        string `bson:"date" json:"date"` // "2006-01-02"
	Completed   bool   `bson:"completed" json:"completed"`

	// Calendar linkage, set once the todo is scheduled.
	CalendarEventID          string `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`
	ScheduledStart           string `bson:"scheduledStart,omitempty" json:"scheduledStart,omitempty"` // "HH:MM"
	ScheduledEnd             string `bson:"scheduledEnd,omitempty" json:"scheduledEnd,omitempty"`     // "HH:MM"
	EstimatedDurationMinutes int    `bson:"estimatedDurationMinutes,omitempty" json:"estimatedDurationMinutes,omitempty"`
	ScheduleReasoning        string `bson:"scheduleReasoning,omitempty" json:"scheduleReasoning,omitempty"`
	ScheduleSource           string `bson:"scheduleSource,omitempty" json:"scheduleSource,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsScheduled reports whether the todo is linked to a calendar event.
func (t *Todo) IsScheduled() bool {
	return t.CalendarEventID != ""
}

// CreateTodoRequest defines the payload for creating a todo.
type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
}

// UpdateTodoRequest defines the payload for updating a todo.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}
