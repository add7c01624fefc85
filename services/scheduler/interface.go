// File: services/scheduler/interface.go
package scheduler

import (
	"context"
	"time"

	todoRepo "planora/database/repository/todo"
	"planora/models"
	"planora/services/calendar"
)

// SchedulingService is the surface the HTTP layer consumes.
type SchedulingService interface {
	// ComputeFreeSlots returns the free slots of one date, freshly
	// derived from the calendar. minDurationMinutes <= 0 uses the
	// engine default.
	ComputeFreeSlots(ctx context.Context, date string, minDurationMinutes int) ([]models.TimeSlot, error)

	// PreviewSchedule computes a decision for a todo without touching
	// the calendar. Returns the resolved date alongside the decision.
	PreviewSchedule(ctx context.Context, todoID, date string) (string, *models.ScheduleDecision, error)

	// ApplyDecision materializes a decision: calendar event plus todo linkage.
	ApplyDecision(ctx context.Context, todoID, date string, decision models.ScheduleDecision) (*models.Todo, error)

	// ScheduleTodo is preview + apply in one step.
	ScheduleTodo(ctx context.Context, todoID, date string) (*models.Todo, error)

	// UnscheduleTodo deletes the linked event and clears the linkage.
	UnscheduleTodo(ctx context.Context, todoID string) (*models.Todo, error)
}

// VerifyEnqueuer schedules a background check that a todo's calendar
// event still exists after it was supposed to happen.
type VerifyEnqueuer interface {
	EnqueueVerify(ctx context.Context, todoID string, at time.Time) error
}

// DefaultSchedulingEngine is the production scheduler.
type DefaultSchedulingEngine struct {
	Calendar       calendar.Service
	Todos          todoRepo.TodoRepository
	Policy         *SlotPolicy
	Verify         VerifyEnqueuer // optional
	Location       *time.Location
	MinSlotMinutes int
	Clock          func() time.Time // injected for testability; nil means time.Now
}
