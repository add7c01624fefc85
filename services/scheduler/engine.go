// File: services/scheduler/engine.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planora/models"
	"planora/utils"
)

const dateLayout = "2006-01-02"

func (e *DefaultSchedulingEngine) location() *time.Location {
	if e.Location != nil {
		return e.Location
	}
	return time.UTC
}

func (e *DefaultSchedulingEngine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e *DefaultSchedulingEngine) parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, e.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day, nil
}

func (e *DefaultSchedulingEngine) minSlotMinutes(requested int) int {
	if requested > 0 {
		return requested
	}
	if e.MinSlotMinutes > 0 {
		return e.MinSlotMinutes
	}
	return 30
}

// ComputeFreeSlots reads the calendar and runs the availability sweep.
func (e *DefaultSchedulingEngine) ComputeFreeSlots(ctx context.Context, date string, minDurationMinutes int) ([]models.TimeSlot, error) {
	day, err := e.parseDate(date)
	if err != nil {
		return nil, err
	}
	busy, err := e.Calendar.BusyIntervals(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	return FreeSlots(busy, e.minSlotMinutes(minDurationMinutes)), nil
}

// PreviewSchedule computes a decision for a todo without side effects.
// An empty date falls back to the todo's own date.
func (e *DefaultSchedulingEngine) PreviewSchedule(ctx context.Context, todoID, date string) (string, *models.ScheduleDecision, error) {
	todo, err := e.Todos.GetByID(ctx, todoID)
	if err != nil {
		return "", nil, err
	}
	if date == "" {
		date = todo.Date
	}
	day, err := e.parseDate(date)
	if err != nil {
		return "", nil, err
	}

	slots, err := e.ComputeFreeSlots(ctx, date, 0)
	if err != nil {
		return "", nil, err
	}
	decision, err := e.Policy.SelectSlot(ctx, todo.Title, todo.Description, day, e.now(), slots)
	if err != nil {
		return "", nil, err
	}
	return date, decision, nil
}

// ApplyDecision creates (or, for an already scheduled todo, updates)
// the calendar event and persists the linkage on the todo.
func (e *DefaultSchedulingEngine) ApplyDecision(ctx context.Context, todoID, date string, decision models.ScheduleDecision) (*models.Todo, error) {
	logger := utils.GetLogger()

	todo, err := e.Todos.GetByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if date == "" {
		date = todo.Date
	}
	day, err := e.parseDate(date)
	if err != nil {
		return nil, err
	}

	// The event may not run past the end of the chosen slot.
	duration := decision.EstimatedDurationMinutes
	if remaining := decision.Slot.EndMinutes - decision.ChosenStartMinutes; remaining > 0 && duration > remaining {
		duration = remaining
	}
	if duration <= 0 {
		duration = decision.EstimatedDurationMinutes
	}

	start := time.Date(day.Year(), day.Month(), day.Day(),
		decision.ChosenStartMinutes/60, decision.ChosenStartMinutes%60, 0, 0, e.location())
	end := start.Add(time.Duration(duration) * time.Minute)

	title := "📝 " + todo.Title
	description := todo.Description
	if description == "" {
		description = "Todo item"
	}

	eventID := todo.CalendarEventID
	if todo.IsScheduled() {
		if err := e.Calendar.UpdateEvent(ctx, eventID, title, description, start, end); err != nil {
			return nil, fmt.Errorf("failed to update calendar event: %w", err)
		}
	} else {
		eventID, err = e.Calendar.CreateEvent(ctx, title, description, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to create calendar event: %w", err)
		}
	}

	if err := e.Todos.SetSchedule(ctx, todo.ID, eventID,
		ClockTime(decision.ChosenStartMinutes), ClockTime(decision.ChosenStartMinutes+duration),
		decision.Reasoning, decision.Source, duration); err != nil {
		return nil, err
	}

	if e.Verify != nil {
		if err := e.Verify.EnqueueVerify(ctx, todo.ID, end.Add(5*time.Minute)); err != nil {
			logger.Warn("Failed to enqueue schedule verification",
				zap.String("todoID", todo.ID), zap.Error(err))
		}
	}

	logger.Info("Todo scheduled",
		zap.String("todoID", todo.ID),
		zap.String("date", date),
		zap.String("start", ClockTime(decision.ChosenStartMinutes)),
		zap.Int("durationMinutes", duration),
		zap.String("source", decision.Source))

	return e.Todos.GetByID(ctx, todo.ID)
}

// ScheduleTodo runs the whole pipeline: free slots, slot selection,
// calendar event, todo linkage.
func (e *DefaultSchedulingEngine) ScheduleTodo(ctx context.Context, todoID, date string) (*models.Todo, error) {
	resolvedDate, decision, err := e.PreviewSchedule(ctx, todoID, date)
	if err != nil {
		return nil, err
	}
	return e.ApplyDecision(ctx, todoID, resolvedDate, *decision)
}

// UnscheduleTodo deletes the linked calendar event and clears the
// linkage. A delete failure is tolerated; the event may already be gone.
func (e *DefaultSchedulingEngine) UnscheduleTodo(ctx context.Context, todoID string) (*models.Todo, error) {
	logger := utils.GetLogger()

	todo, err := e.Todos.GetByID(ctx, todoID)
	if err != nil {
		return nil, err
	}
	if !todo.IsScheduled() {
		return nil, ErrNotScheduled
	}

	if err := e.Calendar.DeleteEvent(ctx, todo.CalendarEventID); err != nil {
		logger.Warn("Failed to delete calendar event, clearing linkage anyway",
			zap.String("todoID", todo.ID), zap.String("eventID", todo.CalendarEventID), zap.Error(err))
	}
	if err := e.Todos.ClearSchedule(ctx, todo.ID); err != nil {
		return nil, err
	}
	return e.Todos.GetByID(ctx, todo.ID)
}
