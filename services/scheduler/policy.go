// File: services/scheduler/policy.go
package scheduler

import (
	"context"
	"time"

	ai "planora/services/intelligence"
	"planora/utils"

	"go.uber.org/zap"

	"planora/models"
)

// SlotPolicy picks a slot and a start time for a todo. With a ranker
// configured it asks the model first and degrades to the deterministic
// fallback on any failure; without one the fallback is the whole policy.
// Its contract is total: it returns a decision or ErrNoSlotsAvailable,
// it never panics and never surfaces a ranking failure.
type SlotPolicy struct {
	Ranker   ai.SlotRanker // nil disables the model-assisted path
	Location *time.Location
}

func (p *SlotPolicy) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.UTC
}

// SelectSlot chooses one free slot and a start time within it.
// The caller injects now so the decision is a pure function of its inputs.
func (p *SlotPolicy) SelectSlot(ctx context.Context, title, description string, targetDate, now time.Time, freeSlots []models.TimeSlot) (*models.ScheduleDecision, error) {
	if len(freeSlots) == 0 {
		return nil, ErrNoSlotsAvailable
	}

	if p.Ranker != nil {
		if decision := p.rankWithModel(ctx, title, description, targetDate, now, freeSlots); decision != nil {
			return decision, nil
		}
		// The fallback re-filters from the original slot list on its own.
	}

	return fallbackSchedule(title, description, targetDate, now, p.location(), freeSlots)
}

// rankWithModel runs the model-assisted path. A nil return means "use
// the fallback": transport failures, timeouts, malformed replies and
// out-of-range indices all end up there, never with the caller.
func (p *SlotPolicy) rankWithModel(ctx context.Context, title, description string, targetDate, now time.Time, freeSlots []models.TimeSlot) *models.ScheduleDecision {
	logger := utils.GetLogger()

	valid := filterFutureSlots(freeSlots, targetDate, now, p.location())
	if len(valid) == 0 {
		logger.Debug("No future slots for ranking model", zap.Time("now", now))
		return nil
	}

	result, err := p.Ranker.RankSlots(ctx, ai.RankRequest{
		Title:       title,
		Description: description,
		TargetDate:  targetDate,
		Now:         now,
		Slots:       valid,
	})
	if err != nil {
		logger.Warn("Slot ranking failed, using fallback", zap.Error(err))
		return nil
	}

	if result.SelectedSlotIndex < 0 || result.SelectedSlotIndex >= len(valid) {
		logger.Warn("Ranking model returned out-of-range slot index",
			zap.Int("index", result.SelectedSlotIndex), zap.Int("slots", len(valid)))
		return nil
	}
	slot := valid[result.SelectedSlotIndex]

	// A suggested start outside the slot keeps the index and duration
	// but falls back to the slot's own start.
	chosen := slot.StartMinutes
	if result.SuggestedStartTime != "" {
		minutes, err := MinutesSinceMidnight(result.SuggestedStartTime)
		if err == nil && minutes >= slot.StartMinutes && minutes <= slot.EndMinutes {
			chosen = minutes
		} else {
			logger.Debug("Suggested start not inside slot, using slot start",
				zap.String("suggested", result.SuggestedStartTime),
				zap.String("slot", slot.StartTime+"-"+slot.EndTime))
		}
	}

	reasoning := result.Reasoning
	if reasoning == "" {
		reasoning = "AI selected this time"
	}
	duration := result.EstimatedDurationMinutes
	if duration <= 0 {
		duration = 30
	}

	decision := packageDecision(slot, chosen, reasoning, duration, models.SourceGemini)
	return &decision
}
