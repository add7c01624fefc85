package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/models"
)

var (
	testTargetDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	testNow        = time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC)
)

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"team meeting with client", 60},
		{"quick call", 60},
		{"dentist appointment", 60},
		{"grocery run", 45},
		{"shopping for shoes", 45},
		{"gym session", 60},
		{"morning workout", 60},
		{"read a book", 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, estimateDuration(tt.text), "text %q", tt.text)
	}
}

func TestFilterFutureSlots(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(540, 600),
		NewTimeSlot(900, 960),
	}

	// Scheduling for tomorrow keeps everything.
	assert.Len(t, filterFutureSlots(slots, testTargetDate, testNow, time.UTC), 2)

	// Scheduling for today at noon drops the morning slot.
	today := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	valid := filterFutureSlots(slots, testTargetDate, today, time.UTC)
	require.Len(t, valid, 1)
	assert.Equal(t, 900, valid[0].StartMinutes)

	// Late in the evening nothing survives.
	late := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	assert.Empty(t, filterFutureSlots(slots, testTargetDate, late, time.UTC))
}

func TestFallbackWorkTask(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(540, 600), // 09:00-10:00
		NewTimeSlot(900, 960), // 15:00-16:00
	}

	decision, err := fallbackSchedule("team meeting", "project report", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 540, decision.Slot.StartMinutes)
	assert.Equal(t, 540, decision.ChosenStartMinutes)
	assert.Equal(t, 60, decision.EstimatedDurationMinutes)
	assert.Equal(t, models.SourceFallback, decision.Source)
	assert.Contains(t, decision.Reasoning, "Work")
}

func TestFallbackWorkTaskNudgedToWorkday(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(360, 600), // 06:00-10:00
		NewTimeSlot(900, 960),
	}

	decision, err := fallbackSchedule("client email", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 360, decision.Slot.StartMinutes)
	assert.Equal(t, 480, decision.ChosenStartMinutes, "work tasks start no earlier than 08:00")
}

func TestFallbackWorkSingleSlotUsesDefault(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(360, 420), // only one slot, before the workday
	}

	decision, err := fallbackSchedule("project review", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 360, decision.ChosenStartMinutes)
	assert.Contains(t, decision.Reasoning, "General")
}

func TestFallbackPersonalTask(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(540, 600),
		NewTimeSlot(840, 960), // 14:00-16:00, midpoint 15:00
	}

	decision, err := fallbackSchedule("grocery shopping", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 840, decision.Slot.StartMinutes)
	assert.Equal(t, 900, decision.ChosenStartMinutes)
	assert.Equal(t, 45, decision.EstimatedDurationMinutes)
	assert.Contains(t, decision.Reasoning, "Personal")
}

func TestFallbackEveningTask(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(600, 660),   // 10:00-11:00
		NewTimeSlot(1140, 1320), // 19:00-22:00
	}

	decision, err := fallbackSchedule("take sleeping pills before bed", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 1140, decision.Slot.StartMinutes)
	assert.Equal(t, 1200, decision.ChosenStartMinutes, "evening tasks anchor at 20:00")
	assert.Contains(t, decision.Reasoning, "Evening")
}

func TestFallbackEveningShortSlot(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(1140, 1180), // 19:00-19:40, an hour before the end is before the start
	}

	decision, err := fallbackSchedule("dinner with friends", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 1140, decision.ChosenStartMinutes)
}

func TestFallbackEveningWithoutEveningSlot(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(600, 660),
		NewTimeSlot(720, 780),
	}

	decision, err := fallbackSchedule("evening walk", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 600, decision.ChosenStartMinutes, "no slot at or after 18:00, falls back to the first slot")
	assert.Contains(t, decision.Reasoning, "General")
}

func TestFallbackWorkBeatsPersonal(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(540, 600),
		NewTimeSlot(840, 960),
	}

	// Both work and personal keywords match; work wins.
	decision, err := fallbackSchedule("meeting about gym membership", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 540, decision.Slot.StartMinutes)
	assert.Contains(t, decision.Reasoning, "Work")
}

func TestFallbackDefaultTask(t *testing.T) {
	slots := []models.TimeSlot{
		NewTimeSlot(600, 720),
	}

	decision, err := fallbackSchedule("water the plants", "", testTargetDate, testNow, time.UTC, slots)
	require.NoError(t, err)
	assert.Equal(t, 600, decision.ChosenStartMinutes)
	assert.Equal(t, 30, decision.EstimatedDurationMinutes)
	assert.Contains(t, decision.Reasoning, "General")
}

func TestFallbackNoSlots(t *testing.T) {
	_, err := fallbackSchedule("anything", "", testTargetDate, testNow, time.UTC, nil)
	assert.ErrorIs(t, err, ErrNoSlotsAvailable)
}

func TestFallbackAllSlotsInPast(t *testing.T) {
	slots := []models.TimeSlot{NewTimeSlot(540, 600)}
	late := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)

	_, err := fallbackSchedule("anything", "", testTargetDate, late, time.UTC, slots)
	assert.ErrorIs(t, err, ErrNoSlotsAvailable)
}

func TestPackageDecisionClampsDuration(t *testing.T) {
	slot := NewTimeSlot(1400, 1439)
	decision := packageDecision(slot, 1420, "late", 60, models.SourceFallback)
	assert.Equal(t, 19, decision.EstimatedDurationMinutes, "duration never runs past end of day")
}
