package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/models"
	ai "planora/services/intelligence"
)

type fakeRanker struct {
	result  *models.RankingResult
	err     error
	lastReq ai.RankRequest
	calls   int
}

func (f *fakeRanker) RankSlots(_ context.Context, req ai.RankRequest) (*models.RankingResult, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

func policySlots() []models.TimeSlot {
	return []models.TimeSlot{
		NewTimeSlot(540, 600), // 09:00-10:00
		NewTimeSlot(900, 990), // 15:00-16:30
	}
}

func TestSelectSlotEmptyInput(t *testing.T) {
	p := &SlotPolicy{}
	_, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, testNow, nil)
	assert.ErrorIs(t, err, ErrNoSlotsAvailable)
}

func TestSelectSlotNilRankerUsesFallback(t *testing.T) {
	p := &SlotPolicy{Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "water the plants", "", testTargetDate, testNow, policySlots())
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, decision.Source)
	assert.Equal(t, 540, decision.ChosenStartMinutes)
}

func TestSelectSlotHonorsRanking(t *testing.T) {
	ranker := &fakeRanker{result: &models.RankingResult{
		SelectedSlotIndex:        1,
		SuggestedStartTime:       "15:30",
		Reasoning:                "afternoon suits errands",
		EstimatedDurationMinutes: 45,
	}}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, testNow, policySlots())
	require.NoError(t, err)
	assert.Equal(t, models.SourceGemini, decision.Source)
	assert.Equal(t, 900, decision.Slot.StartMinutes)
	assert.Equal(t, 930, decision.ChosenStartMinutes)
	assert.Equal(t, 45, decision.EstimatedDurationMinutes)
	assert.Equal(t, "afternoon suits errands", decision.Reasoning)
	assert.Equal(t, 1, ranker.calls)
	assert.Len(t, ranker.lastReq.Slots, 2)
}

func TestSelectSlotRankerErrorFallsBack(t *testing.T) {
	ranker := &fakeRanker{err: errors.New("deadline exceeded")}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "grocery shopping", "", testTargetDate, testNow, policySlots())
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, decision.Source)
	assert.Equal(t, 1, ranker.calls)
}

func TestSelectSlotOutOfRangeIndexFallsBack(t *testing.T) {
	ranker := &fakeRanker{result: &models.RankingResult{SelectedSlotIndex: 7}}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, testNow, policySlots())
	require.NoError(t, err)
	assert.Equal(t, models.SourceFallback, decision.Source)
}

func TestSelectSlotSuggestedTimeOutsideSlot(t *testing.T) {
	// The index and duration survive; only the start time is corrected.
	ranker := &fakeRanker{result: &models.RankingResult{
		SelectedSlotIndex:        1,
		SuggestedStartTime:       "09:30", // inside slot 0, not slot 1
		EstimatedDurationMinutes: 45,
	}}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, testNow, policySlots())
	require.NoError(t, err)
	assert.Equal(t, models.SourceGemini, decision.Source)
	assert.Equal(t, 900, decision.Slot.StartMinutes)
	assert.Equal(t, 900, decision.ChosenStartMinutes)
	assert.Equal(t, 45, decision.EstimatedDurationMinutes)
}

func TestSelectSlotMalformedSuggestedTime(t *testing.T) {
	ranker := &fakeRanker{result: &models.RankingResult{
		SelectedSlotIndex:  0,
		SuggestedStartTime: "25:99",
	}}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, testNow, policySlots())
	require.NoError(t, err)
	assert.Equal(t, models.SourceGemini, decision.Source)
	assert.Equal(t, 540, decision.ChosenStartMinutes)
}

func TestSelectSlotRankingDefaults(t *testing.T) {
	// Missing reasoning and duration get sensible defaults.
	ranker := &fakeRanker{result: &models.RankingResult{SelectedSlotIndex: 0}}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, testNow, policySlots())
	require.NoError(t, err)
	assert.Equal(t, "AI selected this time", decision.Reasoning)
	assert.Equal(t, 30, decision.EstimatedDurationMinutes)
}

func TestSelectSlotRankerSeesOnlyFutureSlots(t *testing.T) {
	// Scheduling for today at noon: the ranker must never see the
	// morning slot, and index 0 points at the afternoon one.
	today := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ranker := &fakeRanker{result: &models.RankingResult{SelectedSlotIndex: 0}}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	decision, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, today, policySlots())
	require.NoError(t, err)
	require.Len(t, ranker.lastReq.Slots, 1)
	assert.Equal(t, 900, ranker.lastReq.Slots[0].StartMinutes)
	assert.Equal(t, 900, decision.Slot.StartMinutes)
}

func TestSelectSlotNoFutureSlotsSkipsRanker(t *testing.T) {
	late := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	ranker := &fakeRanker{result: &models.RankingResult{SelectedSlotIndex: 0}}
	p := &SlotPolicy{Ranker: ranker, Location: time.UTC}

	_, err := p.SelectSlot(context.Background(), "task", "", testTargetDate, late, policySlots())
	assert.ErrorIs(t, err, ErrNoSlotsAvailable)
	assert.Zero(t, ranker.calls)
}
