package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"planora/models"
)

type verifyRepo struct {
	todo    *models.Todo
	cleared []string
}

func (r *verifyRepo) Create(context.Context, models.Todo) (string, error) { return "", nil }

func (r *verifyRepo) GetByID(_ context.Context, id string) (*models.Todo, error) {
	if r.todo == nil || r.todo.ID != id {
		return nil, mongo.ErrNoDocuments
	}
	copied := *r.todo
	return &copied, nil
}

func (r *verifyRepo) GetByDate(context.Context, string) ([]models.Todo, error) { return nil, nil }
func (r *verifyRepo) List(context.Context) ([]models.Todo, error)              { return nil, nil }
func (r *verifyRepo) Update(context.Context, models.Todo) error                { return nil }
func (r *verifyRepo) Delete(context.Context, string) error                     { return nil }

func (r *verifyRepo) SetSchedule(context.Context, string, string, string, string, string, string, int) error {
	return nil
}

func (r *verifyRepo) ClearSchedule(_ context.Context, id string) error {
	r.cleared = append(r.cleared, id)
	return nil
}

func (r *verifyRepo) SetCompleted(context.Context, string, bool) error { return nil }

type verifyCalendar struct {
	events  []models.CalendarEvent
	listErr error
}

func (c *verifyCalendar) ListEvents(context.Context, time.Time) ([]models.CalendarEvent, error) {
	return c.events, c.listErr
}

func (c *verifyCalendar) BusyIntervals(context.Context, time.Time) ([]models.BusyInterval, error) {
	return nil, nil
}

func (c *verifyCalendar) CreateEvent(context.Context, string, string, time.Time, time.Time) (string, error) {
	return "", nil
}

func (c *verifyCalendar) UpdateEvent(context.Context, string, string, string, time.Time, time.Time) error {
	return nil
}

func (c *verifyCalendar) DeleteEvent(context.Context, string) error { return nil }

func verifyTask(t *testing.T, todoID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(VerifyPayload{TodoID: todoID})
	require.NoError(t, err)
	return asynq.NewTask(TypeScheduleVerify, payload)
}

func TestVerifyClearsVanishedEvent(t *testing.T) {
	repo := &verifyRepo{todo: &models.Todo{
		ID: "t1", Title: "todo", Date: "2026-03-14", CalendarEventID: "event-1",
	}}
	cal := &verifyCalendar{events: []models.CalendarEvent{{ID: "other-event"}}}

	err := handleVerifyTask(repo, cal)(context.Background(), verifyTask(t, "t1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, repo.cleared)
}

func TestVerifyKeepsLiveEvent(t *testing.T) {
	repo := &verifyRepo{todo: &models.Todo{
		ID: "t1", Title: "todo", Date: "2026-03-14", CalendarEventID: "event-1",
	}}
	cal := &verifyCalendar{events: []models.CalendarEvent{{ID: "event-1"}}}

	err := handleVerifyTask(repo, cal)(context.Background(), verifyTask(t, "t1"))
	require.NoError(t, err)
	assert.Empty(t, repo.cleared)
}

func TestVerifySkipsDeletedTodo(t *testing.T) {
	repo := &verifyRepo{}
	cal := &verifyCalendar{}

	err := handleVerifyTask(repo, cal)(context.Background(), verifyTask(t, "gone"))
	require.NoError(t, err)
	assert.Empty(t, repo.cleared)
}

func TestVerifySkipsUnscheduledTodo(t *testing.T) {
	repo := &verifyRepo{todo: &models.Todo{ID: "t1", Title: "todo", Date: "2026-03-14"}}
	cal := &verifyCalendar{events: []models.CalendarEvent{}}

	err := handleVerifyTask(repo, cal)(context.Background(), verifyTask(t, "t1"))
	require.NoError(t, err)
	assert.Empty(t, repo.cleared)
}

func TestVerifyRetriesOnCalendarError(t *testing.T) {
	repo := &verifyRepo{todo: &models.Todo{
		ID: "t1", Title: "todo", Date: "2026-03-14", CalendarEventID: "event-1",
	}}
	cal := &verifyCalendar{listErr: errors.New("caldav unreachable")}

	err := handleVerifyTask(repo, cal)(context.Background(), verifyTask(t, "t1"))
	assert.Error(t, err, "transient calendar failures bubble up for a retry")
	assert.Empty(t, repo.cleared)
}
