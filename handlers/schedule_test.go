package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"planora/models"
	"planora/services/scheduler"
)

func newScheduleTestRouter(sched *fakeScheduler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewScheduleHandler(sched, nil)
	r.GET("/api/slots", h.GetFreeSlotsHandler)
	r.POST("/api/todos/:id/schedule", h.ScheduleTodoHandler)
	r.DELETE("/api/todos/:id/schedule", h.UnscheduleTodoHandler)
	return r
}

func TestGetFreeSlots(t *testing.T) {
	sched := &fakeScheduler{slots: []models.TimeSlot{
		{StartMinutes: 540, EndMinutes: 600, DurationMinutes: 60, StartTime: "09:00", EndTime: "10:00"},
	}}
	r := newScheduleTestRouter(sched)

	w := doJSON(t, r, http.MethodGet, "/api/slots?date=2026-03-14", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"startTime":"09:00"`)
}

func TestGetFreeSlotsRequiresDate(t *testing.T) {
	r := newScheduleTestRouter(&fakeScheduler{})

	w := doJSON(t, r, http.MethodGet, "/api/slots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFreeSlotsRejectsBadMinDuration(t *testing.T) {
	r := newScheduleTestRouter(&fakeScheduler{})

	w := doJSON(t, r, http.MethodGet, "/api/slots?date=2026-03-14&min_duration=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/slots?date=2026-03-14&min_duration=-5", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFreeSlotsEmptyIsArray(t *testing.T) {
	r := newScheduleTestRouter(&fakeScheduler{})

	w := doJSON(t, r, http.MethodGet, "/api/slots?date=2026-03-14", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slots":[]`)
}

func TestScheduleTodoEndpoint(t *testing.T) {
	repo := newFakeTodoRepo(&models.Todo{ID: "a", Title: "todo", Date: "2026-03-14"})
	sched := &fakeScheduler{repo: repo}
	r := newScheduleTestRouter(sched)

	w := doJSON(t, r, http.MethodPost, "/api/todos/a/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a"}, sched.scheduledIDs)
}

func TestScheduleTodoNotFound(t *testing.T) {
	sched := &fakeScheduler{scheduleErr: mongo.ErrNoDocuments}
	r := newScheduleTestRouter(sched)

	w := doJSON(t, r, http.MethodPost, "/api/todos/missing/schedule", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleTodoNoSlotsConflict(t *testing.T) {
	sched := &fakeScheduler{scheduleErr: scheduler.ErrNoSlotsAvailable}
	r := newScheduleTestRouter(sched)

	w := doJSON(t, r, http.MethodPost, "/api/todos/a/schedule", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "no free time slots")
}

func TestUnscheduleTodoEndpoint(t *testing.T) {
	repo := newFakeTodoRepo(&models.Todo{ID: "a", Title: "todo", Date: "2026-03-14"})
	sched := &fakeScheduler{repo: repo}
	r := newScheduleTestRouter(sched)

	w := doJSON(t, r, http.MethodDelete, "/api/todos/a/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a"}, sched.unscheduledIDs)
}

func TestUnscheduleTodoConflictWhenNotScheduled(t *testing.T) {
	sched := &fakeScheduler{unscheduleErr: scheduler.ErrNotScheduled}
	r := newScheduleTestRouter(sched)

	w := doJSON(t, r, http.MethodDelete, "/api/todos/a/schedule", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
