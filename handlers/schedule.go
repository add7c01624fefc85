package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/go-redis/redis/v8"

	"planora/models"
	"planora/services/scheduler"
	"planora/utils"
)

const (
	previewPrefix = "schedule:preview:"
	previewTTL    = 10 * time.Minute
)

// ScheduleHandler serves free-slot and scheduling endpoints.
type ScheduleHandler struct {
	Engine scheduler.SchedulingService
	Cache  *redis.Client
}

func NewScheduleHandler(engine scheduler.SchedulingService, cache *redis.Client) *ScheduleHandler {
	return &ScheduleHandler{Engine: engine, Cache: cache}
}

// GetFreeSlotsHandler handles GET /api/slots?date=YYYY-MM-DD&min_duration=30.
func (h *ScheduleHandler) GetFreeSlotsHandler(c *gin.Context) {
	logger := utils.GetLogger()

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	minDuration := 0
	if raw := c.Query("min_duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_duration must be a non-negative integer"})
			return
		}
		minDuration = parsed
	}

	slots, err := h.Engine.ComputeFreeSlots(c.Request.Context(), date, minDuration)
	if err != nil {
		logger.Error("Failed to compute free slots", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute free slots"})
		return
	}
	if slots == nil {
		slots = []models.TimeSlot{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// ScheduleTodoHandler handles POST /api/todos/:id/schedule, the
// one-shot pipeline: free slots, selection, calendar event.
func (h *ScheduleHandler) ScheduleTodoHandler(c *gin.Context) {
	logger := utils.GetLogger()
	id := c.Param("id")

	var req struct {
		Date string `json:"date"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
	}

	todo, err := h.Engine.ScheduleTodo(c.Request.Context(), id, req.Date)
	if err != nil {
		h.respondScheduleError(c, id, err)
		return
	}
	logger.Info("Todo scheduled via API", zap.String("todoID", id))
	c.JSON(http.StatusOK, todo)
}

// UnscheduleTodoHandler handles DELETE /api/todos/:id/schedule.
func (h *ScheduleHandler) UnscheduleTodoHandler(c *gin.Context) {
	id := c.Param("id")

	todo, err := h.Engine.UnscheduleTodo(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		case errors.Is(err, scheduler.ErrNotScheduled):
			c.JSON(http.StatusConflict, gin.H{"error": "todo is not scheduled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unschedule todo"})
		}
		return
	}
	c.JSON(http.StatusOK, todo)
}

// PreviewScheduleHandler handles POST /api/schedule/preview. The
// decision is cached for ten minutes; nothing touches the calendar
// until the session is confirmed.
func (h *ScheduleHandler) PreviewScheduleHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req struct {
		TodoID string `json:"todoId" binding:"required"`
		Date   string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	date, decision, err := h.Engine.PreviewSchedule(c.Request.Context(), req.TodoID, req.Date)
	if err != nil {
		h.respondScheduleError(c, req.TodoID, err)
		return
	}

	preview := models.SchedulePreview{TodoID: req.TodoID, Date: date, Decision: *decision}
	data, err := json.Marshal(preview)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to marshal schedule preview"})
		return
	}

	sessionID := uuid.New().String()
	if err := h.Cache.Set(c.Request.Context(), previewPrefix+sessionID, data, previewTTL).Err(); err != nil {
		logger.Error("Failed to cache schedule preview", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cache schedule preview"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionID": sessionID,
		"date":      date,
		"decision":  decision,
	})
}

// ConfirmScheduleHandler handles POST /api/schedule/confirm.
func (h *ScheduleHandler) ConfirmScheduleHandler(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionID" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	data, err := h.Cache.Get(c.Request.Context(), previewPrefix+req.SessionID).Result()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule preview not found or expired"})
		return
	}
	var preview models.SchedulePreview
	if err := json.Unmarshal([]byte(data), &preview); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse schedule preview"})
		return
	}

	todo, err := h.Engine.ApplyDecision(c.Request.Context(), preview.TodoID, preview.Date, preview.Decision)
	if err != nil {
		h.respondScheduleError(c, preview.TodoID, err)
		return
	}

	h.Cache.Del(c.Request.Context(), previewPrefix+req.SessionID)
	c.JSON(http.StatusOK, todo)
}

// CancelPreviewHandler handles DELETE /api/schedule/preview/:sessionID.
func (h *ScheduleHandler) CancelPreviewHandler(c *gin.Context) {
	sessionID := c.Param("sessionID")
	h.Cache.Del(c.Request.Context(), previewPrefix+sessionID)
	c.JSON(http.StatusOK, gin.H{"message": "Schedule preview cancelled"})
}

func (h *ScheduleHandler) respondScheduleError(c *gin.Context, todoID string, err error) {
	logger := utils.GetLogger()

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
	case errors.Is(err, scheduler.ErrNoSlotsAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": "no free time slots available for this date"})
	default:
		logger.Error("Scheduling failed", zap.String("todoID", todoID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scheduling failed", "details": err.Error()})
	}
}
