package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	todoRepo "planora/database/repository/todo"
	"planora/models"
	"planora/services/scheduler"
	"planora/utils"
)

// TodoHandler serves the todo CRUD endpoints.
type TodoHandler struct {
	Repo      todoRepo.TodoRepository
	Scheduler scheduler.SchedulingService
}

func NewTodoHandler(repo todoRepo.TodoRepository, sched scheduler.SchedulingService) *TodoHandler {
	return &TodoHandler{Repo: repo, Scheduler: sched}
}

// CreateTodoHandler handles POST /api/todos.
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
		return
	}

	id, err := h.Repo.Create(c.Request.Context(), models.Todo{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		logger.Error("Failed to create todo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create todo"})
		return
	}

	todo, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error("Failed to load created todo", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load created todo"})
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// ListTodosHandler handles GET /api/todos with an optional date filter.
func (h *TodoHandler) ListTodosHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var (
		todos []models.Todo
		err   error
	)
	if date := c.Query("date"); date != "" {
		todos, err = h.Repo.GetByDate(c.Request.Context(), date)
	} else {
		todos, err = h.Repo.List(c.Request.Context())
	}
	if err != nil {
		logger.Error("Failed to list todos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list todos"})
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	c.JSON(http.StatusOK, gin.H{"todos": todos})
}

// GetTodoByIDHandler handles GET /api/todos/:id.
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id := c.Param("id")
	todo, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mongo.ErrNoDocuments) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "todo not found"})
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodoHandler handles PUT /api/todos/:id.
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	logger := utils.GetLogger()
	id := c.Param("id")

	var req models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	todo, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}

	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD"})
			return
		}
		todo.Date = *req.Date
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}

	if err := h.Repo.Update(c.Request.Context(), *todo); err != nil {
		logger.Error("Failed to update todo", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update todo"})
		return
	}
	c.JSON(http.StatusOK, todo)
}

// DeleteTodoHandler handles DELETE /api/todos/:id. A scheduled todo's
// calendar event is removed first.
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	logger := utils.GetLogger()
	id := c.Param("id")

	if _, err := h.Scheduler.UnscheduleTodo(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
			return
		}
		if !errors.Is(err, scheduler.ErrNotScheduled) {
			logger.Warn("Failed to unschedule todo before delete", zap.String("id", id), zap.Error(err))
		}
	}

	if err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mongo.ErrNoDocuments) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to delete todo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
}

// CompleteTodoHandler handles PUT /api/todos/:id/complete.
func (h *TodoHandler) CompleteTodoHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.SetCompleted(c.Request.Context(), id, true); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mongo.ErrNoDocuments) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "failed to complete todo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo completed"})
}
