package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"planora/handlers"
)

// RegisterTodoRoutes registers todo CRUD and per-todo scheduling endpoints.
func RegisterTodoRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/todos")
	{
		api.POST("", hb.Todo.CreateTodoHandler)
		api.GET("", hb.Todo.ListTodosHandler)
		api.GET("/:id", hb.Todo.GetTodoByIDHandler)
		api.PUT("/:id", hb.Todo.UpdateTodoHandler)
		api.DELETE("/:id", hb.Todo.DeleteTodoHandler)
		api.PUT("/:id/complete", hb.Todo.CompleteTodoHandler)

		api.POST("/:id/schedule", hb.Schedule.ScheduleTodoHandler)
		api.DELETE("/:id/schedule", hb.Schedule.UnscheduleTodoHandler)
	}
}

// RegisterScheduleRoutes registers availability and preview endpoints.
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/slots", hb.Schedule.GetFreeSlotsHandler)

	api := r.Group("/api/schedule")
	{
		api.POST("/preview", hb.Schedule.PreviewScheduleHandler)
		api.POST("/confirm", hb.Schedule.ConfirmScheduleHandler)
		api.DELETE("/preview/:sessionID", hb.Schedule.CancelPreviewHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Planora"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterTodoRoutes(r, hb)
	RegisterScheduleRoutes(r, hb)
	RegisterHealthRoute(r)
}
