// File: planora/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"planora/config"
	"planora/cron"
	"planora/database"
	todoRepo "planora/database/repository/todo"
	"planora/handlers"
	"planora/routes"
	"planora/services/calendar"
	ai "planora/services/intelligence"
	"planora/services/scheduler"
	"planora/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	location, err := time.LoadLocation(config.AppConfig.CalendarTimezone)
	if err != nil {
		logger.Sugar().Warnf("main: unknown timezone %q, falling back to UTC", config.AppConfig.CalendarTimezone)
		location = time.UTC
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	todosRepo := todoRepo.NewMongoTodoRepo()

	// services.
	calendarService := calendar.NewCalDAVService(
		config.AppConfig.CalDAVURL,
		config.AppConfig.CalDAVUsername,
		config.AppConfig.CalDAVPassword,
		config.AppConfig.CalDAVPath,
		location,
	)
	if config.AppConfig.CalDAVURL == "" {
		logger.Sugar().Warn("main: no CalDAV endpoint configured, calendar reads return an empty day")
	}

	var ranker ai.SlotRanker
	if config.AppConfig.GeminiAPIKey != "" {
		geminiRanker, err := ai.NewGeminiRanker(
			config.AppConfig.GeminiAPIKey,
			config.AppConfig.GeminiModel,
			time.Duration(config.AppConfig.GeminiTimeoutSeconds)*time.Second,
		)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini ranker: %v", err)
		}
		ranker = geminiRanker
	} else {
		logger.Sugar().Info("main: no Gemini API key configured, using deterministic fallback scheduling")
	}

	verifyEnqueuer := cron.NewEnqueuer()
	defer verifyEnqueuer.Close()
	cron.InitVerifyWorker(todosRepo, calendarService)

	schedulingEngine := &scheduler.DefaultSchedulingEngine{
		Calendar: calendarService,
		Todos:    todosRepo,
		Policy: &scheduler.SlotPolicy{
			Ranker:   ranker,
			Location: location,
		},
		Verify:         verifyEnqueuer,
		Location:       location,
		MinSlotMinutes: config.AppConfig.MinSlotMinutes,
	}

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Todo:     handlers.NewTodoHandler(todosRepo, schedulingEngine),
		Schedule: handlers.NewScheduleHandler(schedulingEngine, utils.GetCacheClient()),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
