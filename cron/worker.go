package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"planora/config"
	todoRepo "planora/database/repository/todo"
	"planora/services/calendar"
	"planora/utils"
)

const TypeScheduleVerify = "schedule:verify"

// VerifyPayload identifies the todo whose calendar event gets re-checked.
type VerifyPayload struct {
	TodoID string `json:"todoId"`
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisWorkerDB,
	}
}

// Enqueuer submits verification tasks for later processing.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer creates an Enqueuer backed by the worker Redis DB.
func NewEnqueuer() *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpts())}
}

// EnqueueVerify schedules a verification of the todo's event at the given time.
func (e *Enqueuer) EnqueueVerify(ctx context.Context, todoID string, at time.Time) error {
	payload, err := json.Marshal(VerifyPayload{TodoID: todoID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeScheduleVerify, payload)
	_, err = e.client.EnqueueContext(ctx, task, asynq.ProcessAt(at), asynq.MaxRetry(3))
	return err
}

// Close releases the underlying client.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// InitVerifyWorker runs the async worker in background.
func InitVerifyWorker(todos todoRepo.TodoRepository, cal calendar.Service) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeScheduleVerify, handleVerifyTask(todos, cal))

	// Start async worker with retry logic
	go func() {
		log.Println("[VerifyWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[VerifyWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[VerifyWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleVerifyTask re-checks that a scheduled todo still has a live
// calendar event; when the user deleted the event by hand, the stale
// linkage on the todo gets cleared so it can be rescheduled.
func handleVerifyTask(todos todoRepo.TodoRepository, cal calendar.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p VerifyPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid verify payload", zap.Error(err))
			return err
		}

		todo, err := todos.GetByID(ctx, p.TodoID)
		if err != nil {
			// Deleted todos have nothing left to verify.
			logger.Debug("Todo gone before verification", zap.String("todoID", p.TodoID))
			return nil
		}
		if !todo.IsScheduled() {
			return nil
		}

		day, err := time.Parse("2006-01-02", todo.Date)
		if err != nil {
			logger.Error("Todo has invalid date", zap.String("todoID", todo.ID), zap.String("date", todo.Date))
			return nil
		}

		events, err := cal.ListEvents(ctx, day)
		if err != nil {
			logger.Warn("Verification calendar read failed", zap.String("todoID", todo.ID), zap.Error(err))
			return err // retried by asynq
		}

		for _, event := range events {
			if event.ID == todo.CalendarEventID {
				return nil
			}
		}

		logger.Info("Calendar event vanished, clearing todo schedule",
			zap.String("todoID", todo.ID), zap.String("eventID", todo.CalendarEventID))
		return todos.ClearSchedule(ctx, todo.ID)
	}
}
