// File: database/repository/todo/interface.go
package todoRepo

import (
	"context"

	"planora/config"
	"planora/database"
	"planora/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type TodoRepository interface {
	Create(ctx context.Context, todo models.Todo) (string, error)
	GetByID(ctx context.Context, id string) (*models.Todo, error)
	GetByDate(ctx context.Context, date string) ([]models.Todo, error)
	List(ctx context.Context) ([]models.Todo, error)
	Update(ctx context.Context, todo models.Todo) error
	Delete(ctx context.Context, id string) error
	SetSchedule(ctx context.Context, id string, eventID, start, end, reasoning, source string, durationMinutes int) error
	ClearSchedule(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id string, completed bool) error
}

type mongoTodoRepo struct {
	coll *mongo.Collection
}

// NewMongoTodoRepo constructs a new MongoDB TodoRepository.
func NewMongoTodoRepo() TodoRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoTodoRepo{
		coll: db.Collection("todos"),
	}
}
