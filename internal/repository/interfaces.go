package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/Kerhoff/TodoWidget/internal/models"
)

var (
	// ErrNotConnected is returned when there is no live database pool.
	ErrNotConnected = errors.New("database connection is required")

	// ErrNotFound is returned when an update targets a missing row.
	ErrNotFound = errors.New("todo not found")
)

// Pool hands out the live connection pool, or nil when disconnected.
// Repositories ask for it on every call so a reconnect takes effect at once.
type Pool interface {
	DB() *sqlx.DB
}

// DailyTodoRepository defines the interface for daily todo data operations
type DailyTodoRepository interface {
	// List returns the todos of date ordered by creation time, or every todo
	// newest date first when date is nil.
	List(ctx context.Context, date *models.Date) ([]models.DailyTodo, error)
	GetByID(ctx context.Context, id int64) (*models.DailyTodo, error)
	Create(ctx context.Context, todo models.NewDailyTodo) (*models.DailyTodo, error)
	Update(ctx context.Context, id int64, patch models.DailyTodoPatch) (*models.DailyTodo, error)
	// Delete succeeds when the row does not exist.
	Delete(ctx context.Context, id int64) error
}

// MidtermTodoRepository defines the interface for midterm todo data operations
type MidtermTodoRepository interface {
	// List returns every todo ordered by end date, then highest priority.
	List(ctx context.Context) ([]models.MidtermTodo, error)
	GetByID(ctx context.Context, id int64) (*models.MidtermTodo, error)
	Create(ctx context.Context, todo models.NewMidtermTodo) (*models.MidtermTodo, error)
	Update(ctx context.Context, id int64, patch models.MidtermTodoPatch) (*models.MidtermTodo, error)
	// Delete succeeds when the row does not exist.
	Delete(ctx context.Context, id int64) error
}
