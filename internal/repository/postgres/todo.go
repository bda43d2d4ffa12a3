package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/repository"
)

// dailyColumns tolerates NULLs left in rows written before the status column
// existed.
const dailyColumns = `id, content, description,
	COALESCE(status, 'pending') AS status,
	COALESCE(completed, false) AS completed,
	COALESCE(priority, 0) AS priority,
	todo_date, created_at, updated_at`

type dailyTodoRepository struct {
	pool repository.Pool
}

// NewDailyTodoRepository creates a daily todo repository on top of the
// manager's live pool.
func NewDailyTodoRepository(pool repository.Pool) repository.DailyTodoRepository {
	return &dailyTodoRepository{pool: pool}
}

func (r *dailyTodoRepository) db() (*sqlx.DB, error) {
	return currentDB(r.pool)
}

func (r *dailyTodoRepository) List(ctx context.Context, date *models.Date) ([]models.DailyTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	todos := []models.DailyTodo{}
	if date != nil {
		query := `SELECT ` + dailyColumns + `
			FROM daily_todos WHERE todo_date = $1 ORDER BY created_at ASC, id ASC`
		err = db.SelectContext(ctx, &todos, query, *date)
	} else {
		query := `SELECT ` + dailyColumns + `
			FROM daily_todos ORDER BY todo_date DESC, created_at ASC, id ASC`
		err = db.SelectContext(ctx, &todos, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily todos: %w", err)
	}
	return todos, nil
}

func (r *dailyTodoRepository) GetByID(ctx context.Context, id int64) (*models.DailyTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	todo := &models.DailyTodo{}
	err = db.GetContext(ctx, todo, `SELECT `+dailyColumns+` FROM daily_todos WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("daily todo %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get daily todo: %w", err)
	}
	return todo, nil
}

func (r *dailyTodoRepository) Create(ctx context.Context, in models.NewDailyTodo) (*models.DailyTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	in.Normalize()
	query := `INSERT INTO daily_todos (content, description, completed, status, priority, todo_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + dailyColumns

	todo := &models.DailyTodo{}
	err = db.GetContext(ctx, todo, query,
		in.Content, in.Description, in.Completed, in.Status, in.Priority, in.TodoDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create daily todo: %w", err)
	}
	return todo, nil
}

// Update writes only the fields present in patch. A status change and its
// completed flag go out in the same statement.
func (r *dailyTodoRepository) Update(ctx context.Context, id int64, patch models.DailyTodoPatch) (*models.DailyTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	query, args := buildUpdate("daily_todos", dailyColumns, patch.Assignments(), id)

	todo := &models.DailyTodo{}
	if err := db.GetContext(ctx, todo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("daily todo %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update daily todo: %w", err)
	}
	return todo, nil
}

func (r *dailyTodoRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM daily_todos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete daily todo: %w", err)
	}
	return nil
}
