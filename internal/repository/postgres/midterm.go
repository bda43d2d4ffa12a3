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

const midtermColumns = `id, title, content, start_date, end_date,
	COALESCE(progress, 0) AS progress,
	COALESCE(status, 'pending') AS status,
	COALESCE(priority, 0) AS priority,
	created_at, updated_at`

type midtermTodoRepository struct {
	pool repository.Pool
}

// NewMidtermTodoRepository creates a midterm todo repository on top of the
// manager's live pool.
func NewMidtermTodoRepository(pool repository.Pool) repository.MidtermTodoRepository {
	return &midtermTodoRepository{pool: pool}
}

func (r *midtermTodoRepository) db() (*sqlx.DB, error) {
	return currentDB(r.pool)
}

func (r *midtermTodoRepository) List(ctx context.Context) ([]models.MidtermTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + midtermColumns + `
		FROM midterm_todos ORDER BY end_date ASC, priority DESC, id ASC`

	todos := []models.MidtermTodo{}
	if err := db.SelectContext(ctx, &todos, query); err != nil {
		return nil, fmt.Errorf("failed to query midterm todos: %w", err)
	}
	return todos, nil
}

func (r *midtermTodoRepository) GetByID(ctx context.Context, id int64) (*models.MidtermTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	todo := &models.MidtermTodo{}
	err = db.GetContext(ctx, todo, `SELECT `+midtermColumns+` FROM midterm_todos WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("midterm todo %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get midterm todo: %w", err)
	}
	return todo, nil
}

func (r *midtermTodoRepository) Create(ctx context.Context, in models.NewMidtermTodo) (*models.MidtermTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	in.Normalize()
	query := `INSERT INTO midterm_todos (title, content, start_date, end_date, progress, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + midtermColumns

	todo := &models.MidtermTodo{}
	err = db.GetContext(ctx, todo, query,
		in.Title, in.Content, in.StartDate, in.EndDate, in.Progress, in.Status, in.Priority,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create midterm todo: %w", err)
	}
	return todo, nil
}

func (r *midtermTodoRepository) Update(ctx context.Context, id int64, patch models.MidtermTodoPatch) (*models.MidtermTodo, error) {
	db, err := r.db()
	if err != nil {
		return nil, err
	}

	query, args := buildUpdate("midterm_todos", midtermColumns, patch.Assignments(), id)

	todo := &models.MidtermTodo{}
	if err := db.GetContext(ctx, todo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("midterm todo %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update midterm todo: %w", err)
	}
	return todo, nil
}

func (r *midtermTodoRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.db()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM midterm_todos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete midterm todo: %w", err)
	}
	return nil
}
