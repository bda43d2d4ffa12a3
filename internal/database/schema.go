package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Execer is the part of a connection EnsureSchema needs. *sql.Conn,
// *sqlx.Conn, *sql.DB and *sqlx.DB all satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type schemaStep struct {
	name  string
	query string
	// required steps abort the connect on anything but a duplicate error
	required bool
}

var schemaSteps = []schemaStep{
	{
		name: "create daily_todos",
		query: `CREATE TABLE IF NOT EXISTS daily_todos (
			id SERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			description TEXT,
			completed BOOLEAN DEFAULT FALSE,
			priority INTEGER DEFAULT 0,
			todo_date DATE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		required: true,
	},
	{
		name:     "index daily_todos.todo_date",
		query:    `CREATE INDEX IF NOT EXISTS idx_daily_todos_date ON daily_todos(todo_date)`,
		required: true,
	},
	{
		name:  "add daily_todos.description",
		query: `ALTER TABLE daily_todos ADD COLUMN IF NOT EXISTS description TEXT`,
	},
	{
		name:  "add daily_todos.status",
		query: `ALTER TABLE daily_todos ADD COLUMN IF NOT EXISTS status VARCHAR(20) DEFAULT 'pending'`,
	},
	{
		name: "backfill daily_todos.status",
		query: `UPDATE daily_todos
			SET status = CASE WHEN completed = true THEN 'completed' ELSE 'pending' END
			WHERE status IS NULL OR status = 'pending'`,
	},
	{
		name: "create midterm_todos",
		query: `CREATE TABLE IF NOT EXISTS midterm_todos (
			id SERIAL PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			content TEXT,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			progress INTEGER DEFAULT 0,
			status VARCHAR(20) DEFAULT 'pending',
			priority INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		required: true,
	},
	{
		name:     "index midterm_todos dates",
		query:    `CREATE INDEX IF NOT EXISTS idx_midterm_todos_dates ON midterm_todos(start_date, end_date)`,
		required: true,
	},
	{
		name:  "migrate cancelled midterm_todos",
		query: `UPDATE midterm_todos SET status = 'on_hold' WHERE status = 'cancelled'`,
	},
}

// EnsureSchema creates the todo tables and applies the additive migrations.
// It is idempotent and runs on every successful connect.
//
// Duplicate-object errors are ignored everywhere. Any other error aborts in
// table and index creation and is logged and skipped in column additions and
// backfills.
func EnsureSchema(ctx context.Context, db Execer, logger *logrus.Logger) error {
	for _, step := range schemaSteps {
		entry := logger.WithField("step", step.name)

		_, err := db.ExecContext(ctx, step.query)
		switch {
		case err == nil:
			entry.Debug("Schema step applied")
		case IsDuplicateObject(err):
			entry.WithError(err).Debug("Schema object already exists")
		case step.required:
			return fmt.Errorf("schema step %q failed: %w", step.name, err)
		default:
			entry.WithError(err).Warn("Schema step failed, continuing")
		}
	}

	logger.Info("Database schema is up to date")
	return nil
}
