package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/repository"
)

func currentDB(pool repository.Pool) (*sqlx.DB, error) {
	db := pool.DB()
	if db == nil {
		return nil, repository.ErrNotConnected
	}
	return db, nil
}

// buildUpdate renders UPDATE ... SET ... RETURNING for the given assignments.
// updated_at is refreshed even when sets is empty. Column names come from the
// models' Assignments methods, never from user input.
func buildUpdate(table, returning string, sets []models.Assignment, id int64) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(sets)+1)

	fmt.Fprintf(&sb, "UPDATE %s SET ", table)
	for _, set := range sets {
		args = append(args, set.Value)
		fmt.Fprintf(&sb, "%s = $%d, ", set.Column, len(args))
	}
	sb.WriteString("updated_at = CURRENT_TIMESTAMP")

	args = append(args, id)
	fmt.Fprintf(&sb, " WHERE id = $%d RETURNING %s", len(args), returning)
	return sb.String(), args
}
