package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kerhoff/TodoWidget/internal/models"
)

func Test_buildUpdate_Numbers_Placeholders_And_Refreshes_UpdatedAt(t *testing.T) {
	t.Parallel()

	query, args := buildUpdate("daily_todos", "id", []models.Assignment{
		{Column: "content", Value: "a"},
		{Column: "priority", Value: models.PriorityHigh},
	}, 7)

	assert.Equal(t, "UPDATE daily_todos SET content = $1, priority = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3 RETURNING id", query)
	assert.Equal(t, []any{"a", models.PriorityHigh, int64(7)}, args)
}

func Test_buildUpdate_Empty_Patch_Still_Touches_Row(t *testing.T) {
	t.Parallel()

	query, args := buildUpdate("midterm_todos", "id", nil, 1)

	assert.Equal(t, "UPDATE midterm_todos SET updated_at = CURRENT_TIMESTAMP WHERE id = $1 RETURNING id", query)
	assert.Equal(t, []any{int64(1)}, args)
}
