package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// DailyStatus represents the lifecycle state of a daily todo
type DailyStatus string

const (
	DailyStatusPending   DailyStatus = "pending"
	DailyStatusCompleted DailyStatus = "completed"
	DailyStatusOnHold    DailyStatus = "on_hold"
)

// Valid reports whether s is one of the known daily statuses.
func (s DailyStatus) Valid() bool {
	switch s {
	case DailyStatusPending, DailyStatusCompleted, DailyStatusOnHold:
		return true
	}
	return false
}

// IsCompleted is the completed flag that must accompany s.
func (s DailyStatus) IsCompleted() bool {
	return s == DailyStatusCompleted
}

// StatusFromCompleted maps the legacy completed flag onto a status.
func StatusFromCompleted(completed bool) DailyStatus {
	if completed {
		return DailyStatusCompleted
	}
	return DailyStatusPending
}

// Priority represents the priority level of a todo item
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// Valid reports whether p is within the low..high range.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// DailyTodo represents a todo item scoped to a single calendar date
type DailyTodo struct {
	ID          int64       `json:"id" db:"id"`
	Content     string      `json:"content" db:"content"`
	Description *string     `json:"description" db:"description"`
	Status      DailyStatus `json:"status" db:"status"`
	Completed   bool        `json:"completed" db:"completed"`
	Priority    Priority    `json:"priority" db:"priority"`
	TodoDate    Date        `json:"todo_date" db:"todo_date"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// IsCompleted returns true if the todo is completed
func (t *DailyTodo) IsCompleted() bool {
	return t.Status == DailyStatusCompleted
}

// IsOnHold returns true if the todo is on hold
func (t *DailyTodo) IsOnHold() bool {
	return t.Status == DailyStatusOnHold
}

// NewDailyTodo is the input for creating a daily todo.
type NewDailyTodo struct {
	Content     string      `json:"content"`
	Description *string     `json:"description"`
	Status      DailyStatus `json:"status"`
	Completed   bool        `json:"completed"`
	Priority    Priority    `json:"priority"`
	TodoDate    Date        `json:"todo_date"`
}

// Normalize fills defaults and reconciles Status with Completed. An explicit
// status wins over the completed flag.
func (n *NewDailyTodo) Normalize() {
	n.Content = strings.TrimSpace(n.Content)
	if n.Description != nil && strings.TrimSpace(*n.Description) == "" {
		n.Description = nil
	}
	if n.Status == "" {
		n.Status = StatusFromCompleted(n.Completed)
	}
	n.Completed = n.Status.IsCompleted()
}

// Validate reports every problem with the input at once.
func (n NewDailyTodo) Validate() error {
	var errs *multierror.Error
	if strings.TrimSpace(n.Content) == "" {
		errs = multierror.Append(errs, fmt.Errorf("content is required"))
	}
	if n.TodoDate.IsZero() {
		errs = multierror.Append(errs, fmt.Errorf("todo_date is required"))
	}
	if n.Status != "" && !n.Status.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("unknown status %q", n.Status))
	}
	if !n.Priority.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("priority must be between 0 and 2, got %d", n.Priority))
	}
	return newValidationError(errs)
}

// DailyTodoPatch is a sparse update of a daily todo. Only fields that are Set
// are written.
type DailyTodoPatch struct {
	Content     Optional[string]      `json:"content"`
	Description Optional[string]      `json:"description"`
	Status      Optional[DailyStatus] `json:"status"`
	Completed   Optional[bool]        `json:"completed"`
	Priority    Optional[Priority]    `json:"priority"`
	TodoDate    Optional[Date]        `json:"todo_date"`
}

// IsEmpty reports whether the patch changes nothing.
func (p DailyTodoPatch) IsEmpty() bool {
	return !p.Content.Set && !p.Description.Set && !p.Status.Set &&
		!p.Completed.Set && !p.Priority.Set && !p.TodoDate.Set
}

// Validate reports every problem with the patch at once.
func (p DailyTodoPatch) Validate() error {
	var errs *multierror.Error
	if p.Content.Set && (p.Content.Null || strings.TrimSpace(p.Content.Value) == "") {
		errs = multierror.Append(errs, fmt.Errorf("content cannot be empty"))
	}
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		errs = multierror.Append(errs, fmt.Errorf("unknown status %q", p.Status.Value))
	}
	if p.Completed.Set && p.Completed.Null {
		errs = multierror.Append(errs, fmt.Errorf("completed cannot be null"))
	}
	if p.Priority.Set && (p.Priority.Null || !p.Priority.Value.Valid()) {
		errs = multierror.Append(errs, fmt.Errorf("priority must be between 0 and 2, got %d", p.Priority.Value))
	}
	if p.TodoDate.Set && (p.TodoDate.Null || p.TodoDate.Value.IsZero()) {
		errs = multierror.Append(errs, fmt.Errorf("todo_date cannot be empty"))
	}
	return newValidationError(errs)
}

// Assignments maps the patch to column assignments. A status change always
// carries the matching completed value and a bare completed change carries the
// matching status, so the pair is written in one statement. When both are
// present the status wins.
func (p DailyTodoPatch) Assignments() []Assignment {
	var out []Assignment
	if p.Content.Set {
		out = append(out, Assignment{Column: "content", Value: strings.TrimSpace(p.Content.Value)})
	}
	if p.Description.Set {
		out = append(out, Assignment{Column: "description", Value: textValue(p.Description)})
	}
	switch {
	case p.Status.Set:
		out = append(out,
			Assignment{Column: "status", Value: p.Status.Value},
			Assignment{Column: "completed", Value: p.Status.Value.IsCompleted()},
		)
	case p.Completed.Set:
		out = append(out,
			Assignment{Column: "completed", Value: p.Completed.Value},
			Assignment{Column: "status", Value: StatusFromCompleted(p.Completed.Value)},
		)
	}
	if p.Priority.Set {
		out = append(out, Assignment{Column: "priority", Value: p.Priority.Value})
	}
	if p.TodoDate.Set {
		out = append(out, Assignment{Column: "todo_date", Value: p.TodoDate.Value})
	}
	return out
}

// Assignment is a single column change produced from a patch.
type Assignment struct {
	Column string
	Value  any
}
