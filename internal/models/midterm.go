package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// MidtermStatus represents the lifecycle state of a midterm todo
type MidtermStatus string

const (
	MidtermStatusPending    MidtermStatus = "pending"
	MidtermStatusInProgress MidtermStatus = "in_progress"
	MidtermStatusOnHold     MidtermStatus = "on_hold"
	MidtermStatusCompleted  MidtermStatus = "completed"

	// MidtermStatusCancelled is only found in old databases; it reads as on_hold.
	MidtermStatusCancelled MidtermStatus = "cancelled"
)

// MaxTitleLength is the width of the midterm_todos.title column.
const MaxTitleLength = 200

// Valid reports whether s is accepted on write. The legacy cancelled value is
// accepted and stored as on_hold.
func (s MidtermStatus) Valid() bool {
	switch s {
	case MidtermStatusPending, MidtermStatusInProgress, MidtermStatusOnHold,
		MidtermStatusCompleted, MidtermStatusCancelled:
		return true
	}
	return false
}

// Normalize maps the legacy cancelled status to on_hold.
func (s MidtermStatus) Normalize() MidtermStatus {
	if s == MidtermStatusCancelled {
		return MidtermStatusOnHold
	}
	return s
}

// MidtermTodo represents an item spanning a date range with percent progress
type MidtermTodo struct {
	ID        int64         `json:"id" db:"id"`
	Title     string        `json:"title" db:"title"`
	Content   *string       `json:"content" db:"content"`
	StartDate Date          `json:"start_date" db:"start_date"`
	EndDate   Date          `json:"end_date" db:"end_date"`
	Progress  int           `json:"progress" db:"progress"`
	Status    MidtermStatus `json:"status" db:"status"`
	Priority  Priority      `json:"priority" db:"priority"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// DaysLeft returns the number of days from today until the end date. It is
// negative once the end date has passed.
func (t *MidtermTodo) DaysLeft(today Date) int {
	return t.EndDate.DaysSince(today)
}

// IsOverdue returns true if the end date has passed and the todo is open
func (t *MidtermTodo) IsOverdue(today Date) bool {
	return t.Status != MidtermStatusCompleted && t.EndDate.Before(today)
}

// NewMidtermTodo is the input for creating a midterm todo.
type NewMidtermTodo struct {
	Title     string        `json:"title"`
	Content   *string       `json:"content"`
	StartDate Date          `json:"start_date"`
	EndDate   Date          `json:"end_date"`
	Progress  int           `json:"progress"`
	Status    MidtermStatus `json:"status"`
	Priority  Priority      `json:"priority"`
}

// Normalize fills defaults.
func (n *NewMidtermTodo) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	if n.Content != nil && strings.TrimSpace(*n.Content) == "" {
		n.Content = nil
	}
	if n.Status == "" {
		n.Status = MidtermStatusPending
	}
	n.Status = n.Status.Normalize()
}

// Validate reports every problem with the input at once.
func (n NewMidtermTodo) Validate() error {
	var errs *multierror.Error
	errs = validateTitle(errs, n.Title)
	if n.StartDate.IsZero() {
		errs = multierror.Append(errs, fmt.Errorf("start_date is required"))
	}
	if n.EndDate.IsZero() {
		errs = multierror.Append(errs, fmt.Errorf("end_date is required"))
	}
	errs = validateRange(errs, n.StartDate, n.EndDate)
	errs = validateProgress(errs, n.Progress)
	if n.Status != "" && !n.Status.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("unknown status %q", n.Status))
	}
	if !n.Priority.Valid() {
		errs = multierror.Append(errs, fmt.Errorf("priority must be between 0 and 2, got %d", n.Priority))
	}
	return newValidationError(errs)
}

// MidtermTodoPatch is a sparse update of a midterm todo. Progress and status
// are independent.
type MidtermTodoPatch struct {
	Title     Optional[string]        `json:"title"`
	Content   Optional[string]        `json:"content"`
	StartDate Optional[Date]          `json:"start_date"`
	EndDate   Optional[Date]          `json:"end_date"`
	Progress  Optional[int]           `json:"progress"`
	Status    Optional[MidtermStatus] `json:"status"`
	Priority  Optional[Priority]      `json:"priority"`
}

// IsEmpty reports whether the patch changes nothing.
func (p MidtermTodoPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Content.Set && !p.StartDate.Set && !p.EndDate.Set &&
		!p.Progress.Set && !p.Status.Set && !p.Priority.Set
}

// Validate checks the fields present in the patch. The date range is only
// checked here when both ends are part of the patch; see ValidateAgainst.
func (p MidtermTodoPatch) Validate() error {
	var errs *multierror.Error
	if p.Title.Set {
		if p.Title.Null {
			errs = multierror.Append(errs, fmt.Errorf("title cannot be empty"))
		} else {
			errs = validateTitle(errs, p.Title.Value)
		}
	}
	if p.StartDate.Set && (p.StartDate.Null || p.StartDate.Value.IsZero()) {
		errs = multierror.Append(errs, fmt.Errorf("start_date cannot be empty"))
	}
	if p.EndDate.Set && (p.EndDate.Null || p.EndDate.Value.IsZero()) {
		errs = multierror.Append(errs, fmt.Errorf("end_date cannot be empty"))
	}
	if p.StartDate.Set && p.EndDate.Set {
		errs = validateRange(errs, p.StartDate.Value, p.EndDate.Value)
	}
	if p.Progress.Set {
		if p.Progress.Null {
			errs = multierror.Append(errs, fmt.Errorf("progress cannot be null"))
		} else {
			errs = validateProgress(errs, p.Progress.Value)
		}
	}
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		errs = multierror.Append(errs, fmt.Errorf("unknown status %q", p.Status.Value))
	}
	if p.Priority.Set && (p.Priority.Null || !p.Priority.Value.Valid()) {
		errs = multierror.Append(errs, fmt.Errorf("priority must be between 0 and 2, got %d", p.Priority.Value))
	}
	return newValidationError(errs)
}

// TouchesOneDate reports whether exactly one end of the range is changed, in
// which case the stored row is needed to check the range.
func (p MidtermTodoPatch) TouchesOneDate() bool {
	return p.StartDate.Set != p.EndDate.Set
}

// ValidateAgainst checks the range that results from applying the patch to
// current.
func (p MidtermTodoPatch) ValidateAgainst(current *MidtermTodo) error {
	start, end := current.StartDate, current.EndDate
	if p.StartDate.Set {
		start = p.StartDate.Value
	}
	if p.EndDate.Set {
		end = p.EndDate.Value
	}
	return newValidationError(validateRange(nil, start, end))
}

// Assignments maps the patch to column assignments.
func (p MidtermTodoPatch) Assignments() []Assignment {
	var out []Assignment
	if p.Title.Set {
		out = append(out, Assignment{Column: "title", Value: strings.TrimSpace(p.Title.Value)})
	}
	if p.Content.Set {
		out = append(out, Assignment{Column: "content", Value: textValue(p.Content)})
	}
	if p.StartDate.Set {
		out = append(out, Assignment{Column: "start_date", Value: p.StartDate.Value})
	}
	if p.EndDate.Set {
		out = append(out, Assignment{Column: "end_date", Value: p.EndDate.Value})
	}
	if p.Progress.Set {
		out = append(out, Assignment{Column: "progress", Value: p.Progress.Value})
	}
	if p.Status.Set {
		out = append(out, Assignment{Column: "status", Value: p.Status.Value.Normalize()})
	}
	if p.Priority.Set {
		out = append(out, Assignment{Column: "priority", Value: p.Priority.Value})
	}
	return out
}

func validateTitle(errs *multierror.Error, title string) *multierror.Error {
	title = strings.TrimSpace(title)
	if title == "" {
		return multierror.Append(errs, fmt.Errorf("title is required"))
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return multierror.Append(errs, fmt.Errorf("title is longer than %d characters", MaxTitleLength))
	}
	return errs
}

func validateRange(errs *multierror.Error, start, end Date) *multierror.Error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return multierror.Append(errs, fmt.Errorf("end_date %s is before start_date %s", end, start))
	}
	return errs
}

func validateProgress(errs *multierror.Error, progress int) *multierror.Error {
	if progress < 0 || progress > 100 {
		return multierror.Append(errs, fmt.Errorf("progress must be between 0 and 100, got %d", progress))
	}
	return errs
}
