package models

import (
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ValidationError carries every problem found in a todo input or patch.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func newValidationError(errs *multierror.Error) error {
	if errs.ErrorOrNil() == nil {
		return nil
	}
	return &ValidationError{Errors: errs.WrappedErrors()}
}
