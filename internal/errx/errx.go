package errx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// SystemErrorMessage is the user-facing fallback for unexpected failures.
	SystemErrorMessage = "internal server error"
	// NothingSavedMessage is shown when a batch was rolled back.
	NothingSavedMessage = "something went wrong, nothing was saved"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("not found")

// FieldIssue pins a validation problem to a row (1-based, 0 for single inputs) and field.
type FieldIssue struct {
	Row    int    `json:"row,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (i FieldIssue) String() string {
	if i.Row > 0 {
		return fmt.Sprintf("row %d: %s %s", i.Row, i.Field, i.Reason)
	}
	return fmt.Sprintf("%s %s", i.Field, i.Reason)
}

// ValidationError reports input that failed shape, type or required-field checks.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a ValidationError from the collected issues, or nil when there are none.
func Invalid(issues []FieldIssue) error {
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

// ReferentialError reports a reference to a country or food that does not exist.
type ReferentialError struct {
	Entity string
	ID     string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Entity, e.ID)
}

// ConflictError wraps a failed atomic write. The whole operation was rolled back.
type ConflictError struct {
	Op  string
	Err error
}

func (e *ConflictError) Error() string {
	if e.Err == nil {
		return e.Op + ": conflict"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Conflict wraps err as a ConflictError unless it already carries a typed error.
func Conflict(op string, err error) error {
	if err == nil {
		return nil
	}
	var ref *ReferentialError
	var conflict *ConflictError
	var invalid *ValidationError
	if errors.As(err, &ref) || errors.As(err, &conflict) || errors.As(err, &invalid) {
		return err
	}
	return &ConflictError{Op: op, Err: err}
}

// Status maps an error to the HTTP status a handler should answer with.
func Status(err error) int {
	var invalid *ValidationError
	var ref *ReferentialError
	var conflict *ConflictError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &ref):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns a message that is safe to show to the caller.
func Message(err error) string {
	var ref *ReferentialError
	switch Status(err) {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusUnprocessableEntity:
		errors.As(err, &ref)
		return ref.Error() + ", nothing was saved"
	case http.StatusConflict:
		return NothingSavedMessage
	case http.StatusNotFound:
		return ErrNotFound.Error()
	default:
		return SystemErrorMessage
	}
}
