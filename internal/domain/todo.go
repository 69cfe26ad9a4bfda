package domain

import (
	"errors"
	"strings"
	"time"
)

// Todo is the domain entity. It does not depend on gin, SQL drivers or Redis.
type Todo struct {
	ID        int64
	Title     string
	Completed bool
	CreatedAt time.Time
}

// TodoPatch holds the mutable fields of a Todo. Nil fields are left unchanged.
type TodoPatch struct {
	Title     *string
	Completed *bool
}

// ErrNotFound is returned when no todo has the requested id.
var ErrNotFound = errors.New("not found")

// ValidationError reports input that must not reach the store.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError returns a *ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// AsValidation returns the *ValidationError in err's chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// NormalizeTitle trims surrounding whitespace. ok is false when nothing is left.
func NormalizeTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	return title, title != ""
}
