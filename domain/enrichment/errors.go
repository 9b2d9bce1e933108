package enrichment

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable is returned when every generation attempt failed.
// Its message is safe to show to end users.
var ErrServiceUnavailable = errors.New("AI service is currently unavailable. Please try again later.")

// UnavailableError records why enrichment gave up.
type UnavailableError struct {
	attempts int
	last     error
}

// NewUnavailableError creates an UnavailableError after attempts failed calls.
func NewUnavailableError(attempts int, last error) *UnavailableError {
	return &UnavailableError{attempts: attempts, last: last}
}

// Error returns the user-facing message.
func (e *UnavailableError) Error() string {
	return ErrServiceUnavailable.Error()
}

// Attempts returns how many calls were made.
func (e *UnavailableError) Attempts() int { return e.attempts }

// Detail describes the failure for operators.
func (e *UnavailableError) Detail() string {
	return fmt.Sprintf("%d attempts failed: %v", e.attempts, e.last)
}

// Is reports whether target is ErrServiceUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

// Unwrap returns the error from the final attempt.
func (e *UnavailableError) Unwrap() error { return e.last }
