package domain

import "errors"

// Domain errors
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidFile       = errors.New("invalid file")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNoDocument        = errors.New("no document uploaded")
	ErrNoSummary         = errors.New("no summary available")
	ErrEmptyOutput       = errors.New("empty output from model")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
