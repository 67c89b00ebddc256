package store

import "errors"

var (
	// ErrValidation marks input rejected before any mutation. The concrete error is a
	// *ValidationError carrying the user-facing message.
	ErrValidation         = errors.New("validation failed")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoAccount          = errors.New("no user found, please register first")
)

// ValidationError is a user-facing rejection of form input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }
