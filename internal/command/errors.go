package command

import (
	"errors"
	"fmt"
)

// UserInputError carries a message shown verbatim to the user. It is not
// logged beyond debug level.
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string { return e.Message }

// Userf builds a UserInputError.
func Userf(format string, args ...any) error {
	return &UserInputError{Message: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps a failure of an external collaborator (resolver,
// voice connect, persistence). Logged at error level; the user sees a
// generic message with no internal detail.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *CollaboratorError) Unwrap() error { return e.Err }

var (
	// ErrPermissionDenied is returned by the permission gate. Reported
	// directly, never logged as an error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNothingPlaying means no session exists for the guild.
	ErrNothingPlaying = errors.New("nothing playing")
)
