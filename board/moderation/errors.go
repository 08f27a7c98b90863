package moderation

import (
	"errors"
	"fmt"
)

// ErrNotAuthorized when the caller is not in the moderator allow-list. The
// message never says which check failed.
var ErrNotAuthorized = errors.New("User is not authorized to perform this action")

// ErrFlagLimit when a user already used today's flag quota.
var ErrFlagLimit = errors.New("Daily flag limit reached, try again tomorrow")

// ValidationError for missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func missing(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError for unknown flags, posts and users. Resolved tells apart a
// reference that exists but was already handled.
type NotFoundError struct {
	Kind     string
	ID       string
	Resolved bool
}

func (e *NotFoundError) Error() string {
	if e.Resolved {
		return fmt.Sprintf("%s %s has already been resolved", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s %s has not been found", e.Kind, e.ID)
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// AccountError is returned to restricted accounts trying to contribute.
type AccountError struct {
	Username string
	Shadow   bool
}

func (e *AccountError) Error() string {
	if e.Shadow {
		return "Your account cannot flag content at this moment"
	}
	return "Your account has been banned and can no longer publish content"
}
