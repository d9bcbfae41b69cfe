package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while reconciling an entity.
//
// Runtime errors include:
//   - Invalid input: empty slug, unknown entity kind
//   - Store failure: a collaborator could not read or write
//   - Redirect loop: a chain of permanent redirects revisits a path
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Entity identifies the affected entity, when known.
	Entity EntityKey

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvalidInput indicates a row cannot be reconciled as given.
	ErrCodeInvalidInput RuntimeErrorCode = "INVALID_INPUT"

	// ErrCodeUnknownKind indicates no convention is registered for the entity type.
	ErrCodeUnknownKind RuntimeErrorCode = "UNKNOWN_KIND"

	// ErrCodeStoreFailed indicates a repository or catalog call failed.
	ErrCodeStoreFailed RuntimeErrorCode = "STORE_FAILED"

	// ErrCodeRedirectLoop indicates a redirect chain revisits a request path.
	ErrCodeRedirectLoop RuntimeErrorCode = "REDIRECT_LOOP"

	// ErrCodeNotFound indicates a request path has no rewrite.
	ErrCodeNotFound RuntimeErrorCode = "NOT_FOUND"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if !e.Entity.IsZero() {
		msg = fmt.Sprintf("%s (%s)", msg, e.Entity)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsInvalidInput returns true if the error is an invalid input error.
// Uses errors.As to handle wrapped errors.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrCodeInvalidInput) || hasCode(err, ErrCodeUnknownKind)
}

// IsStoreError returns true if a collaborator failed.
func IsStoreError(err error) bool {
	return hasCode(err, ErrCodeStoreFailed)
}

// IsRedirectLoop returns true if the error is a redirect loop.
func IsRedirectLoop(err error) bool {
	return hasCode(err, ErrCodeRedirectLoop)
}

// IsNotFound returns true if a request path lookup found nothing.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// NewInvalidInputError creates a RuntimeError for a row that cannot be reconciled.
func NewInvalidInputError(key EntityKey, message string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidInput,
		Message: message,
		Entity:  key,
	}
}

// NewStoreError wraps a collaborator failure.
func NewStoreError(key EntityKey, op string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeStoreFailed,
		Message: op + " failed",
		Entity:  key,
		Details: map[string]string{"op": op},
		Err:     err,
	}
}

// NewRedirectLoopError creates a RuntimeError for a cyclic redirect chain.
func NewRedirectLoopError(storeID int64, start, repeated string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeRedirectLoop,
		Message: fmt.Sprintf("redirect chain from %q revisits %q", start, repeated),
		Details: map[string]string{
			"store_id": fmt.Sprintf("%d", storeID),
			"start":    start,
			"repeated": repeated,
		},
	}
}
