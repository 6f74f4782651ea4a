// internal/lobby/errors.go
package lobby

import (
	"errors"
	"fmt"
)

// Store-level sentinel outcomes. These never reach HTTP handlers directly; the
// service translates them into a typed *Error first.
var (
	// ErrNotFound means no lobby exists under the given code.
	ErrNotFound = errors.New("lobby not found")

	// ErrCodeTaken means an insert collided with an existing live code.
	ErrCodeTaken = errors.New("lobby code already taken")

	// ErrConflict means a compare-and-set found a status other than expected.
	ErrConflict = errors.New("lobby state conflict")

	// ErrUnknownUser means an identity lookup found no matching account.
	ErrUnknownUser = errors.New("unknown user")
)

// Kind is the machine-readable classification of a service failure.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindFull         Kind = "full"
	KindStore        Kind = "store_error"
)

// Error is the typed failure returned by every Service operation. Domain kinds
// (not_found, forbidden, invalid_state, full) are final; only store_error is
// eligible for caller-side retry.
type Error struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether the caller may usefully retry the operation.
func (e *Error) Retryable() bool { return e.Kind == KindStore }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// storeError wraps an infrastructure failure. The underlying error is preserved
// for logs but the client-facing message stays generic.
func storeError(err error) *Error {
	return &Error{Kind: KindStore, Message: "storage failure", cause: err}
}
