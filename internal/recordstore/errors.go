package recordstore

import (
	"errors"
	"fmt"
	"net/http"

	"bookshelf/internal/platform/validation"
)

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrValidation      = errors.New("validation failed")
	ErrClosed          = errors.New("record store client closed")
)

// ValidationError is returned before any network call when input breaks a
// field rule.
type ValidationError struct {
	Fields []validation.FieldError
}

func newValidationError(err error) error {
	fields := validation.Fields(err)
	if fields == nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + validation.Errors(e.Fields).Error()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RemoteError is a failure reported by the remote store, passed through
// unchanged. Status is 0 when no response arrived.
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return "remote store: " + e.Message
	}
	return fmt.Sprintf("remote store: %d %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is lets a 401 from the remote match ErrUnauthenticated.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

func asRemote(err error) error {
	var re *RemoteError
	if errors.As(err, &re) || errors.Is(err, ErrUnauthenticated) {
		return err
	}
	return &RemoteError{Message: err.Error(), Err: err}
}
