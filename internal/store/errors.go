package store

import (
	"errors"
	"fmt"
)

// Kind separates server-side persistence failures from client-side connectivity failures.
type Kind string

const (
	KindPersistence  Kind = "persistence"
	KindConnectivity Kind = "connectivity"
)

// Operation names used in errors, logs and metrics.
const (
	OpList      = "list"
	OpCreate    = "create"
	OpSubscribe = "subscribe"
)

var (
	// ErrLoadFailed matches any failed list.
	ErrLoadFailed = errors.New("load failed")
	// ErrSubmitFailed matches any failed create.
	ErrSubmitFailed = errors.New("submit failed")
	// ErrSubscribeUnsupported is returned by gateways without push support.
	ErrSubscribeUnsupported = errors.New("subscribe not supported")
)

// Error wraps a backend failure with the operation that triggered it.
type Error struct {
	Op      string
	Backend string
	Kind    Kind
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s failure", e.Backend, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match the generic "load failed" / "submit failed" signals.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLoadFailed:
		return e.Op == OpList
	case ErrSubmitFailed:
		return e.Op == OpCreate
	}
	return false
}

// LoadError builds a list failure.
func LoadError(backend string, kind Kind, err error) *Error {
	return &Error{Op: OpList, Backend: backend, Kind: kind, Err: err}
}

// SubmitError builds a create failure.
func SubmitError(backend string, kind Kind, err error) *Error {
	return &Error{Op: OpCreate, Backend: backend, Kind: kind, Err: err}
}

// AsError unwraps err into a store Error.
func AsError(err error) (*Error, bool) {
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}
