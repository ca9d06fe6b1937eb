package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request
type ErrorKind int

const (
	// ConnectionUnavailable means no usable database connection was obtained
	ConnectionUnavailable ErrorKind = iota + 1
	// OperationFailure means the insert or commit failed on a live connection
	OperationFailure
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case ConnectionUnavailable:
		return "connection_unavailable"
	case OperationFailure:
		return "operation_failure"
	default:
		return "unknown"
	}
}

// Error is the only error type Reverse returns
type Error struct {
	Kind   ErrorKind
	Detail error // may be nil for ConnectionUnavailable
}

func (e *Error) Error() string {
	if e.Detail == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Detail)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Detail
}

// IsKind reports whether err is a service error of kind k
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
