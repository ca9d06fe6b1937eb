package database

import "fmt"

// Database operations reported in Error.Op
const (
	OpOpen    = "open"
	OpConnect = "connect"
	OpPing    = "ping"
	OpBegin   = "begin"
	OpInsert  = "insert"
	OpCommit  = "commit"
)

// Error represents a failed database operation
type Error struct {
	Op  string // Operation that failed
	Err error  // Driver error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new database error
func NewError(op string, err error) error {
	return &Error{
		Op:  op,
		Err: err,
	}
}
