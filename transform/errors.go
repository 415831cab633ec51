package transform

import "errors"

// Transaction errors
var (
	// ErrNestedTransaction is returned when a transaction is started while
	// another one is still open.
	ErrNestedTransaction = errors.New("a transaction is already open")

	// ErrIllegalState is returned when an operation is called in a state
	// that doesn't allow it: saving a closed transaction, committing without
	// an open transaction, replaying a change during a transaction...
	ErrIllegalState = errors.New("illegal state")
)

// Operation errors
var (
	// ErrUnknownOperation is returned when decoding an operation of an
	// unknown type.
	ErrUnknownOperation = errors.New("unknown operation")
)
