package checks

import "errors"

// Registry errors.
var (
	// ErrCheckNotFound is returned when a check is not registered.
	ErrCheckNotFound = errors.New("check not found")

	// ErrCheckNameEmpty is returned when a check has no name.
	ErrCheckNameEmpty = errors.New("check name cannot be empty")

	// ErrCheckExecuteNil is returned when a check has no execute function.
	ErrCheckExecuteNil = errors.New("check execute function cannot be nil")

	// ErrCheckAlreadyRegistered is returned when registering a duplicate.
	ErrCheckAlreadyRegistered = errors.New("check already registered")
)
