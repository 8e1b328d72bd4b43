package shared

import "errors"

var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates an operation that clashes with existing state,
	// such as duplicate numbers or deleting a parent with dependents.
	ErrConflict = errors.New("conflict")
)
