package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict marks writes that collide with existing state
	// (overlapping grids, duplicate emails).
	ErrConflict = errors.New("conflict")
	// ErrTooLarge marks uploads over the accepted size.
	ErrTooLarge = errors.New("too large")
)
