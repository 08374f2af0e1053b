package repository

import "errors"

var (
	// ErrNotFound is returned when a record keyed by id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key would be violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned when a conditional update finds the record changed.
	ErrStale = errors.New("record changed concurrently")
)
