package repository

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
	// ErrConflict is returned when a guarded update or delete matched no row.
	ErrConflict = errors.New("conflict")
)
