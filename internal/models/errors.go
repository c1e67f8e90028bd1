package models

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when a conditional update names a
	// version other than the stored one.
	ErrVersionConflict = errors.New("version conflict")
)
