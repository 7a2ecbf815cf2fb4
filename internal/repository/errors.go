package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrStaleState is returned by compare-and-set updates whose expected status no longer holds.
	ErrStaleState = errors.New("stale state")
	// ErrRestricted is returned when a row is still referenced and cannot be removed.
	ErrRestricted = errors.New("still referenced")
)
