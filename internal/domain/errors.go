package domain

import "errors"

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a run state transition is not allowed.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrConcurrentModify is returned when optimistic locking fails.
	ErrConcurrentModify = errors.New("concurrent modification")

	// ErrAlreadyExists is returned when trying to create a duplicate record.
	ErrAlreadyExists = errors.New("already exists")
)
