package domain

import "errors"

var (
	// ErrNotFound is returned when a requested name or id doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrTranslation is returned when an id cannot be translated into another id space.
	// Callers doing best-effort work are expected to count it and continue.
	ErrTranslation = errors.New("id translation failed")

	// ErrDimensionMismatch is returned when a loaded matrix disagrees with its declared shape
	// or with a companion matrix.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrExhausted is returned by a prioritizer when no tests remain.
	ErrExhausted = errors.New("no test cases remaining")

	// ErrUnknownAlgorithm is returned when a registry has no algorithm with the requested name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrInvalidConfig is returned when configuration or algorithm parameters are invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidClusterSize is returned when a requested cluster size cannot be built.
	ErrInvalidClusterSize = errors.New("invalid cluster size")

	// ErrInvalidState is returned when an operation is not allowed in the current state.
	ErrInvalidState = errors.New("invalid state")
)
