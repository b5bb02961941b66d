package store

import "errors"

var (
	// ErrNotFound is returned when no record exists for a name.
	ErrNotFound = errors.New("nameservice: record not found")

	// ErrConfigNotFound is returned when the configuration has not been saved yet.
	ErrConfigNotFound = errors.New("nameservice: config not initialized")

	// ErrConfigExists is returned by CreateConfig when a configuration is already stored.
	ErrConfigExists = errors.New("nameservice: config already initialized")

	// ErrConcurrentModification is returned when a read-modify-write keeps losing
	// the race against other writers (version mismatch on every attempt).
	ErrConcurrentModification = errors.New("nameservice: record was modified concurrently")
)
