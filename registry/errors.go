package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is matched by every name validation failure.
	ErrInvalidName = errors.New("nameservice: invalid name")

	// ErrNameTooShort is returned for names under MinNameLength characters.
	ErrNameTooShort = errors.New("nameservice: name too short")

	// ErrNameTooLong is returned for names over MaxNameLength characters.
	ErrNameTooLong = errors.New("nameservice: name too long")

	// ErrInvalidCharacter is returned when a name contains a disallowed character.
	ErrInvalidCharacter = errors.New("nameservice: invalid character")

	// ErrNameTaken is returned when registering a name that already has an owner.
	ErrNameTaken = errors.New("nameservice: name is already taken")

	// ErrNameNotFound is returned when transferring a name that was never registered.
	ErrNameNotFound = errors.New("nameservice: name does not exist")

	// ErrNotOwner is returned when the sender of a transfer does not own the name.
	ErrNotOwner = errors.New("nameservice: sender must be the owner of the name")

	// ErrInvalidAddress is returned for an empty sender or recipient identity.
	ErrInvalidAddress = errors.New("nameservice: invalid address")

	// ErrAlreadyInitialized is returned when the configuration has already been written.
	ErrAlreadyInitialized = errors.New("nameservice: already initialized")

	// ErrStoreFailure wraps errors from the underlying store.
	ErrStoreFailure = errors.New("nameservice: store failure")
)

// NameError describes why a name failed validation.
// It matches ErrInvalidName and its Reason with errors.Is.
type NameError struct {
	// Name is the rejected name.
	Name string

	// Reason is ErrNameTooShort, ErrNameTooLong or ErrInvalidCharacter.
	Reason error

	// Char and Position identify the first disallowed character
	// (0-based character index). Only set for ErrInvalidCharacter.
	Char     rune
	Position int
}

func (e *NameError) Error() string {
	if errors.Is(e.Reason, ErrInvalidCharacter) {
		return fmt.Sprintf("%s: %q at position %d", e.Reason, e.Char, e.Position)
	}
	return e.Reason.Error()
}

func (e *NameError) Unwrap() []error {
	return []error{e.Reason, ErrInvalidName}
}

// storeErr wraps a backend error so callers can tell it apart from rule failures.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}
