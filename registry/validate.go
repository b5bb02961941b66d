package registry

import "unicode/utf8"

const (
	// MinNameLength is the shortest allowed name, in characters.
	MinNameLength = 3

	// MaxNameLength is the longest allowed name, in characters.
	MaxNameLength = 64
)

// ValidateName returns a *NameError if name is not 3-64 characters of
// lowercase ASCII letters, digits, '.', '-' or '_'.
//
// Length checks come first, so an over-long name is reported as too long
// whatever it contains. Otherwise the leftmost disallowed character is
// reported with its character index.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return &NameError{Name: name, Reason: ErrNameTooShort}
	}
	if n > MaxNameLength {
		return &NameError{Name: name, Reason: ErrNameTooLong}
	}

	pos := 0
	for _, c := range name {
		if !validNameChar(c) {
			return &NameError{Name: name, Reason: ErrInvalidCharacter, Char: c, Position: pos}
		}
		pos++
	}
	return nil
}

func validNameChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || c == '.' || c == '-' || c == '_'
}
