package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const MaxUserIDLength = 128

// ValidateUserID rejeita identificadores malformados antes de qualquer acesso ao storage.
func ValidateUserID(id string) error {
	if id == "" || len(id) > MaxUserIDLength {
		return fmt.Errorf("%w: length must be between 1 and %d", ErrInvalidUserID, MaxUserIDLength)
	}
	// Bytes inválidos viram U+FFFD, que IsPrint aceita
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidUserID, id)
	}
	if strings.IndexFunc(id, func(r rune) bool { return unicode.IsSpace(r) || !unicode.IsPrint(r) }) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace or non-printable characters", ErrInvalidUserID, id)
	}
	return nil
}
