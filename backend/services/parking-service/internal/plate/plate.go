// Package plate validates and normalizes vehicle license plates.
package plate

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidPlate indicates the plate does not match the ABC1234 / ABC-1234
// format.
var ErrInvalidPlate = errors.New("plate: invalid format, expected ABC1234 or ABC-1234")

var platePattern = regexp.MustCompile(`^[A-Za-z]{3}-?\d{4}$`)

// Normalize trims and uppercases the plate after validating its format.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !platePattern.MatchString(trimmed) {
		return "", ErrInvalidPlate
	}
	return strings.ToUpper(trimmed), nil
}

// Valid reports whether the plate matches the accepted format.
func Valid(raw string) bool {
	return platePattern.MatchString(strings.TrimSpace(raw))
}
