package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// configIDRegex matches ids produced by the config store:
// "kitchen-<unix millis>-<9 base36 chars>".
var configIDRegex = regexp.MustCompile(`^kitchen-[0-9]{1,16}-[0-9a-z]{9}$`)

// ValidateConfigID validates a stored configuration id.
// Ids end up in file names and database keys, so anything other than the
// generated shape is rejected.
func ValidateConfigID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "config id cannot be empty")
	}
	if !configIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid config id: %q", id)
	}
	return nil
}

// ValidateName validates a user-supplied identifier such as a module or
// line id.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "name cannot contain path separators: %q", name)
	}

	return nil
}
