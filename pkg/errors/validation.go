package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds contact identifiers accepted from callers.
const maxIDLength = 256

// ValidateContactID validates a contact identifier received from a caller
// (URL path, CLI argument). Identifiers inside extracted analyses are not
// validated here: the pipeline drops unusable ids instead of failing.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateContactID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidID, "contact id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "contact id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "contact id contains invalid control characters")
		}
	}
	return nil
}

// ValidateDepartment validates an optional department filter.
// The empty string means "no filter" and is valid.
func ValidateDepartment(dept string) error {
	if dept == "" {
		return nil
	}
	if len(dept) > maxIDLength {
		return New(ErrCodeInvalidInput, "department too long (max %d characters)", maxIDLength)
	}
	for _, r := range dept {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "department contains invalid control characters")
		}
	}
	return nil
}

// ValidateZoom validates a view zoom factor used to scale drag deltas.
func ValidateZoom(zoom float64) error {
	if zoom < 0 {
		return New(ErrCodeInvalidInput, "zoom must not be negative")
	}
	return nil
}
