package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Validator provides common validation utilities
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsWithinMaxLength checks that s has at most max characters. Length is
// counted in runes and surrounding whitespace counts.
func (v *Validator) IsWithinMaxLength(s string, max int) bool {
	return utf8.RuneCountInString(s) <= max
}

// ParseTaskID returns id in the canonical lower-case hyphenated UUID form
// stored for tasks. Upper-case, braced, urn:uuid: and hyphen-less inputs are
// accepted. ok is false when id is not a UUID.
func (v *Validator) ParseTaskID(id string) (canonical string, ok bool) {
	if id == "" {
		return "", false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
