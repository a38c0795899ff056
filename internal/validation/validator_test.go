package validation

import (
	"strings"
	"testing"
)

func TestValidator_IsNonEmptyString(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Empty string", "", false},
		{"Whitespace only", "   ", false},
		{"Tab and newline", "\t\n", false},
		{"Valid string", "hello", true},
		{"String with spaces", "hello world", true},
		{"String with leading/trailing spaces", "  hello  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsNonEmptyString(tt.input)
			if result != tt.expected {
				t.Errorf("IsNonEmptyString(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidator_IsWithinMaxLength(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name     string
		input    string
		max      int
		expected bool
	}{
		{"Empty", "", 5, true},
		{"Exactly max", "hello", 5, true},
		{"One over", "hello!", 5, false},
		{"Multibyte runes count once", strings.Repeat("é", 5), 5, true},
		{"Whitespace counts", " abc ", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.IsWithinMaxLength(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("IsWithinMaxLength(%q, %d) = %v, expected %v", tt.input, tt.max, result, tt.expected)
			}
		})
	}
}

func TestValidator_ParseTaskID(t *testing.T) {
	validator := NewValidator()
	const canonical = "3f1c1f43-7c1b-4bb2-9c0e-4f0c6f5d2a10"

	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"Canonical UUID", canonical, canonical, true},
		{"Upper-case UUID", "3F1C1F43-7C1B-4BB2-9C0E-4F0C6F5D2A10", canonical, true},
		{"Braced UUID", "{" + canonical + "}", canonical, true},
		{"URN", "urn:uuid:" + canonical, canonical, true},
		{"No hyphens", "3f1c1f437c1b4bb29c0e4f0c6f5d2a10", canonical, true},
		{"Empty", "", "", false},
		{"Integer id", "42", "", false},
		{"Garbage", "not-a-uuid", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := validator.ParseTaskID(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("ParseTaskID(%q) = (%q, %v), expected (%q, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}
