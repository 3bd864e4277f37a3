/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expected      Version
		expectedError error
	}{
		{
			name:  "major only",
			input: "9",
			expected: Version{
				Major:     9,
				Precision: 1,
			},
		},
		{
			name:  "major.minor",
			input: "9.1",
			expected: Version{
				Major:     9,
				Minor:     1,
				Precision: 2,
			},
		},
		{
			name:  "full version",
			input: "8.3.3",
			expected: Version{
				Major:     8,
				Minor:     3,
				Patch:     3,
				Precision: 3,
			},
		},
		{
			name:  "trailing dot stripped",
			input: "9.1.",
			expected: Version{
				Major:     9,
				Minor:     1,
				Precision: 2,
			},
		},
		{
			name:  "surrounding whitespace",
			input: "  11.2 ",
			expected: Version{
				Major:     11,
				Minor:     2,
				Precision: 2,
			},
		},
		{
			name:  "zeros",
			input: "0.0.0",
			expected: Version{
				Precision: 3,
			},
		},
		{
			name:          "empty",
			input:         "",
			expectedError: ErrEmptyVersion,
		},
		{
			name:          "too many components",
			input:         "9.1.2.3",
			expectedError: ErrTooManyComponents,
		},
		{
			name:          "non-numeric component",
			input:         "9.x",
			expectedError: ErrNonNumeric,
		},
		{
			name:          "negative component",
			input:         "9.-1",
			expectedError: ErrNegativeComponent,
		},
		{
			name:          "double dot",
			input:         "9..1",
			expectedError: ErrNonNumeric,
		},
		{
			name:          "leading dot",
			input:         ".9",
			expectedError: ErrNonNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.expectedError != nil {
				if err == nil {
					t.Fatalf("Parse(%q) = %+v, want error %v", tt.input, got, tt.expectedError)
				}
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.expectedError)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"9", "9"},
		{"9.1", "9.1"},
		{"8.3.3", "8.3.3"},
		{"9.1.", "9.1"},
	}

	for _, tt := range tests {
		v := MustParse(tt.input)
		if got := v.String(); got != tt.expected {
			t.Errorf("MustParse(%q).String() = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"9", "9.0", 0},
		{"9", "9.0.0", 0},
		{"9.0", "9.0.0", 0},
		{"8.3.3", "9.0", -1},
		{"9.0", "9.1", -1},
		{"9.1", "9.2", -1},
		{"9.2", "9.1", 1},
		{"11.2", "9.2", 1},
		{"9.2", "9.20", -1},
		{"9.9", "9.10", -1},
	}

	for _, tt := range tests {
		a, b := MustParse(tt.a), MustParse(tt.b)
		if got := a.Compare(b); got != tt.expected {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
		}
		// Compare must be antisymmetric.
		if got := b.Compare(a); got != -tt.expected {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.expected)
		}
	}
}

func TestEqualsOrNewer(t *testing.T) {
	min := MustParse("9.0")

	tests := []struct {
		input    string
		expected bool
	}{
		{"8.3.3", false},
		{"9", true},
		{"9.0", true},
		{"9.0.0", true},
		{"9.1", true},
		{"11.2", true},
	}

	for _, tt := range tests {
		v := MustParse(tt.input)
		if got := v.EqualsOrNewer(min); got != tt.expected {
			t.Errorf("%q.EqualsOrNewer(9.0) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestIsValid(t *testing.T) {
	if !MustParse("9.1").IsValid() {
		t.Error("parsed version should be valid")
	}
	if (Version{Major: 9}).IsValid() {
		t.Error("zero precision should be invalid")
	}
	if (Version{Major: -1, Precision: 1}).IsValid() {
		t.Error("negative major should be invalid")
	}
}
