/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
	ErrNegativeComponent = errors.New("version component cannot be negative")
)

// Version represents a toolchain or SDK version with Major, Minor, and Patch
// components. It supports flexible precision (1, 2, or 3 components): "9"
// parses with precision 1, "9.1" with precision 2, "8.3.3" with precision 3.
// Versions are immutable after construction.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch int `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Precision indicates how many components were present in the input (1-3).
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`
}

// New creates a Version with the specified major, minor, and patch values
// and precision 3. Use Parse for version strings.
func New(major, minor, patch int) Version {
	return Version{
		Major:     major,
		Minor:     minor,
		Patch:     patch,
		Precision: 3,
	}
}

// String returns the dotted form of the version respecting its precision:
// "9" for precision 1, "9.1" for precision 2, "8.3.3" for precision 3.
func (v Version) String() string {
	switch v.Precision {
	case 1:
		return strconv.Itoa(v.Major)
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
}

// Parse parses a dotted version string into a Version.
// Accepted forms: "9", "9.1", "8.3.3", each component a non-negative
// integer. A single trailing dot ("9.1.") is stripped before parsing,
// matching the input the toolchain selector produces for some releases.
// Returns an error for empty input, more than 3 components, or
// non-numeric / negative components.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, ErrEmptyVersion
	}

	// xcversion prints some releases with a trailing dot ("9.1.").
	s = strings.TrimSuffix(s, ".")

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}

	var v Version
	for i, part := range parts {
		if part == "" {
			return Version{}, fmt.Errorf("%w: empty component", ErrNonNumeric)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		if num < 0 {
			return Version{}, fmt.Errorf("%w: %d", ErrNegativeComponent, num)
		}

		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}

	v.Precision = len(parts)
	return v, nil
}

// MustParse parses a version string and panics if parsing fails.
// Only use this for hardcoded strings (matrix defaults, tests).
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("version.MustParse(%q): %v", s, err))
	}
	return v
}

// Normalize converts a dotted version string into the fixed 3-field
// comparison token used by the legacy runner: the input is right-padded
// with ".0" until it has 3 components, then the separators are removed.
//
//	Normalize("9")     == "900"
//	Normalize("9.1")   == "910"
//	Normalize("8.3.3") == "833"
//	Normalize("11.2")  == "1120"
//
// The token is NOT collision-free: components are concatenated without
// per-field zero padding, so "9.20" and "92.0" both normalize to "9200".
// Ordering decisions in this module therefore go through Compare, which
// compares fields numerically; the token exists for compatibility with
// tooling that consumed the legacy runner's output.
func Normalize(s string) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d%d%d", v.Major, v.Minor, v.Patch), nil
}

// Compare returns -1 if v is older than other, 0 if equal, 1 if newer.
// Comparison is field-wise numeric over all three components; absent
// components count as zero, so "9", "9.0" and "9.0.0" compare equal.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// EqualsOrNewer returns true if v is equal to or newer than other.
func (v Version) EqualsOrNewer(other Version) bool {
	return v.Compare(other) >= 0
}

// IsNewer returns true if v is strictly newer than other.
func (v Version) IsNewer(other Version) bool {
	return v.Compare(other) > 0
}

// Equals returns true if all three components match.
func (v Version) Equals(other Version) bool {
	return v.Compare(other) == 0
}

// IsValid returns true if all components are non-negative and precision
// is in the 1-3 range.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}

// MarshalYAML emits the dotted string form so matrix files stay readable.
func (v Version) MarshalYAML() (any, error) {
	return v.String(), nil
}

// UnmarshalYAML accepts the dotted string form in matrix files.
func (v *Version) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
