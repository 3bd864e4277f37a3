/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package matrix

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

// Error types for matrix validation failures
var (
	ErrEmptyMatrix        = errors.New("matrix has no entries")
	ErrDuplicateToolchain = errors.New("matrix contains duplicate toolchain version")
	ErrUnorderedMatrix    = errors.New("matrix entries must be ascending by toolchain version")
)

// Entry pairs a toolchain version with the SDK version used for build
// invocations against that toolchain.
type Entry struct {
	Toolchain version.Version `json:"toolchain" yaml:"toolchain"`
	SDK       version.Version `json:"sdk" yaml:"sdk"`
}

// Matrix is an ordered sequence of toolchain/SDK pairs, oldest release
// first. It replaces the legacy runner's parallel version lists.
type Matrix struct {
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Default returns the matrix the runner ships with: the Xcode releases
// the CI fleet has installed, each paired with its simulator SDK.
func Default() Matrix {
	return Matrix{
		Entries: []Entry{
			{Toolchain: version.MustParse("8.3.3"), SDK: version.MustParse("10.3.1")},
			{Toolchain: version.MustParse("9.0"), SDK: version.MustParse("11.0.1")},
			{Toolchain: version.MustParse("9.1"), SDK: version.MustParse("11.1")},
			{Toolchain: version.MustParse("9.2"), SDK: version.MustParse("11.2")},
		},
	}
}

// Load reads a matrix from a YAML file and validates it.
func Load(path string) (Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Matrix{}, fmt.Errorf("failed to read matrix file %q: %w", path, err)
	}

	var m Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Matrix{}, fmt.Errorf("failed to parse matrix file %q: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return Matrix{}, fmt.Errorf("invalid matrix in %q: %w", path, err)
	}
	return m, nil
}

// Validate checks the matrix invariants: non-empty, no duplicate
// toolchain versions, entries strictly ascending by toolchain version.
func (m Matrix) Validate() error {
	if len(m.Entries) == 0 {
		return ErrEmptyMatrix
	}
	for i, e := range m.Entries {
		if !e.Toolchain.IsValid() {
			return fmt.Errorf("entry %d: invalid toolchain version", i)
		}
		if !e.SDK.IsValid() {
			return fmt.Errorf("entry %d: invalid sdk version", i)
		}
		if i == 0 {
			continue
		}
		prev := m.Entries[i-1].Toolchain
		switch e.Toolchain.Compare(prev) {
		case 0:
			return fmt.Errorf("%w: %s", ErrDuplicateToolchain, e.Toolchain)
		case -1:
			return fmt.Errorf("%w: %s before %s", ErrUnorderedMatrix, prev, e.Toolchain)
		}
	}
	return nil
}

// Filter returns the entries whose toolchain version is equal to or
// newer than min, preserving order. A zero min returns all entries.
func (m Matrix) Filter(min version.Version) Matrix {
	if min.Precision == 0 {
		return m
	}
	out := Matrix{}
	for _, e := range m.Entries {
		if e.Toolchain.EqualsOrNewer(min) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Len returns the number of entries.
func (m Matrix) Len() int {
	return len(m.Entries)
}
