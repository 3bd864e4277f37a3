/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package toolchain selects among installed Xcode toolchain versions by
// shelling out to the xcversion binary.
package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/yarneo/kokoro-ios-runner/pkg/errors"
	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

// Selector switches the active development toolchain and reports which
// versions are installed on the machine.
type Selector interface {
	// Select activates the given toolchain version for subsequent builds.
	Select(ctx context.Context, v version.Version) error
	// Installed lists the toolchain versions available on this machine.
	Installed(ctx context.Context) ([]version.Version, error)
}

// XcversionSelector implements Selector on top of the xcversion CLI.
type XcversionSelector struct {
	// Binary overrides the selector binary name, default "xcversion".
	Binary string
}

// NewXcversionSelector creates a selector using the xcversion binary
// found on PATH.
func NewXcversionSelector() *XcversionSelector {
	return &XcversionSelector{}
}

func (s *XcversionSelector) binary() string {
	if s.Binary != "" {
		return s.Binary
	}
	return "xcversion"
}

// Select activates the given toolchain version via `xcversion select`.
// A missing binary or unknown version surfaces as TOOLCHAIN_NOT_FOUND.
func (s *XcversionSelector) Select(ctx context.Context, v version.Version) error {
	path, err := exec.LookPath(s.binary())
	if err != nil {
		return errors.Wrap(errors.ErrCodeToolchainNotFound,
			fmt.Sprintf("%s not found in PATH", s.binary()), err)
	}

	// #nosec G204 -- path is from exec.LookPath, version is validated
	cmd := exec.CommandContext(ctx, path, "select", v.String())
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeToolchainNotFound,
			fmt.Sprintf("failed to select toolchain %s", v), err,
			map[string]any{"output": strings.TrimSpace(string(output))})
	}

	slog.Debug("selected toolchain", "version", v.String())
	return nil
}

// Installed lists installed toolchain versions via `xcversion installed`.
func (s *XcversionSelector) Installed(ctx context.Context) ([]version.Version, error) {
	path, err := exec.LookPath(s.binary())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeToolchainNotFound,
			fmt.Sprintf("%s not found in PATH", s.binary()), err)
	}

	cmd := exec.CommandContext(ctx, path, "installed")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list installed toolchains: %w", err)
	}

	versions := parseInstalled(string(output))
	slog.Debug("listed installed toolchains", "count", len(versions))
	return versions, nil
}

// parseInstalled extracts versions from `xcversion installed` output.
// Expected line format:
//
//	9.1 (/Applications/Xcode-9.1.app)
//	9.2 (/Applications/Xcode-9.2.app)
//
// Lines that do not start with a parseable version are skipped.
func parseInstalled(output string) []version.Version {
	var versions []version.Version
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		v, err := version.Parse(fields[0])
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	return versions
}
