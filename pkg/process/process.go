/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package process manages OS processes the runner has to clear out of
// the way before a build, most notably lingering Simulator instances.
package process

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// ErrNotRunning indicates no process matched the given name.
var ErrNotRunning = stderrors.New("process not running")

// Manager enumerates and terminates processes by name.
type Manager interface {
	// FindAll returns the distinct process names matching pattern.
	FindAll(ctx context.Context, pattern string) ([]string, error)
	// Terminate force-kills all processes with the given name.
	// Returns ErrNotRunning if nothing matched.
	Terminate(ctx context.Context, name string) error
}

// DarwinManager implements Manager with pgrep and killall, the tools
// available on the CI fleet's macOS images.
type DarwinManager struct{}

// NewDarwinManager creates a pgrep/killall-backed Manager.
func NewDarwinManager() *DarwinManager {
	return &DarwinManager{}
}

// FindAll lists distinct process names matching pattern via `pgrep -l`.
// An empty result is not an error.
func (m *DarwinManager) FindAll(ctx context.Context, pattern string) ([]string, error) {
	path, err := exec.LookPath("pgrep")
	if err != nil {
		return nil, fmt.Errorf("pgrep not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, "-l", pattern)
	output, err := cmd.Output()
	if err != nil {
		// pgrep exits 1 when nothing matches.
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	return parseProcessList(string(output)), nil
}

// Terminate force-kills all processes named name via `killall -9`.
func (m *DarwinManager) Terminate(ctx context.Context, name string) error {
	path, err := exec.LookPath("killall")
	if err != nil {
		return fmt.Errorf("killall not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, "-9", name)
	if err := cmd.Run(); err != nil {
		// killall exits 1 when no process matched.
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return ErrNotRunning
		}
		return fmt.Errorf("failed to terminate %q: %w", name, err)
	}
	return nil
}

// parseProcessList extracts distinct process names from `pgrep -l`
// output ("PID NAME" per line), sorted for stable results.
func parseProcessList(output string) []string {
	seen := make(map[string]struct{})
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		seen[fields[1]] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
