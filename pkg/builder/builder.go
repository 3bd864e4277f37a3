/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package builder invokes the external build tool (xcodebuild) with
// version-specific flags for a given toolchain/SDK pair.
package builder

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/yarneo/kokoro-ios-runner/pkg/errors"
	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

// Action is the build tool action to perform.
type Action string

const (
	// ActionBuild compiles the target.
	ActionBuild Action = "build"
	// ActionTest compiles and runs the target's tests.
	ActionTest Action = "test"
)

// IsValid returns true for the supported actions.
func (a Action) IsValid() bool {
	return a == ActionBuild || a == ActionTest
}

// SupportedActions returns the list of supported build actions.
func SupportedActions() []string {
	return []string{string(ActionBuild), string(ActionTest)}
}

// Request describes one build invocation against a specific
// toolchain/SDK pair.
type Request struct {
	Action    Action
	Project   string
	Scheme    string
	Target    string
	Toolchain version.Version
	SDK       version.Version
	// ExtraArgs are passed through to the build tool verbatim, after the
	// composed flags.
	ExtraArgs []string
}

// Validate checks that the request can be turned into an invocation.
func (r Request) Validate() error {
	if !r.Action.IsValid() {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported action %q, supported values: %v", r.Action, SupportedActions()))
	}
	if r.Scheme == "" && r.Target == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "either scheme or target must be set")
	}
	if !r.SDK.IsValid() {
		return errors.New(errors.ErrCodeInvalidRequest, "sdk version is required")
	}
	return nil
}

// Invoker runs a build request and returns the process exit status.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (int, error)
}

// XcodeBuild is the xcodebuild-backed Invoker.
type XcodeBuild struct {
	// Binary overrides the build tool binary name, default "xcodebuild".
	Binary string
	// Stdout and Stderr receive the build tool's output streams.
	// Defaults to os.Stdout / os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// SimulatorDevice names the destination device, default "iPhone 6s".
	SimulatorDevice string
}

// NewXcodeBuild creates an Invoker running the xcodebuild binary on PATH.
func NewXcodeBuild() *XcodeBuild {
	return &XcodeBuild{}
}

const defaultSimulatorDevice = "iPhone 6s"

// Args composes the argument list for the request, without the binary
// name. Toolchains older than 9 predate the OS qualifier in simulator
// destinations, so the qualifier is omitted for them.
func (x *XcodeBuild) Args(req Request) []string {
	args := []string{string(req.Action)}
	if req.Project != "" {
		args = append(args, "-project", req.Project)
	}
	if req.Scheme != "" {
		args = append(args, "-scheme", req.Scheme)
	}
	if req.Target != "" {
		args = append(args, "-target", req.Target)
	}

	args = append(args, "-sdk", "iphonesimulator"+req.SDK.String())

	device := x.SimulatorDevice
	if device == "" {
		device = defaultSimulatorDevice
	}
	dest := fmt.Sprintf("platform=iOS Simulator,name=%s", device)
	if req.Toolchain.Major >= 9 {
		dest = fmt.Sprintf("%s,OS=%s", dest, req.SDK)
	}
	args = append(args, "-destination", dest)

	return append(args, req.ExtraArgs...)
}

// Invoke runs xcodebuild for the request, blocking until it exits.
// Returns the exit status; a non-zero status is also reported as a
// BUILD_FAILED error. Output streams to the configured writers.
func (x *XcodeBuild) Invoke(ctx context.Context, req Request) (int, error) {
	if err := req.Validate(); err != nil {
		return -1, err
	}

	binary := x.Binary
	if binary == "" {
		binary = "xcodebuild"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return -1, fmt.Errorf("%s not found in PATH: %w", binary, err)
	}

	args := x.Args(req)
	slog.Info("invoking build tool",
		"action", string(req.Action),
		"toolchain", req.Toolchain.String(),
		"sdk", req.SDK.String())
	slog.Debug("build tool command", "path", path, "args", args)

	// #nosec G204 -- path is from exec.LookPath, args are composed above
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = x.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = x.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return exitErr.ExitCode(), errors.WrapWithContext(errors.ErrCodeBuildFailed,
				"build tool exited non-zero", err,
				map[string]any{
					"toolchain": req.Toolchain.String(),
					"sdk":       req.SDK.String(),
					"exitCode":  exitErr.ExitCode(),
				})
		}
		return -1, fmt.Errorf("failed to run build tool: %w", err)
	}

	return 0, nil
}
