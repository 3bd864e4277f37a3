/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package runner orchestrates a CI run: for each matrix entry at or
// above the configured minimum toolchain version it activates the
// toolchain, clears lingering Simulator processes, and invokes the
// build tool, failing fast on the first non-zero exit.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yarneo/kokoro-ios-runner/pkg/builder"
	"github.com/yarneo/kokoro-ios-runner/pkg/errors"
	"github.com/yarneo/kokoro-ios-runner/pkg/matrix"
	"github.com/yarneo/kokoro-ios-runner/pkg/process"
	"github.com/yarneo/kokoro-ios-runner/pkg/toolchain"
	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

// DefaultKillPattern is the process name cleared before each build.
const DefaultKillPattern = "Simulator"

// Config is the explicit run configuration, replacing the legacy
// runner's positional arguments and environment branching.
type Config struct {
	// MinToolchain filters the matrix to entries at or above this
	// toolchain version. Zero value disables the filter.
	MinToolchain version.Version `json:"minToolchain,omitempty" yaml:"minToolchain,omitempty"`
	// Action is the build tool action, build or test.
	Action builder.Action `json:"action" yaml:"action"`
	// Project, Scheme and Target identify what to build.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`
	Scheme  string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	Target  string `json:"target,omitempty" yaml:"target,omitempty"`
	// ExtraArgs pass through to the build tool verbatim.
	ExtraArgs []string `json:"extraArgs,omitempty" yaml:"extraArgs,omitempty"`
	// KillPattern is the process name cleared before each build.
	// Defaults to DefaultKillPattern.
	KillPattern string `json:"killPattern,omitempty" yaml:"killPattern,omitempty"`
	// KillPolicy bounds the pre-build process teardown.
	KillPolicy process.Policy `json:"-" yaml:"-"`
	// DryRun plans the run without selecting toolchains or invoking
	// the build tool.
	DryRun bool `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Action.IsValid() {
		return errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported action %q, supported values: %v", c.Action, builder.SupportedActions()))
	}
	if c.Scheme == "" && c.Target == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "either scheme or target must be set")
	}
	return nil
}

// EntryStatus describes the outcome of one matrix entry.
type EntryStatus string

const (
	// StatusPassed means the build invocation exited zero.
	StatusPassed EntryStatus = "passed"
	// StatusFailed means toolchain selection, teardown, or the build
	// invocation failed.
	StatusFailed EntryStatus = "failed"
	// StatusPlanned means the entry was only planned (dry run).
	StatusPlanned EntryStatus = "planned"
	// StatusSkipped means the entry was not reached because an earlier
	// entry failed.
	StatusSkipped EntryStatus = "skipped"
)

// EntryResult records the outcome of one toolchain/SDK pair.
type EntryResult struct {
	Toolchain string        `json:"toolchain" yaml:"toolchain"`
	SDK       string        `json:"sdk" yaml:"sdk"`
	Status    EntryStatus   `json:"status" yaml:"status"`
	ExitCode  int           `json:"exitCode" yaml:"exitCode"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report summarizes a whole run.
type Report struct {
	RunID     string        `json:"runId" yaml:"runId"`
	Action    string        `json:"action" yaml:"action"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Succeeded bool          `json:"succeeded" yaml:"succeeded"`
	Results   []EntryResult `json:"results" yaml:"results"`
}

// Runner wires the collaborators for a run.
type Runner struct {
	Matrix   matrix.Matrix
	Selector toolchain.Selector
	Invoker  builder.Invoker
	Procs    process.Manager
}

// New creates a Runner over the given matrix with the production
// collaborators.
func New(m matrix.Matrix) *Runner {
	return &Runner{
		Matrix:   m,
		Selector: toolchain.NewXcversionSelector(),
		Invoker:  builder.NewXcodeBuild(),
		Procs:    process.NewDarwinManager(),
	}
}

// Run walks the filtered matrix sequentially and blocks on each build
// invocation. The first failing entry fails the whole run; remaining
// entries are recorded as skipped. The returned Report is populated
// even when an error is returned.
func (r *Runner) Run(ctx context.Context, cfg Config) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		Action:    string(cfg.Action),
		StartedAt: time.Now(),
	}

	if err := cfg.Validate(); err != nil {
		return report, err
	}
	if err := r.Matrix.Validate(); err != nil {
		return report, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid matrix", err)
	}

	filtered := r.Matrix.Filter(cfg.MinToolchain)
	if filtered.Len() == 0 {
		return report, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("no matrix entries at or above toolchain %s", cfg.MinToolchain))
	}

	killPattern := cfg.KillPattern
	if killPattern == "" {
		killPattern = DefaultKillPattern
	}
	killPolicy := cfg.KillPolicy
	if killPolicy == (process.Policy{}) {
		killPolicy = process.DefaultPolicy()
	}

	slog.Info("starting run",
		"runId", report.RunID,
		"action", string(cfg.Action),
		"entries", filtered.Len())

	var runErr error
	for _, entry := range filtered.Entries {
		if runErr != nil {
			report.Results = append(report.Results, EntryResult{
				Toolchain: entry.Toolchain.String(),
				SDK:       entry.SDK.String(),
				Status:    StatusSkipped,
			})
			continue
		}

		result := r.runEntry(ctx, cfg, entry, killPattern, killPolicy)
		report.Results = append(report.Results, result)
		if result.Status == StatusFailed {
			runErr = errors.WrapWithContext(errors.ErrCodeBuildFailed,
				fmt.Sprintf("run failed on toolchain %s", entry.Toolchain), nil,
				map[string]any{"exitCode": result.ExitCode, "cause": result.Error})
		}
	}

	report.Duration = time.Since(report.StartedAt)
	report.Succeeded = runErr == nil

	slog.Info("run finished",
		"runId", report.RunID,
		"succeeded", report.Succeeded,
		"duration", report.Duration.String())
	return report, runErr
}

// runEntry uses a named return so the deferred duration stamp is
// visible in the result the caller records.
func (r *Runner) runEntry(ctx context.Context, cfg Config, entry matrix.Entry, killPattern string, killPolicy process.Policy) (result EntryResult) {
	result.Toolchain = entry.Toolchain.String()
	result.SDK = entry.SDK.String()

	if cfg.DryRun {
		result.Status = StatusPlanned
		return result
	}

	started := time.Now()
	defer func() {
		result.Duration = time.Since(started)
	}()

	if err := r.Selector.Select(ctx, entry.Toolchain); err != nil {
		result.Status = StatusFailed
		result.ExitCode = -1
		result.Error = err.Error()
		return result
	}

	// A Simulator left over from the previous entry holds the old
	// runtime and breaks the next boot.
	if err := process.KillWithRetry(ctx, r.Procs, killPattern, killPolicy); err != nil {
		result.Status = StatusFailed
		result.ExitCode = -1
		result.Error = err.Error()
		return result
	}

	code, err := r.Invoker.Invoke(ctx, builder.Request{
		Action:    cfg.Action,
		Project:   cfg.Project,
		Scheme:    cfg.Scheme,
		Target:    cfg.Target,
		Toolchain: entry.Toolchain,
		SDK:       entry.SDK,
		ExtraArgs: cfg.ExtraArgs,
	})
	result.ExitCode = code
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	result.Status = StatusPassed
	return result
}
