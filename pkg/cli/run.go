/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/yarneo/kokoro-ios-runner/pkg/builder"
	"github.com/yarneo/kokoro-ios-runner/pkg/history"
	"github.com/yarneo/kokoro-ios-runner/pkg/process"
	"github.com/yarneo/kokoro-ios-runner/pkg/runner"
	"github.com/yarneo/kokoro-ios-runner/pkg/serializer"
	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

func runCmd() *cli.Command {
	return &cli.Command{
		Name:                  "run",
		EnableShellCompletion: true,
		Usage:                 "Build or test against every matrix toolchain",
		Description: `Walk the toolchain/SDK matrix in order. For each entry at or above
--min-xcode the runner:
  1. Activates the toolchain via xcversion
  2. Force-quits lingering Simulator processes, retrying until dead
  3. Invokes xcodebuild with the entry's SDK

The first non-zero build exit fails the whole run; remaining entries
are reported as skipped. The run report can be output in JSON, YAML,
or table format, and is recorded in the local run history unless
--no-history is set.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "action",
				Aliases: []string{"a"},
				Usage:   fmt.Sprintf("Build action (supported values: %v)", builder.SupportedActions()),
				Sources: cli.EnvVars("RUNNER_ACTION"),
				Value:   string(builder.ActionBuild),
			},
			&cli.StringFlag{
				Name:    "project",
				Usage:   "Xcode project file (e.g. App.xcodeproj)",
				Sources: cli.EnvVars("RUNNER_PROJECT"),
			},
			&cli.StringFlag{
				Name:    "scheme",
				Usage:   "Build scheme",
				Sources: cli.EnvVars("RUNNER_SCHEME"),
			},
			&cli.StringFlag{
				Name:    "target",
				Usage:   "Build target (alternative to --scheme)",
				Sources: cli.EnvVars("RUNNER_TARGET"),
			},
			&cli.StringSliceFlag{
				Name:  "extra",
				Usage: "Extra argument passed through to the build tool verbatim (can be repeated)",
			},
			&cli.StringFlag{
				Name:  "kill-pattern",
				Usage: "Process name cleared before each build",
				Value: runner.DefaultKillPattern,
			},
			&cli.DurationFlag{
				Name:  "kill-timeout",
				Usage: "Deadline for pre-build process teardown",
				Value: 10 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Plan the run without invoking any external tool",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Skip recording the run in the local history database",
			},
			minXcodeFlag,
			matrixFileFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := setup(cmd); err != nil {
				return err
			}

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			cfg, err := buildConfigFromCmd(cmd)
			if err != nil {
				return err
			}

			m, err := loadMatrixFromCmd(cmd)
			if err != nil {
				return err
			}

			report, runErr := runner.New(m).Run(ctx, cfg)

			// The report is written even when the run failed, so CI logs
			// keep the partial results.
			if len(report.Results) > 0 {
				if err := recordHistory(ctx, cmd, report); err != nil {
					slog.Warn("failed to record run history", "error", err)
				}

				ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
				defer func() {
					if err := ser.Close(); err != nil {
						slog.Warn("failed to close serializer", "error", err)
					}
				}()
				if err := ser.Serialize(report); err != nil {
					return err
				}
			}

			return runErr
		},
	}
}

// buildConfigFromCmd constructs a runner.Config from CLI flags.
func buildConfigFromCmd(cmd *cli.Command) (runner.Config, error) {
	cfg := runner.Config{
		Action:      builder.Action(cmd.String("action")),
		Project:     cmd.String("project"),
		Scheme:      cmd.String("scheme"),
		Target:      cmd.String("target"),
		ExtraArgs:   cmd.StringSlice("extra"),
		KillPattern: cmd.String("kill-pattern"),
		DryRun:      cmd.Bool("dry-run"),
	}

	if min := cmd.String("min-xcode"); min != "" {
		v, err := version.Parse(min)
		if err != nil {
			return runner.Config{}, fmt.Errorf("invalid min-xcode version %q: %w", min, err)
		}
		cfg.MinToolchain = v
	}

	cfg.KillPolicy = process.DefaultPolicy()
	if timeout := cmd.Duration("kill-timeout"); timeout > 0 {
		cfg.KillPolicy.Timeout = timeout
	}

	return cfg, cfg.Validate()
}

// recordHistory stores the report unless --no-history is set.
func recordHistory(ctx context.Context, cmd *cli.Command, report runner.Report) error {
	if cmd.Bool("no-history") {
		return nil
	}

	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}()

	return store.Record(ctx, report)
}
