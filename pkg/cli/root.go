/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/yarneo/kokoro-ios-runner/pkg/logging"
	"github.com/yarneo/kokoro-ios-runner/pkg/serializer"
)

const name = "kokoro-ios-runner"

var (
	// overridden during build with ldflags
	appVersion = "dev"
	commit     = "unknown"
	date       = "unknown"
)

var (
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
		Sources: cli.EnvVars("RUNNER_FORMAT"),
		Value:   string(serializer.FormatJSON),
	}
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write output to file instead of stdout",
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Sources: cli.EnvVars("RUNNER_LOG_LEVEL"),
		Value:   "info",
	}
	envFileFlag = &cli.StringFlag{
		Name: "env-file",
		Usage: "Load environment variables from file for spawned tools " +
			"(loaded after flag parsing, so RUNNER_* flag defaults must be set in the shell)",
	}
	minXcodeFlag = &cli.StringFlag{
		Name:    "min-xcode",
		Usage:   "Lower bound filter on toolchain versions (e.g. 9, 9.1)",
		Sources: cli.EnvVars("RUNNER_MIN_XCODE"),
	}
	matrixFileFlag = &cli.StringFlag{
		Name:    "matrix",
		Usage:   "Path to YAML matrix file (defaults to the built-in matrix)",
		Sources: cli.EnvVars("RUNNER_MATRIX"),
	}
)

// Run executes the CLI with os.Args. It is called by main.main.
func Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	root := &cli.Command{
		Name:    name,
		Usage:   "CI build wrapper walking an Xcode toolchain/SDK matrix",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, commit, date),
		Flags: []cli.Flag{
			logLevelFlag,
			envFileFlag,
		},
		Commands: []*cli.Command{
			runCmd(),
			versionsCmd(),
			matrixCmd(),
			historyCmd(),
		},
	}

	return root.Run(ctx, os.Args)
}

// setup initializes logging and optional env-file loading for a command.
// It runs at the start of every command action so --log-level takes
// effect before any work happens. Variables loaded from --env-file reach
// the processes this tool spawns, not the RUNNER_* flag sources, which
// urfave resolves during flag parsing.
func setup(cmd *cli.Command) error {
	logging.SetDefaultStructuredLoggerWithLevel(name, appVersion, cmd.String("log-level"))

	if envFile := cmd.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
	}
	return nil
}

// parseOutputFormat validates the --format flag.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, supported values: %v",
			f, serializer.SupportedFormats())
	}
	return f, nil
}
