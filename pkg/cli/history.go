/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/yarneo/kokoro-ios-runner/pkg/history"
	"github.com/yarneo/kokoro-ios-runner/pkg/serializer"
)

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "history",
		EnableShellCompletion: true,
		Usage:                 "List recorded runs",
		Description: `List runs recorded in the local history database, newest first.
Pass a run ID to print that run's full report.`,
		ArgsUsage: "[RUN_ID]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list (0 lists all)",
				Value: 20,
			},
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

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if err := ser.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}()

			if runID := cmd.Args().First(); runID != "" {
				report, err := store.Get(ctx, runID)
				if err != nil {
					return err
				}
				return ser.Serialize(report)
			}

			entries, err := store.List(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			return ser.Serialize(entries)
		},
	}
}
