/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/yarneo/kokoro-ios-runner/pkg/serializer"
	"github.com/yarneo/kokoro-ios-runner/pkg/toolchain"
	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

// installedReport is the output shape of the versions command.
type installedReport struct {
	CollectedAt time.Time         `json:"collectedAt" yaml:"collectedAt"`
	Toolchains  []version.Version `json:"toolchains" yaml:"toolchains"`
}

func versionsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "versions",
		EnableShellCompletion: true,
		Usage:                 "List toolchain versions installed on this machine",
		Description: `Query the toolchain selector (xcversion) for installed Xcode versions.
The list can be output in JSON, YAML, or table format.`,
		Flags: []cli.Flag{
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

			installed, err := toolchain.NewXcversionSelector().Installed(ctx)
			if err != nil {
				return err
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if err := ser.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}()
			return ser.Serialize(installedReport{
				CollectedAt: time.Now(),
				Toolchains:  installed,
			})
		},
	}
}
