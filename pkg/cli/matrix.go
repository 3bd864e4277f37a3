/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/yarneo/kokoro-ios-runner/pkg/matrix"
	"github.com/yarneo/kokoro-ios-runner/pkg/serializer"
	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

func matrixCmd() *cli.Command {
	return &cli.Command{
		Name:                  "matrix",
		EnableShellCompletion: true,
		Usage:                 "Print the effective toolchain/SDK matrix",
		Description: `Print the matrix the run command would walk, after applying the
--min-xcode filter. Useful for checking a matrix file before a run.`,
		Flags: []cli.Flag{
			minXcodeFlag,
			matrixFileFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if err := setup(cmd); err != nil {
				return err
			}

			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			m, err := loadMatrixFromCmd(cmd)
			if err != nil {
				return err
			}

			if min := cmd.String("min-xcode"); min != "" {
				v, err := version.Parse(min)
				if err != nil {
					return fmt.Errorf("invalid min-xcode version %q: %w", min, err)
				}
				m = m.Filter(v)
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() {
				if err := ser.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}()
			return ser.Serialize(m)
		},
	}
}

// loadMatrixFromCmd loads the matrix file named by --matrix, or the
// built-in default matrix.
func loadMatrixFromCmd(cmd *cli.Command) (matrix.Matrix, error) {
	path := cmd.String("matrix")
	if path == "" {
		return matrix.Default(), nil
	}
	return matrix.Load(path)
}
