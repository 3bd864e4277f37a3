// Package cli implements the command-line interface for the
// kokoro-ios-runner build wrapper.
//
// # Overview
//
// The runner walks an ordered Xcode-toolchain/SDK matrix: for each entry
// it activates the toolchain, clears lingering Simulator processes, and
// invokes xcodebuild, failing fast on the first non-zero exit. It is
// designed for CI jobs building the same project against every installed
// toolchain.
//
// # Commands
//
// run - Execute a matrix run:
//
//	kokoro-ios-runner run --scheme App --action test --min-xcode 9 [--matrix FILE]
//
// versions - List toolchains installed on this machine:
//
//	kokoro-ios-runner versions [--format yaml|json|table]
//
// matrix - Print the effective matrix after filtering:
//
//	kokoro-ios-runner matrix --min-xcode 9.1
//
// history - List recorded runs:
//
//	kokoro-ios-runner history [--limit N]
//
// All commands accept --format (json, yaml, table) and --output for
// writing results to a file instead of stdout.
package cli
