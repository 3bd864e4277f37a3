/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package process

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yarneo/kokoro-ios-runner/pkg/errors"
)

// Policy bounds a kill-until-dead loop. It is immutable after
// construction.
type Policy struct {
	// Timeout is the total deadline for the process to stay dead.
	Timeout time.Duration
	// Interval is the poll interval between liveness checks.
	Interval time.Duration
}

// DefaultPolicy returns the policy the runner uses for Simulator
// teardown: 10s deadline, 500ms polls.
func DefaultPolicy() Policy {
	return Policy{Timeout: 10 * time.Second, Interval: 500 * time.Millisecond}
}

// Validate ensures the policy can be applied.
func (p Policy) Validate() error {
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be >0")
	}
	if p.Interval <= 0 {
		return fmt.Errorf("interval must be >0")
	}
	if p.Interval > p.Timeout {
		return fmt.Errorf("interval cannot exceed timeout")
	}
	return nil
}

// KillWithRetry terminates every process matching pattern and keeps
// polling until none remain, re-terminating if a process respawns.
// Returns ErrCodeKillTimeout if matches remain at the deadline.
func KillWithRetry(ctx context.Context, mgr Manager, pattern string, policy Policy) error {
	if err := policy.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid kill policy", err)
	}

	ctx, cancel := context.WithTimeout(ctx, policy.Timeout)
	defer cancel()

	ticker := time.NewTicker(policy.Interval)
	defer ticker.Stop()

	for {
		names, err := mgr.FindAll(ctx, pattern)
		if err != nil {
			return fmt.Errorf("failed to check for %q: %w", pattern, err)
		}
		if len(names) == 0 {
			return nil
		}

		slog.Debug("terminating processes", "pattern", pattern, "names", names)
		g, gctx := errgroup.WithContext(ctx)
		for _, name := range names {
			g.Go(func() error {
				if err := mgr.Terminate(gctx, name); err != nil && !stderrors.Is(err, ErrNotRunning) {
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to terminate %q: %w", pattern, err)
		}

		select {
		case <-ctx.Done():
			// One last look: the kill may have landed just before the
			// deadline.
			names, ferr := mgr.FindAll(context.WithoutCancel(ctx), pattern)
			if ferr == nil && len(names) == 0 {
				return nil
			}
			return errors.WrapWithContext(errors.ErrCodeKillTimeout,
				fmt.Sprintf("%q still running at deadline", pattern), ctx.Err(),
				map[string]any{"timeout": policy.Timeout.String()})
		case <-ticker.C:
		}
	}
}
