/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package process

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarneo/kokoro-ios-runner/pkg/errors"
)

func TestParseProcessList(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected []string
	}{
		{
			name:     "single process",
			output:   "4242 Simulator\n",
			expected: []string{"Simulator"},
		},
		{
			name:     "duplicates collapsed and sorted",
			output:   "1 Simulator\n2 SimulatorTrampoline\n3 Simulator\n",
			expected: []string{"Simulator", "SimulatorTrampoline"},
		},
		{
			name:     "empty output",
			output:   "",
			expected: nil,
		},
		{
			name:     "malformed lines skipped",
			output:   "notapid\n99 Simulator\n",
			expected: []string{"Simulator"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseProcessList(tt.output))
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.Error(t, Policy{Timeout: 0, Interval: time.Millisecond}.Validate())
	assert.Error(t, Policy{Timeout: time.Second, Interval: 0}.Validate())
	assert.Error(t, Policy{Timeout: time.Millisecond, Interval: time.Second}.Validate())
}

// fakeManager simulates a process that dies after a configurable number
// of kill attempts, optionally respawning in between.
type fakeManager struct {
	mu             sync.Mutex
	running        bool
	respawnsLeft   int
	findCalls      int
	terminateCalls int
}

func (f *fakeManager) FindAll(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.running {
		return []string{pattern}, nil
	}
	return nil, nil
}

func (f *fakeManager) Terminate(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminateCalls++
	if !f.running {
		return ErrNotRunning
	}
	if f.respawnsLeft > 0 {
		f.respawnsLeft--
		return nil // killed but will be seen alive again next poll
	}
	f.running = false
	return nil
}

func TestKillWithRetry(t *testing.T) {
	policy := Policy{Timeout: time.Second, Interval: 5 * time.Millisecond}

	t.Run("already dead", func(t *testing.T) {
		mgr := &fakeManager{running: false}
		require.NoError(t, KillWithRetry(t.Context(), mgr, "Simulator", policy))
		assert.Zero(t, mgr.terminateCalls)
	})

	t.Run("dies on first kill", func(t *testing.T) {
		mgr := &fakeManager{running: true}
		require.NoError(t, KillWithRetry(t.Context(), mgr, "Simulator", policy))
		assert.Equal(t, 1, mgr.terminateCalls)
	})

	t.Run("respawns then dies", func(t *testing.T) {
		mgr := &fakeManager{running: true, respawnsLeft: 2}
		require.NoError(t, KillWithRetry(t.Context(), mgr, "Simulator", policy))
		assert.Equal(t, 3, mgr.terminateCalls)
	})

	t.Run("never dies hits deadline", func(t *testing.T) {
		mgr := &fakeManager{running: true, respawnsLeft: 1 << 30}
		err := KillWithRetry(t.Context(), mgr, "Simulator", Policy{
			Timeout:  30 * time.Millisecond,
			Interval: 5 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeKillTimeout, errors.CodeOf(err))
	})

	t.Run("invalid policy rejected", func(t *testing.T) {
		err := KillWithRetry(t.Context(), &fakeManager{}, "Simulator", Policy{})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
	})
}
