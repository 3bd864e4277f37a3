/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarneo/kokoro-ios-runner/pkg/runner"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReport(startedAt time.Time, succeeded bool) runner.Report {
	return runner.Report{
		RunID:     uuid.NewString(),
		Action:    "build",
		StartedAt: startedAt,
		Duration:  90 * time.Second,
		Succeeded: succeeded,
		Results: []runner.EntryResult{
			{Toolchain: "9.1", SDK: "11.1", Status: runner.StatusPassed},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	s := openTestStore(t)

	report := sampleReport(time.Now(), true)
	require.NoError(t, s.Record(t.Context(), report))

	got, err := s.Get(t.Context(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, got.RunID)
	assert.Equal(t, "build", got.Action)
	require.Len(t, got.Results, 1)
	assert.Equal(t, runner.StatusPassed, got.Results[0].Status)
}

func TestGetUnknownRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(t.Context(), "no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().Add(-time.Hour)
	oldest := sampleReport(base, true)
	middle := sampleReport(base.Add(10*time.Minute), false)
	newest := sampleReport(base.Add(20*time.Minute), true)
	for _, r := range []runner.Report{oldest, middle, newest} {
		require.NoError(t, s.Record(t.Context(), r))
	}

	entries, err := s.List(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, newest.RunID, entries[0].RunID)
	assert.Equal(t, middle.RunID, entries[1].RunID)
	assert.Equal(t, oldest.RunID, entries[2].RunID)
	assert.False(t, entries[1].Succeeded)

	limited, err := s.List(t.Context(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListEmptyStore(t *testing.T) {
	s := openTestStore(t)
	entries, err := s.List(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	s := openTestStore(t)
	report := sampleReport(time.Now(), true)
	require.NoError(t, s.Record(t.Context(), report))
	assert.Error(t, s.Record(t.Context(), report))
}
