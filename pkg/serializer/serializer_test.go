/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/
package serializer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yarneo/kokoro-ios-runner/pkg/version"
)

type sample struct {
	Name      string          `json:"name" yaml:"name"`
	Toolchain version.Version `json:"toolchain" yaml:"toolchain"`
	Duration  time.Duration   `json:"duration" yaml:"duration"`
	Tags      []string        `json:"tags" yaml:"tags"`
}

func testSample() sample {
	return sample{
		Name:      "run",
		Toolchain: version.MustParse("9.1"),
		Duration:  1500 * time.Millisecond,
		Tags:      []string{"a", "b"},
	}
}

func TestFormatIsUnknown(t *testing.T) {
	assert.False(t, FormatJSON.IsUnknown())
	assert.False(t, FormatYAML.IsUnknown())
	assert.False(t, FormatTable.IsUnknown())
	assert.True(t, Format("xml").IsUnknown())
	assert.True(t, Format("").IsUnknown())
}

func TestSerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)
	require.NoError(t, w.Serialize(testSample()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run", got["name"])
}

func TestSerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)
	require.NoError(t, w.Serialize(testSample()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run", got["name"])
	// Versions marshal as their dotted string form.
	assert.Equal(t, "9.1", got["toolchain"])
}

func TestSerializeTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Serialize(testSample()))

	// tabwriter expands tabs to aligned spaces, so assert on cell values.
	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "run")
	// Stringer types render as their string form, not field-by-field.
	assert.Contains(t, out, "9.1")
	assert.NotContains(t, out, "Toolchain.Major")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "Tags.[0]")
}

func TestSerializeTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Serialize(struct{}{}))
	assert.Contains(t, buf.String(), "<empty>")
}

func TestUnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	require.NoError(t, w.Serialize(testSample()))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestNewFileWriterOrStdout(t *testing.T) {
	t.Run("writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		w := NewFileWriterOrStdout(FormatJSON, path)
		require.NoError(t, w.Serialize(testSample()))
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, json.Valid(data))
	})

	t.Run("empty path uses stdout", func(t *testing.T) {
		w := NewFileWriterOrStdout(FormatJSON, "")
		assert.NoError(t, w.Close())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		w := NewFileWriterOrStdout(FormatJSON, path)
		require.NoError(t, w.Close())
		assert.NoError(t, w.Close())
	})
}
