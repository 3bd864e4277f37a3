package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredErrorMessage(t *testing.T) {
	err := New(ErrCodeToolchainNotFound, "xcversion has no 9.3")
	assert.Equal(t, "[TOOLCHAIN_NOT_FOUND] xcversion has no 9.3", err.Error())

	cause := stderrors.New("exit status 1")
	wrapped := Wrap(ErrCodeBuildFailed, "xcodebuild exited non-zero", cause)
	assert.Equal(t, "[BUILD_FAILED] xcodebuild exited non-zero: exit status 1", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeInternal, "wrapper", cause)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeKillTimeout, CodeOf(New(ErrCodeKillTimeout, "simulator survived")))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("plain")))

	// Code survives further fmt wrapping.
	inner := New(ErrCodeBuildFailed, "failed")
	outer := Wrap(ErrCodeInternal, "outer", inner)
	var se *StructuredError
	assert.True(t, stderrors.As(outer, &se))
	assert.Equal(t, ErrCodeInternal, se.Code)
}

func TestWrapWithContext(t *testing.T) {
	err := WrapWithContext(ErrCodeBuildFailed, "build", nil, map[string]any{"toolchain": "9.1"})
	assert.Equal(t, "9.1", err.Context["toolchain"])
}
