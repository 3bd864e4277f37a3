/*
Copyright © 2026 The kokoro-ios-runner Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package errors provides structured error types for programmatic error
// handling across the runner.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeBuildFailed,
//	    "xcodebuild exited non-zero",
//	    cmdErr,
//	    map[string]any{
//	        "toolchain": "9.1",
//	        "sdk":       "11.1",
//	    },
//	)
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeToolchainNotFound indicates the requested toolchain version is
	// not installed or the selector binary is missing.
	ErrCodeToolchainNotFound ErrorCode = "TOOLCHAIN_NOT_FOUND"
	// ErrCodeBuildFailed indicates the build invocation exited non-zero.
	ErrCodeBuildFailed ErrorCode = "BUILD_FAILED"
	// ErrCodeKillTimeout indicates a process refused to die within the
	// termination deadline.
	ErrCodeKillTimeout ErrorCode = "KILL_TIMEOUT"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInternal indicates an internal runner error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information: a code for
// programmatic handling, a human-readable message, the underlying cause,
// and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternal if err
// is not a StructuredError.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}
