// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for the
// VAP agent bridge.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies bridge errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeLaunchFailure indicates the tool provider process could not be
	// started or initialized.
	CodeLaunchFailure ErrorCode = "LAUNCH_FAILURE"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnauthorized indicates the remote service rejected the credential.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// BridgeError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type BridgeError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *BridgeError) MarshalJSON() ([]byte, error) {
	type Alias BridgeError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new BridgeError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *BridgeError {
	return &BridgeError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Attributes: make(map[string]string),
	}
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *BridgeError) WithAttribute(key, value string) *BridgeError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *BridgeError) WithRecoverable(recoverable bool) *BridgeError {
	e.Recoverable = recoverable
	return e
}

// AsBridgeError attempts to convert an error to a BridgeError.
// Returns the error as BridgeError if it is one, or wraps it otherwise.
func AsBridgeError(err error) *BridgeError {
	if err == nil {
		return nil
	}
	if be, ok := err.(*BridgeError); ok {
		return be
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the error code of err, or CodeInternal when err carries
// no BridgeError in its chain.
func CodeOf(err error) ErrorCode {
	return AsBridgeError(err).Code
}
