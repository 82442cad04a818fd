// Package errors provides coded errors for hunkslice.
//
// Error codes follow the format {domain}.{error} where:
//   - domain: the subsystem that produced the error (diff, backend, selection, staging, commit, config)
//   - error: the specific failure within that domain
//
// Codes are stable so callers can branch on them; the message is meant for
// humans and carries backend output verbatim where there is any.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes by domain.
const (
	// Diff domain - parsing raw diff text
	CodeDiffMalformed = "diff.malformed" // Diff text cannot be interpreted

	// Backend domain - git invocations
	CodeBackendDiffFailed   = "backend.diff_failed"   // git diff failed
	CodeBackendApplyFailed  = "backend.apply_failed"  // git apply --cached rejected the patch
	CodeBackendCommitFailed = "backend.commit_failed" // git commit failed after apply

	// Selection domain
	CodeSelectionEmpty = "selection.empty" // No hunk ids given, or none matched

	// Staging domain
	CodeStagingEmpty = "staging.empty" // Nothing staged when commit was requested

	// Commit domain
	CodeCommitEmptyMessage = "commit.empty_message" // Commit message is empty

	// Config domain
	CodeConfigInvalid = "config.invalid" // Config file or value cannot be used

	// General domain
	CodeUnknown = "error.unknown"
)

// CodedError wraps an error with a stable error code.
type CodedError struct {
	Code    string // Stable error code (e.g., "diff.malformed")
	Message string // Human-readable error message
	Cause   error  // Underlying error (may be nil)
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CodedError) Unwrap() error {
	return e.Cause
}

// New creates a new CodedError with the given code and message.
func New(code, message string) *CodedError {
	return &CodedError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new CodedError wrapping an existing error.
func Wrap(code, message string, cause error) *CodedError {
	return &CodedError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// GetCode extracts the error code from an error.
// Falls back to CodeUnknown for errors that carry no code.
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeUnknown
}

// GetMessage extracts the human-readable message from an error.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Message
	}
	return err.Error()
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code string) bool {
	return GetCode(err) == code
}

// MalformedDiff creates a "diff.malformed" error naming the offending construct.
func MalformedDiff(format string, args ...any) *CodedError {
	return New(CodeDiffMalformed, fmt.Sprintf(format, args...))
}

// BackendDiffFailed creates a "backend.diff_failed" error.
func BackendDiffFailed(output string, cause error) *CodedError {
	return Wrap(CodeBackendDiffFailed, withOutput("git diff failed", output), cause)
}

// BackendApplyFailed creates a "backend.apply_failed" error.
// The reconstructed patch stays on disk at patchPath for inspection.
func BackendApplyFailed(patchPath, output string, cause error) *CodedError {
	msg := withOutput("git apply --cached failed", output)
	if patchPath != "" {
		msg = fmt.Sprintf("%s\npatch kept at %s", msg, patchPath)
	}
	return Wrap(CodeBackendApplyFailed, msg, cause)
}

// BackendCommitFailed creates a "backend.commit_failed" error.
// The index keeps the applied changes.
func BackendCommitFailed(output string, cause error) *CodedError {
	msg := withOutput("git commit failed", output)
	return Wrap(CodeBackendCommitFailed, msg+"\nstaged changes were left in the index", cause)
}

// EmptySelection creates a "selection.empty" error.
func EmptySelection(reason string) *CodedError {
	msg := "no hunks selected"
	if reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, reason)
	}
	return New(CodeSelectionEmpty, msg)
}

// EmptyStagingArea creates a "staging.empty" error.
func EmptyStagingArea() *CodedError {
	return New(CodeStagingEmpty, "staging area is empty, nothing to commit")
}

// CommitEmptyMessage creates a "commit.empty_message" error.
func CommitEmptyMessage() *CodedError {
	return New(CodeCommitEmptyMessage, "commit message cannot be empty")
}

// ConfigInvalid creates a "config.invalid" error.
func ConfigInvalid(message string, cause error) *CodedError {
	return Wrap(CodeConfigInvalid, message, cause)
}

func withOutput(msg, output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, output)
}
