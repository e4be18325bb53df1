// Package exception provides the error types shared by thermolog jobs.
// Errors are classified as skippable (tolerated and counted) or fatal (abort the job).
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Sentinel errors for the ingestion and selection error kinds. Match them with errors.Is.
var (
	// ErrNoInputs means the expanded input list is empty.
	ErrNoInputs = errors.New("no input files")
	// ErrOutputDirUnavailable means the output directory could neither be opened nor created.
	ErrOutputDirUnavailable = errors.New("output directory unavailable")
	// ErrOutputCreateFailed means the output artifact could not be created or finalized.
	ErrOutputCreateFailed = errors.New("output artifact could not be created")
	// ErrFileOpen means a discovered input could not be opened.
	ErrFileOpen = errors.New("input file could not be opened")
	// ErrLineSkip means a data line did not parse.
	ErrLineSkip = errors.New("line skipped")
	// ErrHeaderMalformed means a '#' first line did not match the header pattern.
	ErrHeaderMalformed = errors.New("malformed header")
	// ErrInvalidRange means a range start timestamp could not be parsed.
	ErrInvalidRange = errors.New("invalid range")
)

// BatchError is the error type returned by job components.
// It records the module where the error occurred and whether the job may continue past it.
type BatchError struct {
	// Module indicates where the error occurred (e.g. "ingest", "writer", "config").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped error.
	OriginalErr error
	// isRetryable indicates whether re-running the same operation may succeed.
	isRetryable bool
	// isSkippable indicates whether the job may continue past this error.
	isSkippable bool
	// StackTrace is captured at construction for debugging.
	StackTrace string
}

// NewBatchError creates a new BatchError.
func NewBatchError(module, message string, originalErr error, isSkippable, isRetryable bool) *BatchError {
	return &BatchError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  captureStack(),
	}
}

// NewBatchErrorf creates a new BatchError using a format string.
// Optional trailing arguments are taken from the end of 'a' in the order
// [isSkippable bool], [isRetryable bool], [originalErr error]; the rest feed fmt.Sprintf.
//
//	NewBatchErrorf("ingest", "cannot open %s", path, true, false, err)
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	var originalErr error
	isRetryable := false
	isSkippable := false
	args := a

	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		if b, ok := args[len(args)-1].(bool); ok {
			isRetryable = b
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		if b, ok := args[len(args)-1].(bool); ok {
			isSkippable = b
			args = args[:len(args)-1]
		}
	}

	return &BatchError{
		Module:      module,
		Message:     fmt.Sprintf(format, args...),
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  captureStack(),
	}
}

// NewFatal wraps a sentinel (and optional cause) as a non-skippable, non-retryable error.
func NewFatal(module string, kind error, message string, cause error) *BatchError {
	return NewBatchError(module, message, join(kind, cause), false, false)
}

// NewSkippable wraps a sentinel (and optional cause) as a skippable error.
func NewSkippable(module string, kind error, message string, cause error) *BatchError {
	return NewBatchError(module, message, join(kind, cause), true, false)
}

func join(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return errors.Join(kind, cause)
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Is and errors.As.
func (e *BatchError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether this error is retryable.
func (e *BatchError) IsRetryable() bool {
	return e.isRetryable
}

// IsSkippable returns whether this error is skippable.
func (e *BatchError) IsSkippable() bool {
	return e.isSkippable
}

// IsBatchError reports whether err (or anything it wraps) is a BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}

// IsSkippable reports whether err is a BatchError flagged as skippable.
func IsSkippable(err error) bool {
	var be *BatchError
	if errors.As(err, &be) {
		return be.IsSkippable()
	}
	return false
}

// IsFatal reports whether err must abort the job.
// A BatchError is fatal when it is neither retryable nor skippable; any other non-nil error is fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	if errors.As(err, &be) {
		return !be.IsRetryable() && !be.IsSkippable()
	}
	return true
}

// ExtractErrorMessage returns the Message of a BatchError, or err.Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
