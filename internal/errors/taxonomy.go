package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrUnsupportedFileType signals that a file's extension is not a recognized
// spreadsheet type. It is a skip condition, not a failure: callers drop the
// file without producing an output artifact.
var ErrUnsupportedFileType = errors.New("unsupported file type: not a spreadsheet")

// IsSkip reports whether err means the document should be silently skipped.
func IsSkip(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType)
}

// ConfigurationError means a required external client or credential is
// absent. It is fatal and aborts before any processing starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigurationError creates a ConfigurationError with the given reason.
func NewConfigurationError(reason string) *ConfigurationError {
	return &ConfigurationError{Reason: reason}
}

// AnalysisError wraps a failure of the external document analysis call.
// It is propagated unchanged to the caller; the pipeline does not retry.
type AnalysisError struct {
	Filename string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("document analysis failed for %s: %v", e.Filename, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError wraps err as an analysis failure for the given file.
func NewAnalysisError(filename string, err error) *AnalysisError {
	return &AnalysisError{Filename: filename, Err: err}
}

// Traceback captures the current goroutine's stack for the error output
// document.
func Traceback() string {
	return string(debug.Stack())
}
