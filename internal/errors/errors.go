// Package errors defines the structured error taxonomy shared by the updater.
package errors

import "errors"

// Code identifies a structured error type used across the application.
type Code string

const (
	CodeUnknown Code = "unknown"

	// Remote API failures while listing packages or resolving a release.
	CodeResolution Code = "resolution"
	// Startup package name not in the installable set.
	CodeUnrecognizedPackage Code = "unrecognized_package"
	// Backup directory could not be created or populated.
	CodeBackup Code = "backup"
	// Clone, overlay copy or temp cleanup failed.
	CodeDownload Code = "download"
	// Interruption signal received.
	CodeCancelled Code = "cancelled"
	// Persisted state file present but unreadable or unparseable.
	CodeStateRead Code = "state_read"
	// Persisted state could not be written after an operation.
	CodeStateWrite Code = "state_write"
	// Settings file or flags are invalid.
	CodeConfiguration Code = "configuration"
)

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" && e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
