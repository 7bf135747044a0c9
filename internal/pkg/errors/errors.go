package errors

import (
	"errors"
	"fmt"
)

// EngineError represents an engine error with a stable code and the component
// it originated from.
type EngineError struct {
	Code      string `json:"code"`
	Component string `json:"component"`
	Message   string `json:"message"`
	Internal  error  `json:"-"`
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *EngineError) Unwrap() error {
	return e.Internal
}

// Error codes
const (
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeCollection    = "COLLECTION_ERROR"
	CodeMatcher       = "MATCHER_ERROR"
	CodeCancellation  = "CANCELLATION_ERROR"
)

// New creates a new EngineError
func New(code, component, message string) *EngineError {
	return &EngineError{
		Code:      code,
		Component: component,
		Message:   message,
	}
}

// Wrap wraps an error with an EngineError
func Wrap(err error, code, component, message string) *EngineError {
	return &EngineError{
		Code:      code,
		Component: component,
		Message:   message,
		Internal:  err,
	}
}

// Configuration creates a fatal configuration error. Raised before any
// collection starts; never recorded as a warning.
func Configuration(message string) *EngineError {
	return New(CodeConfiguration, "config", message)
}

// Configurationf creates a configuration error with a formatted message
func Configurationf(format string, v ...interface{}) *EngineError {
	return Configuration(fmt.Sprintf(format, v...))
}

// Collection creates a recoverable per-source collection error
func Collection(source string, err error, message string) *EngineError {
	return Wrap(err, CodeCollection, source, message)
}

// Matcher creates a recoverable per-strategy matching error
func Matcher(strategy string, err error, message string) *EngineError {
	return Wrap(err, CodeMatcher, strategy, message)
}

// Cancelled creates a cancellation error that aborts the whole run
func Cancelled(err error) *EngineError {
	return Wrap(err, CodeCancellation, "engine", "run cancelled")
}

// hasCode reports whether err carries the given engine error code
func hasCode(err error, code string) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// IsConfiguration reports whether err is a configuration error
func IsConfiguration(err error) bool {
	return hasCode(err, CodeConfiguration)
}

// IsCancelled reports whether err is a cancellation error
func IsCancelled(err error) bool {
	return hasCode(err, CodeCancellation)
}
