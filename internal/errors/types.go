package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

// ErrorCode defines error code type
type ErrorCode string

const (
	// Credential and input errors
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrMissingInput      ErrorCode = "MISSING_INPUT"

	// Generation errors
	ErrMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	ErrTransport         ErrorCode = "TRANSPORT_FAILURE"
	ErrProviderNotFound  ErrorCode = "PROVIDER_NOT_FOUND"
	ErrProviderInit      ErrorCode = "PROVIDER_INIT"

	// Configuration errors
	ErrConfigLoad       ErrorCode = "CONFIG_LOAD"
	ErrConfigSave       ErrorCode = "CONFIG_SAVE"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Post-acceptance errors
	ErrClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE"
	ErrExecutionNonZero     ErrorCode = "EXECUTION_NON_ZERO"
	ErrHandoffWrite         ErrorCode = "HANDOFF_WRITE"

	// Shell wrapper errors
	ErrWrapperInstall   ErrorCode = "WRAPPER_INSTALL"
	ErrWrapperUninstall ErrorCode = "WRAPPER_UNINSTALL"

	// User interface errors
	ErrUserInput  ErrorCode = "USER_INPUT"
	ErrUserCancel ErrorCode = "USER_CANCEL"
)

// nonFatal lists the codes that are reported and then ignored.
var nonFatal = map[ErrorCode]bool{
	ErrClipboardUnavailable: true,
	ErrExecutionNonZero:     true,
}

// AishellError represents a structured error for the aishell application
type AishellError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Hints      []string               `json:"hints,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Stack      string                 `json:"stack,omitempty"`
	UserFacing bool                   `json:"user_facing"`
}

// Error implements error interface
func (e *AishellError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports Go 1.13+ error wrapping
func (e *AishellError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether the error must abort the run.
func (e *AishellError) IsFatal() bool {
	return !nonFatal[e.Code]
}

// IsUserFacing returns whether the error should be shown to user
func (e *AishellError) IsUserFacing() bool {
	return e.UserFacing
}

// WithContext adds context information
func (e *AishellError) WithContext(key string, value interface{}) *AishellError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause adds root cause
func (e *AishellError) WithCause(cause error) *AishellError {
	e.Cause = cause
	return e
}

// WithDetails sets the detail string shown after the message.
func (e *AishellError) WithDetails(details string) *AishellError {
	e.Details = details
	return e
}

// WithHint appends a suggestion printed below the error.
func (e *AishellError) WithHint(hint string) *AishellError {
	e.Hints = append(e.Hints, hint)
	return e
}

// NewError creates a new aishell error
func NewError(code ErrorCode, message string) *AishellError {
	return &AishellError{
		Code:       code,
		Message:    message,
		Context:    make(map[string]interface{}),
		Stack:      captureStack(),
		UserFacing: true,
	}
}

// NewInternalError creates internal error (not shown to user)
func NewInternalError(code ErrorCode, message string) *AishellError {
	err := NewError(code, message)
	err.UserFacing = false
	return err
}

// WrapError wraps existing error
func WrapError(err error, code ErrorCode, message string) *AishellError {
	if err == nil {
		return nil
	}

	return &AishellError{
		Code:       code,
		Message:    message,
		Cause:      err,
		Context:    make(map[string]interface{}),
		Stack:      captureStack(),
		UserFacing: true,
	}
}

// captureStack captures current stack information
func captureStack() string {
	// Skip current function and the function that called it
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// IsAishellError checks if err (or anything it wraps) is an aishell error
func IsAishellError(err error) bool {
	_, ok := GetAishellError(err)
	return ok
}

// GetAishellError finds the first aishell error in err's chain
func GetAishellError(err error) (*AishellError, bool) {
	var target *AishellError
	if stderrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// HasCode checks if error has specific code
func HasCode(err error, code ErrorCode) bool {
	if e, ok := GetAishellError(err); ok {
		return e.Code == code
	}
	return false
}

// IsFatal reports whether err aborts the run. Unknown errors are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := GetAishellError(err); ok {
		return e.IsFatal()
	}
	return true
}
