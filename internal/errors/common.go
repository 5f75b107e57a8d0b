package errors

import (
	"fmt"
	"strings"
)

// Credential and input error factory functions

// ErrMissingCredentialFor the credential variable of a provider is unset
func ErrMissingCredentialFor(envVar string) *AishellError {
	return NewError(ErrMissingCredential, fmt.Sprintf("%s environment variable is not set.", envVar)).
		WithContext("env", envVar).
		WithHint(fmt.Sprintf("Please set it with: export %s=your_api_key", envVar))
}

// ErrMissingDescription no task description was supplied
func ErrMissingDescription() *AishellError {
	return NewError(ErrMissingInput, "no command description provided").
		WithHint(`Usage: aishell -c "describe the command you need"`)
}

// Configuration related error factory functions

// ErrConfigLoadFailed configuration loading failed
func ErrConfigLoadFailed(path string, cause error) *AishellError {
	return WrapError(cause, ErrConfigLoad, "Configuration file loading failed").
		WithContext("config_path", path)
}

// ErrConfigSaveFailed configuration saving failed
func ErrConfigSaveFailed(path string, cause error) *AishellError {
	return WrapError(cause, ErrConfigSave, "Configuration file saving failed").
		WithContext("config_path", path)
}

// ErrConfigValidationFailed configuration validation failed
func ErrConfigValidationFailed(field string, reason string) *AishellError {
	return NewError(ErrConfigValidation, fmt.Sprintf("Configuration validation failed: %s", reason)).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Generation error factory functions

// ErrProviderNotFoundError provider not found. available is listed in the hint.
func ErrProviderNotFoundError(provider string, available []string) *AishellError {
	err := NewError(ErrProviderNotFound, fmt.Sprintf("unknown provider: %s", provider)).
		WithContext("provider", provider)
	if len(available) > 0 {
		err.WithHint("Available providers: " + strings.Join(available, ", "))
	}
	return err
}

// ErrProviderInitFailed provider initialization failed
func ErrProviderInitFailed(provider string, cause error) *AishellError {
	return WrapError(cause, ErrProviderInit, fmt.Sprintf("provider '%s' initialization failed", provider)).
		WithContext("provider", provider)
}

// ErrMalformed the service answered with something that is not a plain text command
func ErrMalformed(reason string) *AishellError {
	return NewError(ErrMalformedResponse, "Unexpected response format").
		WithDetails(reason)
}

// ErrTransportFailed the call to the generation service failed
func ErrTransportFailed(provider string, cause error) *AishellError {
	return WrapError(cause, ErrTransport, fmt.Sprintf("request to provider '%s' failed", provider)).
		WithContext("provider", provider)
}

// Post-acceptance error factory functions

// ErrClipboardFailed no clipboard utility could take the text
func ErrClipboardFailed(cause error) *AishellError {
	return WrapError(cause, ErrClipboardUnavailable, "could not copy command to clipboard")
}

// ErrExecutionFailed the accepted command exited non-zero
func ErrExecutionFailed(exitCode int, cause error) *AishellError {
	return WrapError(cause, ErrExecutionNonZero, fmt.Sprintf("command exited with status %d", exitCode)).
		WithContext("exit_code", exitCode)
}

// ErrHandoffFailed the handoff file could not be written
func ErrHandoffFailed(path string, cause error) *AishellError {
	return WrapError(cause, ErrHandoffWrite, "could not write handoff file").
		WithContext("path", path)
}

// Shell wrapper error factory functions

// ErrWrapperInstallFailed wrapper installation failed
func ErrWrapperInstallFailed(cause error) *AishellError {
	return WrapError(cause, ErrWrapperInstall, "shell wrapper installation failed")
}

// ErrWrapperUninstallFailed wrapper removal failed
func ErrWrapperUninstallFailed(cause error) *AishellError {
	return WrapError(cause, ErrWrapperUninstall, "shell wrapper removal failed")
}

// User interface error factory functions

// ErrUserCancelled user interrupted an interactive read
func ErrUserCancelled() *AishellError {
	return NewError(ErrUserCancel, "operation cancelled")
}

// ErrUserInputFailed reading user input failed
func ErrUserInputFailed(cause error) *AishellError {
	return WrapError(cause, ErrUserInput, "failed to read input")
}
