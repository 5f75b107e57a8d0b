package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// LLMError represents different types of LLM-related errors
type LLMError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// ErrorType defines the category of LLM errors
type ErrorType string

const (
	NetworkError         ErrorType = "network_error"
	TimeoutError         ErrorType = "timeout_error"
	CanceledError        ErrorType = "canceled_error"
	AuthError            ErrorType = "auth_error"
	QuotaExceededError   ErrorType = "quota_exceeded_error"
	InvalidRequestError  ErrorType = "invalid_request_error"
	ModelNotFoundError   ErrorType = "model_not_found_error"
	InvalidResponseError ErrorType = "invalid_response_error"
	ProviderError        ErrorType = "provider_error"
	UnknownError         ErrorType = "unknown_error"
)

// Error implements the error interface
func (e *LLMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %s)", e.Type, e.Message, e.Cause.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *LLMError) Unwrap() error {
	return e.Cause
}

// NewLLMError creates a new LLM error
func NewLLMError(errorType ErrorType, message string, cause error) *LLMError {
	return &LLMError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyStatus classifies an HTTP status code returned by a provider API
func ClassifyStatus(status int, cause error) *LLMError {
	switch status {
	case http.StatusUnauthorized:
		return NewLLMError(AuthError, "Authentication failed - check API key", cause)
	case http.StatusForbidden:
		return NewLLMError(AuthError, "Access forbidden - insufficient permissions", cause)
	case http.StatusNotFound:
		return NewLLMError(ModelNotFoundError, "Model or endpoint not found", cause)
	case http.StatusTooManyRequests:
		return NewLLMError(QuotaExceededError, "Rate limit or quota exceeded", cause)
	case http.StatusBadRequest:
		return NewLLMError(InvalidRequestError, "Bad request - check request parameters", cause)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return NewLLMError(NetworkError, fmt.Sprintf("Server error (status: %d)", status), cause)
	}
	if status >= 400 {
		return NewLLMError(UnknownError, fmt.Sprintf("HTTP error (status: %d)", status), cause)
	}
	return nil
}

// ClassifyProviderError classifies provider-specific errors
func ClassifyProviderError(providerName string, err error) *LLMError {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewLLMError(CanceledError, "Request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewLLMError(TimeoutError, "Request timeout", err)
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "401") || strings.Contains(errMsg, "api key") || strings.Contains(errMsg, "invalid_api_key") || strings.Contains(errMsg, "authentication"):
		return NewLLMError(AuthError, "Invalid or missing API key", err)
	case strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "rate limit"):
		return NewLLMError(QuotaExceededError, "API quota or rate limit exceeded", err)
	case strings.Contains(errMsg, "timeout"):
		return NewLLMError(TimeoutError, "Request timeout", err)
	case strings.Contains(errMsg, "model") && (strings.Contains(errMsg, "not found") || strings.Contains(errMsg, "not_found") || strings.Contains(errMsg, "404")):
		return NewLLMError(ModelNotFoundError, "Model not found or unavailable", err)
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") || strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection"):
		return NewLLMError(NetworkError, "Network connectivity issue", err)
	case strings.Contains(errMsg, "parse") || strings.Contains(errMsg, "decode") || strings.Contains(errMsg, "unmarshal"):
		return NewLLMError(InvalidResponseError, "Failed to parse API response", err)
	}

	return NewLLMError(ProviderError, providerName+" provider error", err)
}

// hint returns a user-facing suggestion for the error type
func (e *LLMError) hint(provider string) string {
	switch e.Type {
	case AuthError:
		return "Check that your API key is valid for provider '" + provider + "'"
	case QuotaExceededError:
		return "The provider rejected the request for quota or rate limit reasons; wait and run the command again"
	case TimeoutError:
		return "The provider did not answer in time"
	case ModelNotFoundError:
		return fmt.Sprintf("Check the model name: aishell config get providers.%s.model", provider)
	case NetworkError:
		if provider == "ollama" {
			return "Is the Ollama server running? Start it with: ollama serve"
		}
		return "Check your network connection"
	}
	return ""
}

// ToTransportError converts any provider failure into a TRANSPORT_FAILURE
// error carrying the classification and a hint.
func ToTransportError(provider string, err error) *aerrors.AishellError {
	if err == nil {
		return nil
	}
	if ae, ok := aerrors.GetAishellError(err); ok {
		return ae
	}
	classified := ClassifyProviderError(provider, err)
	out := aerrors.ErrTransportFailed(provider, classified).
		WithDetails(classified.Message).
		WithContext("error_type", string(classified.Type))
	if h := classified.hint(provider); h != "" {
		out.WithHint(h)
	}
	return out
}
