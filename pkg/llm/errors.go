package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrorType classifies an LLM failure.
type ErrorType string

const (
	ErrorTypeNone        ErrorType = ""
	ErrorTypeEndpoint    ErrorType = "endpoint"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeModel       ErrorType = "model"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeCircuitOpen ErrorType = "circuit_open"
	ErrorTypeEmpty       ErrorType = "empty_response"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a classified LLM failure.
type Error struct {
	Type       ErrorType
	Message    string
	Retryable  bool
	Cause      error
	StatusCode int    // HTTP status if the provider returned one
	Model      string // Model name if known
}

func (e *Error) Error() string {
	parts := []string{string(e.Type)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	parts = append(parts, e.Message)

	msg := strings.Join(parts, " ")
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable satisfies retry.RetryableError.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a classified error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError turns a provider error into an *Error. Errors that are
// already classified are returned unchanged.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	status := statusCode(err)
	classified := classify(err, status)
	classified.StatusCode = status
	return classified
}

// statusCode prefers the structured status from the OpenAI SDK and falls back
// to scanning the message, which is all the Anthropic SDK exposes reliably.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return reqErr.HTTPStatusCode
	}

	msg := err.Error()
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504, 529} {
		if strings.Contains(msg, fmt.Sprintf("%d", code)) {
			return code
		}
	}
	return 0
}

func classify(err error, status int) *Error {
	lower := strings.ToLower(err.Error())
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}

	switch {
	case status == 401 || status == 403 || has("unauthorized", "invalid api key", "authentication_error", "permission_error"):
		return NewError(ErrorTypeAuth, "authentication failed", false, err)
	case has("model") && has("not found", "does not exist", "not_found_error"):
		return NewError(ErrorTypeModel, "model not found", false, err)
	case status == 404:
		return NewError(ErrorTypeEndpoint, "endpoint not found", false, err)
	case status == 429 || has("rate limit", "rate_limit_error"):
		return NewError(ErrorTypeRateLimit, "rate limited", true, err)
	case has("connection refused", "no such host"):
		return NewError(ErrorTypeEndpoint, "connection failed", true, err)
	case has("context canceled"):
		return NewError(ErrorTypeEndpoint, "request canceled", false, err)
	case has("timeout", "deadline exceeded"):
		return NewError(ErrorTypeEndpoint, "request timeout", true, err)
	case status >= 500 || has("overloaded_error", "api_error"):
		return NewError(ErrorTypeEndpoint, "server error", true, err)
	}
	return NewError(ErrorTypeUnknown, "llm error", false, err)
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}
