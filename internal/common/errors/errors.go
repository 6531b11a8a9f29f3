// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProviderUnavailable  ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeConfigurationMissing ErrorCode = "CONFIGURATION_MISSING"

	ErrCodeModelCallFailed  ErrorCode = "MODEL_CALL_FAILED"
	ErrCodeModelTimeout     ErrorCode = "MODEL_TIMEOUT"
	ErrCodeNoModelAvailable ErrorCode = "NO_MODEL_AVAILABLE"
	ErrCodeUnknownModel     ErrorCode = "UNKNOWN_MODEL"

	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewProviderUnavailableError covers network errors, timeouts, non-200 statuses
// and malformed payloads from an external provider.
func NewProviderUnavailableError(provider string, err error) *StandardError {
	details := "unknown"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   fmt.Sprintf("Provider '%s' unavailable", provider),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotFoundError is user-correctable: the message is shown to the user.
func NewNotFoundError(provider, userMessage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   userMessage,
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationMissingError marks a capability that has no credentials.
func NewConfigurationMissingError(component, setting string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   fmt.Sprintf("Component '%s' is not configured", component),
		Details:   fmt.Sprintf("missing: %s", setting),
		Retryable: false,
		Metadata:  map[string]interface{}{"component": component},
		Timestamp: time.Now().UTC(),
	}
}

// NewModelCallFailedError wraps a backend failure. Retryable by the user.
func NewModelCallFailedError(model string, err error) *StandardError {
	details := "empty response"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeModelCallFailed,
		Message:   fmt.Sprintf("Model '%s' call failed", model),
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"model": model},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewModelTimeoutError is returned when a backend does not answer in time.
func NewModelTimeoutError(model string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelTimeout,
		Message:   fmt.Sprintf("Model '%s' timeout", model),
		Details:   "completion exceeded configured timeout",
		Retryable: true,
		Metadata:  map[string]interface{}{"model": model},
		Timestamp: time.Now().UTC(),
	}
}

func NewNoModelAvailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoModelAvailable,
		Message:   "No completion backend is configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownModelError(model string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownModel,
		Message:   "Unknown model",
		Details:   fmt.Sprintf("model: %s", model),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProviderUnavailable:  "PROVIDER_UNAVAILABLE",
	ErrCodeNotFound:             "NOT_FOUND",
	ErrCodeConfigurationMissing: "CONFIGURATION_MISSING",
	ErrCodeModelCallFailed:      "MODEL_CALL_FAILED",
	ErrCodeModelTimeout:         "MODEL_TIMEOUT",
	ErrCodeNoModelAvailable:     "NO_MODEL_AVAILABLE",
	ErrCodeUnknownModel:         "UNKNOWN_MODEL",
	ErrCodeInvalidInput:         "INVALID_INPUT",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeModelCallFailed:
		return 2
	case ErrCodeModelTimeout:
		return 1
	default:
		// Provider errors are never retried; they degrade to empty context.
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard unwraps err into a *StandardError if one is in the chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROVIDER") || code == ErrCodeNotFound:
		return "PROVIDER"
	case strings.Contains(codeStr, "MODEL"):
		return "MODEL"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
