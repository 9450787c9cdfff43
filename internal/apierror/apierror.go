// Package apierror provides the standardized error envelope for the API.
// Every 4xx/5xx response goes through it so clients see a consistent shape
// and internal details (stack traces, DB errors) never leak.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}
