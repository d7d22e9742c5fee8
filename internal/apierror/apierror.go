// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, datastore errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Code is a stable machine-readable identifier; Detail is for humans.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewCoded builds an error envelope with a machine-readable code.
func NewCoded(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// Stable machine codes used across handlers.
const (
	CodeAuthRequired    = "auth_required"
	CodeTokenInvalid    = "token_invalid"
	CodeForbidden       = "forbidden"
	CodeSelfDelete      = "self_delete"
	CodeEmailExists     = "email_exists"
	CodeNotFound        = "not_found"
	CodeBadConfirmation = "bad_confirmation"
	CodeOutOfScope      = "out_of_scope"
)

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}
