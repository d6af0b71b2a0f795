package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeUnauthorized is used when authentication is required but missing
	ErrCodeUnauthorized = "UNAUTHORIZED"
)

// Cheque lifecycle error codes surfaced by the domain and application layers
const (
	// ErrCodeDuplicateCheque is used when a cheque number already exists for a tenant
	ErrCodeDuplicateCheque = "DUPLICATE_CHEQUE"
	// ErrCodeInvalidTransition is used when a lifecycle action is not allowed
	// from the cheque's current status
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	// ErrCodeAlreadyReplaced is used when a bounced cheque already has a replacement
	ErrCodeAlreadyReplaced = "ALREADY_REPLACED"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeUnauthorized: http.StatusUnauthorized,

	// Conflicts -> 409
	ErrCodeDuplicateCheque:     http.StatusConflict,
	ErrCodeAlreadyReplaced:     http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	"ALREADY_EXISTS":           http.StatusConflict,

	// Lifecycle rule violations -> 422 Unprocessable Entity
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code. Field-level
// INVALID_* codes from the domain map to 400; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
