package common

import (
	"errors"
	"net/http"
)

// ErrorResponse API error body
type ErrorResponse struct {
	Code    string `json:"code"`              // error code
	Message string `json:"message"`           // user facing message
	Details string `json:"details,omitempty"` // underlying error, debug mode only
}

// CustomError carries an error code and the HTTP status it maps to
type CustomError struct {
	Code    string // error code
	Message string // user facing message
	Err     error  // wrapped error
	Status  int    // HTTP status
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error to errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is matches predefined errors by code
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a CustomError
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Wrap returns a copy of a predefined error carrying err
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// ValidationError is an empty or invalid required input
type ValidationError struct {
	message string
}

// Error implements error
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError creates a ValidationError
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// TransportError is a network failure talking to the document store or the generation service
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError
func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// IsTransportError reports whether err is or wraps a TransportError
func IsTransportError(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// error codes
const (
	// client errors (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeUnauthorized     = "UNAUTHORIZED"       // 401
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// server errors (5xx)
	ErrCodeInternalError  = "INTERNAL_ERROR"  // 500
	ErrCodeBadGateway     = "BAD_GATEWAY"     // 502
	ErrCodeGatewayTimeout = "GATEWAY_TIMEOUT" // 504
)

// predefined errors
var (
	// client errors
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized", http.StatusUnauthorized, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "record not found", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "method not allowed", http.StatusMethodNotAllowed, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	// server errors
	ErrInternalError  = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrGatewayTimeout = NewError(ErrCodeGatewayTimeout, "gateway timeout", http.StatusGatewayTimeout, nil)

	// domain errors
	ErrGenerationFailed  = NewError("GENERATION_FAILED", "generation failed, please retry", http.StatusBadGateway, nil)
	ErrMalformedResponse = NewError("MALFORMED_RESPONSE", "generation service returned no suggestion", http.StatusOK, nil)
	ErrStoreUnavailable  = NewError("STORE_UNAVAILABLE", "document store unavailable", http.StatusServiceUnavailable, nil)
	ErrImportFailed      = NewError("IMPORT_FAILED", "product import failed", http.StatusBadGateway, nil)
	ErrCacheFull         = NewError("CACHE_FULL", "cache is full", http.StatusServiceUnavailable, nil)
	ErrCacheMiss         = NewError("CACHE_MISS", "cache miss", http.StatusNotFound, nil)
	ErrRateLimitExceeded = NewError("RATE_LIMIT_EXCEEDED", "request rate limit exceeded", http.StatusTooManyRequests, nil)
	ErrAIServiceDisabled = NewError("AI_SERVICE_DISABLED", "AI suggestions are disabled", http.StatusServiceUnavailable, nil)
)

// StatusFor maps an error to its HTTP status and body
func StatusFor(err error) (int, ErrorResponse) {
	var custom *CustomError
	switch {
	case err == nil:
		return http.StatusOK, ErrorResponse{}
	case IsValidationError(err):
		return http.StatusBadRequest, ErrorResponse{Code: ErrCodeInvalidRequest, Message: err.Error()}
	case errors.As(err, &custom):
		return custom.Status, ErrorResponse{Code: custom.Code, Message: custom.Message, Details: detailsOf(custom)}
	case IsTransportError(err):
		return http.StatusBadGateway, ErrorResponse{Code: ErrCodeBadGateway, Message: ErrGenerationFailed.Message, Details: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: ErrCodeInternalError, Message: ErrInternalError.Message, Details: err.Error()}
	}
}

func detailsOf(e *CustomError) string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
