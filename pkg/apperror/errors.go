package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Code returns the AppError code carried by err, or "" when err is not an AppError.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Error codes. Stable: clients and tests pin them.
const (
	CodeInvalidRequest     = "LED_001"
	CodeNotFound           = "LED_002"
	CodeConflict           = "LED_003"
	CodeInsufficientFunds  = "LED_004"
	CodePreconditionFailed = "LED_005"
	CodePayloadTooLarge    = "LED_006"

	CodeUnauthorized       = "AUTH_001"
	CodeInvalidCredentials = "AUTH_002"
	CodeInvalidToken       = "AUTH_003"
	CodeForbidden          = "AUTH_004"
	CodeUsernameExists     = "AUTH_005"

	CodeRateLimited = "RATE_001"
	CodeInternal    = "SYS_001"
)

// ---- Ledger (LED) ----

// InvalidRequest reports malformed or missing input.
func InvalidRequest(message string) *AppError {
	return New(CodeInvalidRequest, message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrConflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance", http.StatusPaymentRequired)
}

func ErrPreconditionFailed(message string) *AppError {
	return New(CodePreconditionFailed, message, http.StatusPreconditionFailed)
}

func ErrPayloadTooLarge() *AppError {
	return New(CodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge)
}

// ---- Authentication & authorization (AUTH) ----

func ErrUnauthorized() *AppError {
	return New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
}

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New(CodeForbidden, "Operation not permitted for this actor", http.StatusForbidden)
}

func ErrUsernameExists() *AppError {
	return New(CodeUsernameExists, "Username already exists", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}
