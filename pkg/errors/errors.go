package errors

import "fmt"

// AppError represents a custom application error
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeInvalidCredential = "INVALID_CREDENTIAL"
	ErrCodeFailedDecoding    = "FAILED_DECODING"
	ErrCodeTokenReused       = "TOKEN_REUSED"
	ErrCodeTokenRevoked      = "TOKEN_REVOKED"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeEmailTaken        = "EMAIL_TAKEN"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
)

// NewAppError creates a new application error
func NewAppError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Common errors. ErrInvalidCredential deliberately carries the same code
// and message for an unknown email and a wrong password, so callers cannot
// enumerate accounts.
var (
	ErrInvalidCredential = NewAppError(ErrCodeInvalidCredential, "Invalid email or password", 401)
	ErrFailedDecoding    = NewAppError(ErrCodeFailedDecoding, "Token could not be decoded", 401)
	ErrTokenReused       = NewAppError(ErrCodeTokenReused, "Refresh token has already been used", 401)
	ErrTokenRevoked      = NewAppError(ErrCodeTokenRevoked, "Token revoked", 401)
	ErrTokenExpired      = NewAppError(ErrCodeTokenExpired, "Token expired", 401)
	ErrEmailTaken        = NewAppError(ErrCodeEmailTaken, "Email is already registered", 409)
	ErrRateLimitExceeded = NewAppError(ErrCodeRateLimitExceeded, "Too many login attempts", 429)
	ErrUnauthorized      = NewAppError(ErrCodeUnauthorized, "Unauthorized", 401)
	ErrForbidden         = NewAppError(ErrCodeForbidden, "Forbidden", 403)
	ErrNotFound          = NewAppError(ErrCodeNotFound, "Not found", 404)
)
