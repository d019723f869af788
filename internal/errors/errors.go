package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeAuth indicates a login attempt was rejected or could not be completed.
	ErrCodeAuth ErrorCode = "auth"
	// ErrCodeRegistration indicates the backend refused to create an account.
	ErrCodeRegistration ErrorCode = "registration"
	// ErrCodeTokenInvalid indicates the backend no longer accepts the stored token.
	ErrCodeTokenInvalid ErrorCode = "token_invalid"
	// ErrCodeUnavailable indicates the backend or client storage could not be reached.
	ErrCodeUnavailable ErrorCode = "unavailable"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an unexpected client-side failure.
	ErrCodeInternal ErrorCode = "internal"
)

// Generic user-facing messages for auth failures.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgRegistrationFailed = "Registration failed. Please check the backend connection."
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message, safe to show to the user
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Auth creates an AuthError carrying the generic "Invalid credentials" message.
// The cause is kept for logging but never rendered.
func Auth(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeAuth,
		Message: MsgInvalidCredentials,
		Cause:   cause,
	}
}

// Registration creates a RegistrationError. An empty detail falls back to the
// generic registration failure message.
func Registration(detail string, cause error) *AppError {
	if detail == "" {
		detail = MsgRegistrationFailed
	}
	return &AppError{
		Code:    ErrCodeRegistration,
		Message: detail,
		Cause:   cause,
	}
}

// TokenInvalid creates a TokenInvalid error.
func TokenInvalid(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeTokenInvalid,
		Message: "session expired, please log in again",
		Cause:   cause,
	}
}

// Unavailable creates a new Unavailable error.
func Unavailable(message string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: message,
		Cause:   cause,
	}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// isCode reports whether any AppError in err's chain carries code. Outer
// AppErrors do not hide the codes of the AppErrors they wrap.
func isCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsAuth checks if an error is an AuthError.
func IsAuth(err error) bool {
	return isCode(err, ErrCodeAuth)
}

// IsRegistration checks if an error is a RegistrationError.
func IsRegistration(err error) bool {
	return isCode(err, ErrCodeRegistration)
}

// IsTokenInvalid checks if an error is a TokenInvalid error.
func IsTokenInvalid(err error) bool {
	return isCode(err, ErrCodeTokenInvalid)
}

// IsUnavailable checks if an error is an Unavailable error.
func IsUnavailable(err error) bool {
	return isCode(err, ErrCodeUnavailable)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// UserMessage returns the message safe to show to a user. Non-AppErrors fall
// back to the provided default.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
