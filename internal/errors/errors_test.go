package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeValidation,
				Message: "username is required",
			},
			want: "username is required",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeUnavailable,
				Message: "backend unreachable",
				Cause:   errors.New("connection refused"),
			},
			want: "backend unreachable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestAuth_UsesGenericMessage(t *testing.T) {
	cause := errors.New("401: Incorrect username or password")
	err := Auth(cause)

	if err.Code != ErrCodeAuth {
		t.Errorf("Auth().Code = %v, want %v", err.Code, ErrCodeAuth)
	}
	if err.Message != MsgInvalidCredentials {
		t.Errorf("Auth().Message = %q, want %q", err.Message, MsgInvalidCredentials)
	}
	if !errors.Is(err, cause) {
		t.Error("Auth() should keep the cause for errors.Is")
	}
}

func TestRegistration(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		want   string
	}{
		{name: "backend detail", detail: "Username already registered", want: "Username already registered"},
		{name: "no detail", detail: "", want: MsgRegistrationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Registration(tt.detail, nil)
			if err.Code != ErrCodeRegistration {
				t.Errorf("Registration().Code = %v, want %v", err.Code, ErrCodeRegistration)
			}
			if err.Message != tt.want {
				t.Errorf("Registration().Message = %q, want %q", err.Message, tt.want)
			}
		})
	}
}

func TestIsChecks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "auth", err: Auth(nil), check: IsAuth, want: true},
		{name: "registration", err: Registration("", nil), check: IsRegistration, want: true},
		{name: "token invalid", err: TokenInvalid(nil), check: IsTokenInvalid, want: true},
		{name: "unavailable", err: Unavailable("down", nil), check: IsUnavailable, want: true},
		{name: "validation wrapped in auth", err: Auth(Validation("bad")), check: IsAuth, want: true},
		{name: "wrapped token invalid", err: fmt.Errorf("list sessions: %w", TokenInvalid(nil)), check: IsTokenInvalid, want: true},
		{name: "different code", err: Auth(nil), check: IsRegistration, want: false},
		{name: "plain error", err: errors.New("plain"), check: IsAuth, want: false},
		{name: "unavailable inside registration", err: Registration("", fmt.Errorf("register: %w", Unavailable("down", nil))), check: IsUnavailable, want: true},
		{name: "unavailable inside registration is still registration", err: Registration("", Unavailable("down", nil)), check: IsRegistration, want: true},
		{name: "token invalid inside auth", err: Auth(fmt.Errorf("fetch profile: %w", TokenInvalid(nil))), check: IsTokenInvalid, want: true},
		{name: "no matching code in chain", err: Auth(Validation("bad")), check: IsUnavailable, want: false},
		{name: "nil", err: nil, check: IsAuth, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(fmt.Errorf("ctx: %w", Unavailable("down", nil))); got != ErrCodeUnavailable {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeUnavailable)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(fmt.Errorf("wrap: %w", Registration("Email already registered", nil)), "fallback"); got != "Email already registered" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("raw"), "fallback"); got != "fallback" {
		t.Errorf("UserMessage(plain) = %q, want fallback", got)
	}
}
