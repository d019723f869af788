package errors

import (
	goerrors "errors"
	"fmt"
	"testing"

	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
)

type customErr struct{}

func (*customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error", err: apperrors.Unavailable("down", nil), want: "unavailable"},
		{name: "wrapped app error", err: fmt.Errorf("ctx: %w", apperrors.TokenInvalid(nil)), want: "token_invalid"},
		{name: "plain", err: goerrors.New("x"), want: "errors_errorstring"},
		{name: "wrapped custom", err: fmt.Errorf("outer: %w", &customErr{}), want: "errors_customerr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
