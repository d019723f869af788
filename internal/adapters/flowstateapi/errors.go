package flowstateapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTokenInvalid matches any 401 returned for a request that carried a stored token.
var ErrTokenInvalid = errors.New("flowstate api: token invalid")

// APIError is a non-2xx backend response.
type APIError struct {
	Op     string
	Status int
	// Detail is the user-facing message extracted from the response body, if any.
	Detail string
	// authenticated is set when the request carried a bearer token.
	authenticated bool
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

// ErrorDetail returns the backend-provided detail message.
func (e *APIError) ErrorDetail() string { return e.Detail }

// Is reports ErrTokenInvalid for unauthorized responses to authenticated requests.
func (e *APIError) Is(target error) bool {
	return target == ErrTokenInvalid && e.Status == http.StatusUnauthorized && e.authenticated
}
