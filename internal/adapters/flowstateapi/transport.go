package flowstateapi

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// bearerTransport attaches the stored token, when there is one, to every request.
type bearerTransport struct {
	base   http.RoundTripper
	tokens ports.TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}
	token, err := t.tokens.Token(req.Context())
	if err != nil {
		closeRequestBody(req)
		return nil, fmt.Errorf("read stored token: %w", err)
	}
	if token == "" {
		return t.base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(clone)
	return t.base.RoundTrip(clone)
}

func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
