package ports

// Package ports defines interfaces (hexagonal ports) for the FlowState client.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	"github.com/flowstate/flowstate-dashboard/internal/domain/focus"
)

// Backend is the external FlowState API. Every call is attempted once and
// carries the stored bearer token when one is present.
type Backend interface {
	// Authenticate exchanges credentials for an access token.
	Authenticate(ctx context.Context, creds domainauth.Credentials) (string, error)

	// Register creates a new account. It does not log the user in.
	Register(ctx context.Context, reg domainauth.Registration) error

	// CurrentUser returns the profile of the token holder.
	CurrentUser(ctx context.Context) (domainauth.UserProfile, error)

	// ListSessions returns the token holder's focus sessions in backend order.
	ListSessions(ctx context.Context) ([]focus.Session, error)
}

// TokenSource yields the bearer token to attach to backend requests.
// An empty string means no token is stored.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// BackendFactory builds a Backend whose requests authenticate with tokens.
type BackendFactory func(tokens TokenSource) Backend
