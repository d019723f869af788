package auth

// Package auth contains domain-level types for client authentication state.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/flowstate/flowstate-dashboard/internal/domain/model"
)

// Credentials are submitted once to obtain a token and never persisted.
type Credentials struct {
	Username string
	Password string
}

// Registration carries the fields needed to create a backend account.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserProfile is the authenticated user's profile as returned by the backend.
type UserProfile struct {
	ID        int             `json:"id"`
	Username  string          `json:"username"`
	Email     *string         `json:"email,omitempty"`
	CreatedAt model.Timestamp `json:"created_at"`
}

// DisplayEmail returns the email or an empty string when the backend omitted it.
func (u UserProfile) DisplayEmail() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// State is the client's current authentication state. A nil Token or User means absent.
type State struct {
	Token *string
	User  *UserProfile
}

// IsAuthenticated reports whether both a token and a user profile are present.
// It is always derived and never stored.
func (s State) IsAuthenticated() bool {
	return s.Token != nil && *s.Token != "" && s.User != nil
}

// HasToken reports whether a token is present, regardless of the profile.
func (s State) HasToken() bool { return s.Token != nil && *s.Token != "" }

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// ok is false for opaque tokens or tokens without exp. The result is only used
// to bound how long local storage keeps the token.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// StorageTTL returns how long a token should be retained locally. Tokens with a
// future exp claim keep until expiry; all others use fallback. An already
// expired token yields zero.
func StorageTTL(token string, now time.Time, fallback time.Duration) time.Duration {
	exp, ok := TokenExpiry(token)
	if !ok {
		return fallback
	}
	if ttl := exp.Sub(now); ttl > 0 {
		return ttl
	}
	return 0
}
