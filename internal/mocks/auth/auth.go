package auth

// Package auth contains simple hand-written test doubles for the backend port.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	"github.com/flowstate/flowstate-dashboard/internal/domain/focus"
	"github.com/flowstate/flowstate-dashboard/internal/domain/model"
	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.Backend = (*FakeBackend)(nil)

// StatusError mimics a backend HTTP error for tests that do not go through the real client.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// ErrorDetail returns the backend-provided detail message.
func (e *StatusError) ErrorDetail() string { return e.Detail }

// ErrUnauthorized is returned, wrapped as a token_invalid AppError, for calls without a known token.
var ErrUnauthorized = &StatusError{Status: 401, Detail: "Could not validate credentials"}

// Server is an in-memory FlowState backend shared by any number of bound clients.
type Server struct {
	mu       sync.Mutex
	nextID   int
	users    map[string]fakeUser
	tokens   map[string]string
	sessions map[string][]focus.Session

	// FailSessions makes ListSessions return this error when set.
	FailSessions error
	// FailCurrentUser makes CurrentUser return this error when set.
	FailCurrentUser error
	// FailRegister makes Register return this error when set.
	FailRegister error
}

type fakeUser struct {
	profile  domainauth.UserProfile
	password string
}

// NewServer creates an empty fake backend.
func NewServer() *Server {
	return &Server{
		users:    make(map[string]fakeUser),
		tokens:   make(map[string]string),
		sessions: make(map[string][]focus.Session),
	}
}

// AddUser registers a user directly and returns its profile.
func (s *Server) AddUser(username, password string) domainauth.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, "", password)
}

func (s *Server) addUserLocked(username, email, password string) domainauth.UserProfile {
	s.nextID++
	p := domainauth.UserProfile{
		ID:        s.nextID,
		Username:  username,
		CreatedAt: model.Timestamp{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	if email != "" {
		p.Email = &email
	}
	s.users[username] = fakeUser{profile: p, password: password}
	return p
}

// AddSessions appends sessions for a user.
func (s *Server) AddSessions(username string, sessions ...focus.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[username] = append(s.sessions[username], sessions...)
}

// RevokeAll forgets every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// Bind returns a Backend that authenticates with tokens.
func (s *Server) Bind(tokens ports.TokenSource) ports.Backend {
	return &FakeBackend{server: s, tokens: tokens}
}

// Factory adapts Bind to ports.BackendFactory.
func (s *Server) Factory() ports.BackendFactory {
	return s.Bind
}

// FakeBackend is a client view of Server bound to one token source.
type FakeBackend struct {
	server *Server
	tokens ports.TokenSource
}

func (b *FakeBackend) Authenticate(_ context.Context, creds domainauth.Credentials) (string, error) {
	s := b.server
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[creds.Username]
	if !ok || u.password != creds.Password {
		return "", &StatusError{Status: 401, Detail: "Incorrect username or password"}
	}
	token := "token-" + creds.Username + "-" + strconv.Itoa(len(s.tokens)+1)
	s.tokens[token] = creds.Username
	return token, nil
}

func (b *FakeBackend) Register(_ context.Context, reg domainauth.Registration) error {
	if err := b.server.FailRegister; err != nil {
		return err
	}
	s := b.server
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[reg.Username]; exists {
		return &StatusError{Status: 400, Detail: "Username already registered"}
	}
	s.addUserLocked(reg.Username, reg.Email, reg.Password)
	return nil
}

func (b *FakeBackend) CurrentUser(ctx context.Context) (domainauth.UserProfile, error) {
	if err := b.server.FailCurrentUser; err != nil {
		return domainauth.UserProfile{}, err
	}
	username, err := b.caller(ctx)
	if err != nil {
		return domainauth.UserProfile{}, err
	}

	b.server.mu.Lock()
	defer b.server.mu.Unlock()
	return b.server.users[username].profile, nil
}

func (b *FakeBackend) ListSessions(ctx context.Context) ([]focus.Session, error) {
	if err := b.server.FailSessions; err != nil {
		return nil, err
	}
	username, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}

	b.server.mu.Lock()
	defer b.server.mu.Unlock()
	out := make([]focus.Session, len(b.server.sessions[username]))
	copy(out, b.server.sessions[username])
	return out, nil
}

func (b *FakeBackend) caller(ctx context.Context) (string, error) {
	if b.tokens == nil {
		return "", apperrors.TokenInvalid(ErrUnauthorized)
	}
	token, err := b.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	b.server.mu.Lock()
	defer b.server.mu.Unlock()
	username, ok := b.server.tokens[token]
	if !ok {
		return "", apperrors.TokenInvalid(ErrUnauthorized)
	}
	return username, nil
}
