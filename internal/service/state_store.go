// Package service provides the FlowState client's auth and dashboard orchestration.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

const (
	defaultStateTTL = 24 * time.Hour
	// expiredStateTTL bounds how long a token whose exp has already passed is kept.
	expiredStateTTL = time.Minute
)

// StateStoreOptions groups dependencies for StateStore.
type StateStoreOptions struct {
	Storage ports.Storage // Required: durable client-side storage
	// DefaultTTL bounds how long a token without a readable expiry is kept.
	DefaultTTL time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

// StateStore holds one client's auth token and user profile in durable storage.
// Reads are open to anyone; only AuthService, in this package, writes.
type StateStore struct {
	storage    ports.Storage
	defaultTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

var _ ports.TokenSource = (*StateStore)(nil)

// NewStateStore constructs a StateStore.
func NewStateStore(opts StateStoreOptions) *StateStore {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = defaultStateTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &StateStore{
		storage:    opts.Storage,
		defaultTTL: opts.DefaultTTL,
		now:        opts.Now,
		logger:     opts.Logger.With("component", "state_store"),
	}
}

// Token returns the stored token, or "" when none is stored.
func (s *StateStore) Token(ctx context.Context) (string, error) {
	tok, ok, err := s.storage.Get(ctx, ports.KeyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return tok, nil
}

// Snapshot returns the current auth state. An unreadable stored profile is
// treated as absent.
func (s *StateStore) Snapshot(ctx context.Context) (domainauth.State, error) {
	var st domainauth.State

	tok, err := s.Token(ctx)
	if err != nil {
		return st, err
	}
	if tok != "" {
		st.Token = &tok
	}

	raw, ok, err := s.storage.Get(ctx, ports.KeyUser)
	if err != nil {
		return st, fmt.Errorf("read user: %w", err)
	}
	if !ok {
		return st, nil
	}
	var u domainauth.UserProfile
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable stored user profile", "error", err)
		return st, nil
	}
	st.User = &u
	return st, nil
}

// IsAuthenticated is a convenience over Snapshot for route guards.
func (s *StateStore) IsAuthenticated(ctx context.Context) (bool, error) {
	st, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return st.IsAuthenticated(), nil
}

func (s *StateStore) ttlFor(token string) time.Duration {
	ttl := domainauth.StorageTTL(token, s.now(), s.defaultTTL)
	if ttl <= 0 {
		return expiredStateTTL
	}
	return ttl
}

// setToken stores a new token and drops any profile stored with the previous
// one, so a token is never paired with another login's user.
func (s *StateStore) setToken(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := s.storage.Delete(ctx, ports.KeyUser); err != nil {
		return fmt.Errorf("clear previous user: %w", err)
	}
	if err := s.storage.Set(ctx, ports.KeyToken, token, s.ttlFor(token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *StateStore) setUser(ctx context.Context, token string, u domainauth.UserProfile) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, ports.KeyUser, string(data), s.ttlFor(token)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (s *StateStore) clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, ports.KeyToken, ports.KeyUser); err != nil {
		return fmt.Errorf("clear auth state: %w", err)
	}
	return nil
}
