package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/observability/metrics"
	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// Observer receives auth and dashboard outcomes. *metrics.Recorder implements it.
type Observer interface {
	ObserveAuth(event string, err error)
	ObserveDashboard(err error)
}

type noopObserver struct{}

func (noopObserver) ObserveAuth(string, error) {}
func (noopObserver) ObserveDashboard(error)    {}

// detailer is implemented by backend errors that carry a user-facing message.
type detailer interface {
	ErrorDetail() string
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Backend  ports.Backend // Required: should authenticate with State as its token source
	State    *StateStore   // Required
	Observer Observer      // Optional
	Logger   *slog.Logger  // Optional
}

// AuthService orchestrates login and registration against the backend and is
// the only writer of the StateStore.
type AuthService struct {
	backend  ports.Backend
	state    *StateStore
	observer Observer
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AuthService{
		backend:  opts.Backend,
		state:    opts.State,
		observer: opts.Observer,
		logger:   opts.Logger.With("component", "auth_service"),
	}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token string
	User  domainauth.UserProfile
}

// Login exchanges credentials for a token, stores it, then fetches and stores
// the user profile. Every failure is reported as an AuthError with the generic
// "Invalid credentials" message. If the profile fetch fails the token stays
// stored and the client remains unauthenticated.
func (s *AuthService) Login(ctx context.Context, creds domainauth.Credentials) (*LoginResult, error) {
	res, err := s.login(ctx, creds)
	s.observer.ObserveAuth(metrics.EventLogin, err)
	if err != nil {
		s.logger.InfoContext(ctx, "login failed", "username", creds.Username, "error", err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "login succeeded", "username", res.User.Username, "user_id", res.User.ID)
	return res, nil
}

func (s *AuthService) login(ctx context.Context, creds domainauth.Credentials) (*LoginResult, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, apperrors.Auth(apperrors.Validation("username and password are required"))
	}

	token, err := s.backend.Authenticate(ctx, creds)
	if err != nil {
		return nil, apperrors.Auth(fmt.Errorf("authenticate: %w", err))
	}
	if err := s.state.setToken(ctx, token); err != nil {
		return nil, apperrors.Auth(err)
	}

	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		return nil, apperrors.Auth(fmt.Errorf("fetch profile: %w", err))
	}
	if err := s.state.setUser(ctx, token, user); err != nil {
		return nil, apperrors.Auth(err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// Register creates an account. It never touches local state and does not log
// the user in. Failures are RegistrationErrors carrying the backend detail
// verbatim when present.
func (s *AuthService) Register(ctx context.Context, reg domainauth.Registration) error {
	err := s.register(ctx, reg)
	s.observer.ObserveAuth(metrics.EventRegister, err)
	if err != nil {
		s.logger.InfoContext(ctx, "registration failed", "username", reg.Username, "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "registration succeeded", "username", reg.Username)
	return nil
}

func (s *AuthService) register(ctx context.Context, reg domainauth.Registration) error {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Username == "" || reg.Password == "" {
		return apperrors.Registration("", apperrors.Validation("username and password are required"))
	}

	if err := s.backend.Register(ctx, reg); err != nil {
		var d detailer
		detail := ""
		if errors.As(err, &d) {
			detail = d.ErrorDetail()
		}
		return apperrors.Registration(detail, err)
	}
	return nil
}

// Logout clears the locally stored token and profile. The backend is not contacted.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.state.clear(ctx)
	s.observer.ObserveAuth(metrics.EventLogout, err)
	return err
}

// Invalidate clears local auth state after the backend rejected the stored token.
func (s *AuthService) Invalidate(ctx context.Context, cause error) error {
	err := s.state.clear(ctx)
	s.observer.ObserveAuth(metrics.EventInvalidate, err)
	s.logger.InfoContext(ctx, "stored token rejected by backend, auth state cleared", "cause", cause)
	return err
}
