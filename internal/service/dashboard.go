package service

import (
	"context"
	"errors"
	"log/slog"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	"github.com/flowstate/flowstate-dashboard/internal/domain/focus"
	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Backend  ports.Backend // Required
	State    *StateStore   // Required
	Auth     *AuthService  // Required: invalidates state on token rejection
	Observer Observer      // Optional
	Logger   *slog.Logger  // Optional
}

// DashboardService loads the user's sessions and summarizes them.
type DashboardService struct {
	backend  ports.Backend
	state    *StateStore
	auth     *AuthService
	observer Observer
	logger   *slog.Logger
}

// NewDashboardService constructs a new DashboardService.
func NewDashboardService(opts DashboardServiceOptions) *DashboardService {
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &DashboardService{
		backend:  opts.Backend,
		state:    opts.State,
		auth:     opts.Auth,
		observer: opts.Observer,
		logger:   opts.Logger.With("component", "dashboard_service"),
	}
}

// Dashboard is everything the dashboard view renders.
type Dashboard struct {
	User    domainauth.UserProfile `json:"user"`
	Summary focus.Summary          `json:"summary"`
	Bars    []focus.Bar            `json:"bars"`
	// SessionsUnavailable is set when sessions could not be loaded and the
	// summary was computed over an empty list.
	SessionsUnavailable bool `json:"sessions_unavailable"`
}

// Load builds the dashboard for the current user. Sessions are fetched fresh
// on every call. A failed fetch is logged and yields an empty dashboard, except
// when the backend rejects the token: local state is then cleared and a
// token_invalid error returned. Callers must only call Load for authenticated clients.
func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	st, err := s.state.Snapshot(ctx)
	if err != nil {
		s.observer.ObserveDashboard(err)
		return nil, apperrors.Unavailable("client state unavailable", err)
	}
	if !st.IsAuthenticated() {
		err = apperrors.TokenInvalid(errors.New("not authenticated"))
		s.observer.ObserveDashboard(err)
		return nil, err
	}

	d := &Dashboard{User: *st.User}

	sessions, err := s.backend.ListSessions(ctx)
	switch {
	case apperrors.IsTokenInvalid(err):
		s.observer.ObserveDashboard(err)
		if clearErr := s.auth.Invalidate(ctx, err); clearErr != nil {
			s.logger.WarnContext(ctx, "failed to clear rejected token", "error", clearErr)
		}
		return nil, err
	case err != nil:
		s.logger.WarnContext(ctx, "Failed to load sessions", "error", err)
		d.SessionsUnavailable = true
		sessions = nil
	}

	d.Summary = focus.Summarize(sessions)
	d.Bars = focus.ChartBars(d.Summary.TrendWindow)
	s.observer.ObserveDashboard(err)
	return d, nil
}
