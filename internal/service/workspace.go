package service

import (
	"log/slog"
	"time"

	"github.com/flowstate/flowstate-dashboard/internal/ports"
)

// Workspace is one client's isolated set of state and services.
type Workspace struct {
	State     *StateStore
	Auth      *AuthService
	Dashboard *DashboardService
}

// WorkspaceOptions groups dependencies for NewWorkspace.
type WorkspaceOptions struct {
	Storage    ports.Storage        // Required
	Backend    ports.BackendFactory // Required: receives the workspace's StateStore as token source
	DefaultTTL time.Duration
	Observer   Observer
	Logger     *slog.Logger
}

// NewWorkspace wires a StateStore, an AuthService, and a DashboardService around one storage namespace.
func NewWorkspace(opts WorkspaceOptions) *Workspace {
	state := NewStateStore(StateStoreOptions{
		Storage:    opts.Storage,
		DefaultTTL: opts.DefaultTTL,
		Logger:     opts.Logger,
	})
	backend := opts.Backend(state)
	auth := NewAuthService(AuthServiceOptions{
		Backend:  backend,
		State:    state,
		Observer: opts.Observer,
		Logger:   opts.Logger,
	})
	return &Workspace{
		State: state,
		Auth:  auth,
		Dashboard: NewDashboardService(DashboardServiceOptions{
			Backend:  backend,
			State:    state,
			Auth:     auth,
			Observer: opts.Observer,
			Logger:   opts.Logger,
		}),
	}
}

// WorkspaceFactoryOptions groups dependencies for WorkspaceFactory.
type WorkspaceFactoryOptions struct {
	Storage    ports.StorageProvider // Required
	Backend    ports.BackendFactory  // Required
	DefaultTTL time.Duration
	Observer   Observer
	Logger     *slog.Logger
}

// WorkspaceFactory builds a Workspace per storage namespace, such as one per browser.
type WorkspaceFactory struct {
	opts WorkspaceFactoryOptions
}

// NewWorkspaceFactory constructs a WorkspaceFactory.
func NewWorkspaceFactory(opts WorkspaceFactoryOptions) *WorkspaceFactory {
	return &WorkspaceFactory{opts: opts}
}

// Workspace returns the workspace for namespace. Workspaces are cheap and
// hold no state beyond what is in storage, so callers may build one per request.
func (f *WorkspaceFactory) Workspace(namespace string) *Workspace {
	return NewWorkspace(WorkspaceOptions{
		Storage:    f.opts.Storage.Namespace(namespace),
		Backend:    f.opts.Backend,
		DefaultTTL: f.opts.DefaultTTL,
		Observer:   f.opts.Observer,
		Logger:     f.opts.Logger,
	})
}
