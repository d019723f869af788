package httpx

import (
	"context"
	"errors"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	"github.com/flowstate/flowstate-dashboard/internal/service"
)

var errNoWorkspace = errors.New("no client workspace on request")

// Unexported context key types avoid collisions across packages.
type (
	workspaceKey struct{}
	namespaceKey struct{}
	userKey      struct{}
)

// SetWorkspaceInContext returns a child context carrying the client's workspace and namespace.
func SetWorkspaceInContext(ctx context.Context, namespace string, ws *service.Workspace) context.Context {
	if ws == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, namespaceKey{}, namespace)
	return context.WithValue(ctx, workspaceKey{}, ws)
}

// WorkspaceFromContext returns the workspace attached by ClientSession.
func WorkspaceFromContext(ctx context.Context) (*service.Workspace, bool) {
	ws, ok := ctx.Value(workspaceKey{}).(*service.Workspace)
	return ws, ok && ws != nil
}

// NamespaceFromContext returns the storage namespace of the current client, or "".
func NamespaceFromContext(ctx context.Context) string {
	ns, _ := ctx.Value(namespaceKey{}).(string)
	return ns
}

// SetUserInContext returns a child context that carries the authenticated user.
// If user is nil, the original ctx is returned unchanged.
func SetUserInContext(ctx context.Context, user *domainauth.UserProfile) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user set by RequireAuthBrowser.
func UserFromContext(ctx context.Context) (*domainauth.UserProfile, bool) {
	u, ok := ctx.Value(userKey{}).(*domainauth.UserProfile)
	return u, ok && u != nil
}
