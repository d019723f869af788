package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
)

// APIHandlers serves the JSON endpoints used by scripts and the browser.
type APIHandlers struct {
	Logger *slog.Logger
}

func (h *APIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// StateResponse is the body of GET /api/state.
type StateResponse struct {
	Authenticated bool                    `json:"authenticated"`
	User          *domainauth.UserProfile `json:"user"`
}

// State reports the client's auth state. The token itself is never exposed.
// GET /api/state.
func (h *APIHandlers) State(w http.ResponseWriter, r *http.Request) {
	ws, ok := WorkspaceFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, StateResponse{})
		return
	}
	st, err := ws.State.Snapshot(r.Context())
	if err != nil {
		h.logger().WarnContext(r.Context(), "client state unavailable", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: string(apperrors.ErrCodeUnavailable),
			Err:     errors.New("client state unavailable"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, StateResponse{Authenticated: st.IsAuthenticated(), User: st.User})
}

// Dashboard returns the aggregated dashboard for the authenticated client.
// GET /api/dashboard.
func (h *APIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := WorkspaceFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: string(apperrors.ErrCodeInternal), Err: errNoWorkspace})
		return
	}

	d, err := ws.Dashboard.Load(r.Context())
	switch {
	case apperrors.IsTokenInvalid(err):
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: string(apperrors.ErrCodeTokenInvalid),
			Err:     errors.New(apperrors.UserMessage(err, "authentication required")),
		})
	case err != nil:
		h.logger().ErrorContext(r.Context(), "dashboard load failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusServiceUnavailable,
			ErrCode: string(apperrors.ErrCodeUnavailable),
			Err:     errors.New("dashboard unavailable"),
		})
	default:
		WriteJSON(w, http.StatusOK, d)
	}
}
