package httpx

import (
	"net/http"

	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/http/ui/viewmodel"
)

//nolint:gochecknoglobals // static page metadata
var dashboardMeta = PageMeta{Title: "Dashboard - FlowState", PageTitle: "Your focus", CurrentPage: PageDashboard}

// Dashboard renders the session summary for the authenticated user. A token
// rejected by the backend clears local state and sends the user back to login.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	d, err := ws.Dashboard.Load(r.Context())
	if err != nil {
		if apperrors.IsTokenInvalid(err) {
			http.Redirect(w, r, PathLogin, http.StatusSeeOther)
			return
		}
		h.logger().ErrorContext(r.Context(), "dashboard load failed", "error", err)
		data := NewTemplateData(r, dashboardMeta).
			WithError("Your dashboard is unavailable right now. Please try again.").
			Build()
		h.render(w, r, http.StatusServiceUnavailable, data)
		return
	}

	data := NewTemplateData(r, dashboardMeta).
		With("Dashboard", viewmodel.NewDashboard(d)).
		Build()
	h.render(w, r, http.StatusOK, data)
}
