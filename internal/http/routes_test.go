package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/observability/metrics"
	"github.com/flowstate/flowstate-dashboard/internal/testutil"
)

func TestRouter_RequiresWorkspaces(t *testing.T) {
	_, err := NewRouter(RouterServices{})
	require.Error(t, err)
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()

	res := b.getJSON("/healthz")
	assert.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body)
	assert.Empty(t, b.cookie(DefaultClientCookieName), "health checks must not allocate client namespaces")
}

func TestRouter_LoginPageAssignsClientNamespace(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()

	res := b.get(PathLogin)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, `action="/"`)
	assert.Contains(t, res.Body, `name="csrf_token"`)

	ns := b.cookie(DefaultClientCookieName)
	_, err := uuid.Parse(ns)
	require.NoError(t, err, "client cookie should hold a UUID")

	b.get(PathLogin)
	assert.Equal(t, ns, b.cookie(DefaultClientCookieName), "namespace must be stable across requests")
}

func TestRouter_LoginSuccessShowsDashboard(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	app.backend.AddSessions("ana",
		testutil.NewSession().WithID(1).WithDuration(120*time.Second).WithLookAways(3).WithTask("write report").Build(),
		testutil.NewSession().WithID(2).WithDuration(60*time.Second).WithLookAways(1).Build(),
	)
	b := app.browser()

	res := b.login("ana", "pw")
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, PathDashboard, res.Header.Get("Location"))

	res = b.get(PathDashboard)
	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, ContainsAll(res.Body, []string{
		"Welcome back, ana",
		"write report",
		"Untitled Session",
		"Log out",
	}), res.Body)

	// Already authenticated clients skip the login form.
	res = b.get(PathLogin)
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, PathDashboard, res.Header.Get("Location"))
}

func TestRouter_LoginFailureShowsGenericMessage(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	b := app.browser()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "ana", password: "nope"},
		{name: "unknown user", username: "bob", password: "pw"},
		{name: "empty fields", username: "", password: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := b.login(tt.username, tt.password)
			assert.Equal(t, http.StatusUnauthorized, res.Status)
			assert.Contains(t, res.Body, "Invalid credentials")
			assert.NotContains(t, res.Body, "Incorrect username or password")
		})
	}

	res := b.get(PathDashboard)
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, PathLogin, res.Header.Get("Location"))
}

func TestRouter_DashboardGuardRedirectsAnonymous(t *testing.T) {
	app := newTestApp(t)

	res := app.browser().get(PathDashboard)
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, PathLogin, res.Header.Get("Location"))
}

func TestRouter_RegisterThenLogin(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()

	res := b.postForm(PathRegister, url.Values{
		"username": {"ana"},
		"email":    {"ana@example.com"},
		"password": {"pw"},
	})
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, PathLogin, res.Header.Get("Location"))

	// Registration does not log in.
	res = b.getJSON("/api/state")
	assert.JSONEq(t, `{"authenticated":false,"user":null}`, res.Body)

	res = b.login("ana", "pw")
	assert.Equal(t, http.StatusSeeOther, res.Status)
}

func TestRouter_RegisterFailures(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("taken", "pw")
	b := app.browser()

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "backend detail surfaced",
			form:       url.Values{"username": {"taken"}, "email": {"t@example.com"}, "password": {"pw"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"Username already registered", `value="taken"`},
		},
		{
			name:       "missing username",
			form:       url.Values{"username": {" "}, "password": {"pw"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{errMsgFixBelow, "Username is required."},
		},
		{
			name:       "invalid email",
			form:       url.Values{"username": {"ana"}, "email": {"not-an-email"}, "password": {"pw"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   []string{"Enter a valid email address."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := b.postForm(PathRegister, tt.form)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.True(t, ContainsAll(res.Body, tt.wantBody), res.Body)
			assert.NotContains(t, res.Body, `value="pw"`, "password must not be echoed")
		})
	}
}

func TestRouter_RegisterBackendUnreachable(t *testing.T) {
	app := newTestApp(t)
	app.backend.FailRegister = apperrors.Unavailable("backend unreachable",
		fmt.Errorf("register: %w", errors.New("dial tcp 127.0.0.1:1: connection refused")))
	b := app.browser()

	res := b.postForm(PathRegister, url.Values{
		"username": {"ana"},
		"email":    {"ana@example.com"},
		"password": {"pw"},
	})
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.Contains(t, res.Body, apperrors.MsgRegistrationFailed)
	assert.Contains(t, res.Body, `value="ana"`)
	assert.NotContains(t, res.Body, "connection refused")
}

func TestRouter_LogoutClearsState(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	b := app.browser()
	require.Equal(t, http.StatusSeeOther, b.login("ana", "pw").Status)

	res := b.postForm(PathLogout, nil)
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, PathLogin, res.Header.Get("Location"))

	res = b.getJSON("/api/state")
	assert.JSONEq(t, `{"authenticated":false,"user":null}`, res.Body)
	assert.Equal(t, http.StatusSeeOther, b.get(PathDashboard).Status)
}

func TestRouter_CSRFRejectsPostWithoutToken(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	b := app.browser()
	b.get(PathLogin)

	res := b.postRaw(PathLogin, url.Values{"username": {"ana"}, "password": {"pw"}})
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = b.postRaw(PathLogin, url.Values{"username": {"ana"}, "password": {"pw"}, DefaultCSRFFormField: {"forged"}})
	assert.Equal(t, http.StatusForbidden, res.Status)
}

func TestRouter_APIState(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	b := app.browser()

	res := b.getJSON("/api/state")
	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{"authenticated":false,"user":null}`, res.Body)

	require.Equal(t, http.StatusSeeOther, b.login("ana", "pw").Status)

	res = b.getJSON("/api/state")
	require.Equal(t, http.StatusOK, res.Status)
	var body StateResponse
	require.NoError(t, json.Unmarshal([]byte(res.Body), &body))
	assert.True(t, body.Authenticated)
	require.NotNil(t, body.User)
	assert.Equal(t, "ana", body.User.Username)
	assert.NotContains(t, res.Body, "token")
}

func TestRouter_APIDashboard(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	app.backend.AddSessions("ana", testutil.Sessions(3)...)
	b := app.browser()

	res := b.getJSON("/api/dashboard")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Contains(t, res.Body, "authentication_required")

	require.Equal(t, http.StatusSeeOther, b.login("ana", "pw").Status)

	res = b.getJSON("/api/dashboard")
	require.Equal(t, http.StatusOK, res.Status)
	var body struct {
		Summary struct {
			SessionCount      int     `json:"session_count"`
			TotalFocusMinutes float64 `json:"total_focus_minutes"`
		} `json:"summary"`
		Bars []json.RawMessage `json:"bars"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Body), &body))
	assert.Equal(t, 3, body.Summary.SessionCount)
	assert.InDelta(t, 6.0, body.Summary.TotalFocusMinutes, 0.001)
	assert.Len(t, body.Bars, 3)
}

func TestRouter_RevokedTokenRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	b := app.browser()
	require.Equal(t, http.StatusSeeOther, b.login("ana", "pw").Status)

	app.backend.RevokeAll()

	res := b.get(PathDashboard)
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, PathLogin, res.Header.Get("Location"))

	res = b.getJSON("/api/state")
	assert.JSONEq(t, `{"authenticated":false,"user":null}`, res.Body)
}

func TestRouter_SessionFetchFailureRendersEmptyDashboard(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")
	b := app.browser()
	require.Equal(t, http.StatusSeeOther, b.login("ana", "pw").Status)

	app.backend.FailSessions = errors.New("connection reset")

	res := b.get(PathDashboard)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Sessions could not be loaded")
	assert.Contains(t, res.Body, "No sessions yet")
}

func TestRouter_ClientsAreIsolated(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddUser("ana", "pw")

	first := app.browser()
	require.Equal(t, http.StatusSeeOther, first.login("ana", "pw").Status)

	second := app.browser()
	assert.Equal(t, http.StatusSeeOther, second.get(PathDashboard).Status)
	assert.NotEqual(t, first.cookie(DefaultClientCookieName), second.cookie(DefaultClientCookieName))
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()

	res := b.get("/nope")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Contains(t, res.Body, "does not exist")

	res = b.getJSON("/api/nope")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Contains(t, res.Body, "not_found")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	app := newTestApp(t)
	b := app.browser()

	res := b.postForm(PathDashboard, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, res.Status)
}

func TestRouter_StaticAssets(t *testing.T) {
	app := newTestApp(t)

	res := app.browser().get("/static/css/app.css")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "public, max-age=3600", res.Header.Get("Cache-Control"))
	assert.True(t, strings.Contains(res.Body, ".bar-chart"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	rec := metrics.New()
	app := newTestApp(t, withMetrics(rec.Handler(), "/metrics"))
	app.backend.AddUser("ana", "pw")

	b := app.browser()
	b.login("ana", "nope")

	res := b.getJSON("/metrics")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "go_goroutines")
}
