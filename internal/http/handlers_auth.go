package httpx

import (
	"net/http"
	"strings"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/http/validation"
)

const errMsgFixBelow = "Please fix the errors below."

//nolint:gochecknoglobals // static page metadata
var (
	loginMeta    = PageMeta{Title: "Log in - FlowState", PageTitle: "Log in", CurrentPage: PageLogin}
	registerMeta = PageMeta{
		Title:       "Create account - FlowState",
		PageTitle:   "Create an account",
		CurrentPage: PageRegister,
	}
)

// LoginPage renders the login form. Clients that are already authenticated go
// straight to the dashboard.
// GET /.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(r, h.logger()); ok {
		http.Redirect(w, r, PathDashboard, http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, NewTemplateData(r, loginMeta).Build())
}

// Login submits the login form. Success redirects to the dashboard; any
// failure re-renders the form with the generic "Invalid credentials" message.
// POST /.
func (h *UIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	creds := domainauth.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if _, err := ws.Auth.Login(r.Context(), creds); err != nil {
		data := NewTemplateData(r, loginMeta).
			WithError(apperrors.MsgInvalidCredentials).
			With("Username", creds.Username).
			Build()
		h.render(w, r, http.StatusUnauthorized, data)
		return
	}

	http.Redirect(w, r, PathDashboard, http.StatusSeeOther)
}

// RegisterPage renders the registration form.
// GET /register.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, NewTemplateData(r, registerMeta).Build())
}

// Register submits the registration form. Success sends the user to the login
// form without logging them in; failures show the backend's detail when it
// provided one.
// POST /register.
func (h *UIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	reg := domainauth.Registration{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	fv := validation.New().
		Validate("username", reg.Username, validation.Required("Username", 64)).
		Validate("email", reg.Email, validation.Optional("Email", 254), validation.Email("Email")).
		Validate("password", reg.Password, validation.Required("Password", 128))
	if !fv.Valid() {
		h.renderRegisterError(w, r, registerForm{reg: reg, status: http.StatusBadRequest, msg: errMsgFixBelow, fields: fv.Errors()})
		return
	}

	if err := ws.Auth.Register(r.Context(), reg); err != nil {
		status := http.StatusBadRequest
		if apperrors.IsUnavailable(err) {
			status = http.StatusBadGateway
		}
		h.renderRegisterError(w, r, registerForm{
			reg:    reg,
			status: status,
			msg:    apperrors.UserMessage(err, apperrors.MsgRegistrationFailed),
		})
		return
	}

	http.Redirect(w, r, PathLogin, http.StatusSeeOther)
}

type registerForm struct {
	reg    domainauth.Registration
	status int
	msg    string
	fields map[string]string
}

// renderRegisterError re-renders the form, keeping everything but the password.
func (h *UIHandlers) renderRegisterError(w http.ResponseWriter, r *http.Request, f registerForm) {
	data := NewTemplateData(r, registerMeta).
		WithError(f.msg).
		WithFieldErrors(f.fields).
		With("Username", f.reg.Username).
		With("Email", f.reg.Email).
		Build()
	h.render(w, r, f.status, data)
}

// Logout clears the client's local auth state. The backend is not contacted.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := ws.Auth.Logout(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
	}
	http.Redirect(w, r, PathLogin, http.StatusSeeOther)
}
