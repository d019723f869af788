package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(GetCSRFToken(r)))
	}))
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	resp := w.Result()
	defer resp.Body.Close()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCSRFProtection_GetIssuesCookie(t *testing.T) {
	w := httptest.NewRecorder()
	csrfTestHandler(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	c := findCookie(t, w, DefaultCSRFCookieName)
	require.NotNil(t, c, "CSRF cookie not set")
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.False(t, c.Secure)
	assert.Equal(t, c.Value, w.Body.String(), "token exposed to handlers via context")
}

func TestCSRFProtection_ReusesExistingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "existing"})
	w := httptest.NewRecorder()

	csrfTestHandler(t).ServeHTTP(w, req)

	assert.Nil(t, findCookie(t, w, DefaultCSRFCookieName), "cookie should not be reissued")
	assert.Equal(t, "existing", w.Body.String())
}

func TestCSRFProtection_SecureBehindTLSProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "http, https")
	w := httptest.NewRecorder()

	csrfTestHandler(t).ServeHTTP(w, req)

	c := findCookie(t, w, DefaultCSRFCookieName)
	require.NotNil(t, c)
	assert.True(t, c.Secure)
}

func TestCSRFProtection_Validation(t *testing.T) {
	const token = "cookie-token"

	tests := []struct {
		name        string
		method      string
		header      string
		form        url.Values
		contentType string
		wantStatus  int
	}{
		{name: "post without token", method: http.MethodPost, wantStatus: http.StatusForbidden},
		{name: "post with header", method: http.MethodPost, header: token, wantStatus: http.StatusOK},
		{name: "post with wrong header", method: http.MethodPost, header: "other", wantStatus: http.StatusForbidden},
		{
			name:        "post with form field",
			method:      http.MethodPost,
			form:        url.Values{DefaultCSRFFormField: {token}},
			contentType: "application/x-www-form-urlencoded",
			wantStatus:  http.StatusOK,
		},
		{
			name:        "wrong header beats valid form",
			method:      http.MethodPost,
			header:      "other",
			form:        url.Values{DefaultCSRFFormField: {token}},
			contentType: "application/x-www-form-urlencoded",
			wantStatus:  http.StatusForbidden,
		},
		{
			name:        "form token ignored for json body",
			method:      http.MethodPost,
			form:        url.Values{DefaultCSRFFormField: {token}},
			contentType: "application/json",
			wantStatus:  http.StatusForbidden,
		},
		{name: "delete without token", method: http.MethodDelete, wantStatus: http.StatusForbidden},
		{name: "head is safe", method: http.MethodHead, wantStatus: http.StatusOK},
		{name: "options is safe", method: http.MethodOptions, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.form != nil {
				body = strings.NewReader(tt.form.Encode())
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, "/", body)
			req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
			if tt.header != "" {
				req.Header.Set(DefaultCSRFHeaderName, tt.header)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			csrfTestHandler(t).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCSRFProtection_CustomNames(t *testing.T) {
	handler := CSRFProtection(CSRFConfig{
		CookieName:    "custom_csrf",
		HeaderName:    "X-Custom",
		FormFieldName: "custom_field",
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "custom_csrf", Value: "abc"})
	req.Header.Set("X-Custom", "abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGetCSRFToken_EmptyWithoutMiddleware(t *testing.T) {
	assert.Empty(t, GetCSRFToken(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestGenerateCSRFToken_Unique(t *testing.T) {
	a, err := generateCSRFToken(DefaultCSRFTokenLength)
	require.NoError(t, err)
	b, err := generateCSRFToken(DefaultCSRFTokenLength)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), DefaultCSRFTokenLength)
}
