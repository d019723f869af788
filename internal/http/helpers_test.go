package httpx

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowstate/flowstate-dashboard/internal/adapters/memstore"
	fakes "github.com/flowstate/flowstate-dashboard/internal/mocks/auth"
	"github.com/flowstate/flowstate-dashboard/internal/service"
)

// testApp runs the full router against the in-memory backend and storage.
type testApp struct {
	t       *testing.T
	backend *fakes.Server
	srv     *httptest.Server
}

type testAppOption func(*RouterServices)

func withMetrics(h http.Handler, path string) testAppOption {
	return func(s *RouterServices) {
		s.Metrics = h
		s.MetricsPath = path
	}
}

func newTestApp(t *testing.T, opts ...testAppOption) *testApp {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); os.IsNotExist(err) {
		t.Skip("Templates not available, skipping")
	}

	backend := fakes.NewServer()
	services := RouterServices{
		Workspaces: service.NewWorkspaceFactory(service.WorkspaceFactoryOptions{
			Storage: memstore.NewProvider(),
			Backend: backend.Factory(),
		}),
		TemplateFS: os.DirFS(TemplatePathFromTest),
		StaticFS:   os.DirFS(StaticPathFromTest),
	}
	for _, opt := range opts {
		opt(&services)
	}

	handler, err := NewRouter(services)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testApp{t: t, backend: backend, srv: srv}
}

// testBrowser is one cookie jar talking to the app; redirects are not followed.
type testBrowser struct {
	app    *testApp
	client *http.Client
}

func (a *testApp) browser() *testBrowser {
	a.t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &testBrowser{
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type result struct {
	Status int
	Header http.Header
	Body   string
}

func (b *testBrowser) do(req *http.Request) result {
	b.app.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.app.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.app.t, err)
	return result{Status: resp.StatusCode, Header: resp.Header, Body: string(body)}
}

func (b *testBrowser) get(path string) result {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.srv.URL+path, nil)
	require.NoError(b.app.t, err)
	req.Header.Set("Accept", "text/html")
	return b.do(req)
}

func (b *testBrowser) getJSON(path string) result {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.srv.URL+path, nil)
	require.NoError(b.app.t, err)
	req.Header.Set("Accept", "application/json")
	return b.do(req)
}

// postForm submits a form with the browser's CSRF token, fetching a page
// first when the browser has no cookies yet.
func (b *testBrowser) postForm(path string, form url.Values) result {
	b.app.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get(DefaultCSRFFormField) == "" {
		form.Set(DefaultCSRFFormField, b.csrfToken())
	}
	return b.postRaw(path, form)
}

func (b *testBrowser) postRaw(path string, form url.Values) result {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.app.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	return b.do(req)
}

func (b *testBrowser) cookie(name string) string {
	u, err := url.Parse(b.app.srv.URL)
	require.NoError(b.app.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *testBrowser) csrfToken() string {
	b.app.t.Helper()
	if token := b.cookie(DefaultCSRFCookieName); token != "" {
		return token
	}
	b.get(PathRegister)
	token := b.cookie(DefaultCSRFCookieName)
	require.NotEmpty(b.app.t, token, "csrf cookie not issued")
	return token
}

func (b *testBrowser) login(username, password string) result {
	b.app.t.Helper()
	return b.postForm(PathLogin, url.Values{"username": {username}, "password": {password}})
}
