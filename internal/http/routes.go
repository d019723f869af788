package httpx

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	flowstate "github.com/flowstate/flowstate-dashboard"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Workspaces WorkspaceProvider // Required

	// TemplateFS and StaticFS default to the embedded frontend, or to the
	// frontend/ directory on disk in dev mode.
	TemplateFS fs.FS
	StaticFS   fs.FS

	CookieDomain       string
	CompressionEnabled bool
	CompressionLevel   int

	// Metrics is mounted at MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string

	IsDev  bool
	Logger *slog.Logger
}

// NewRouter creates the HTTP handler for the dashboard.
//
// Middleware order: Recover, Logging, optional Compression, then for
// application routes BrowserDetection, ClientSession and CSRF. Health, metrics
// and static assets skip the per-client middleware.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Workspaces == nil {
		return nil, errors.New("router: Workspaces is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templateFS, staticFS, err := resolveFrontendFS(services)
	if err != nil {
		return nil, err
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Logger: logger})
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{T: tr, IsDev: services.IsDev, Logger: logger}
	api := &APIHandlers{Logger: logger}

	app := http.NewServeMux()
	registerUIRoutes(app, ui, logger)
	registerAPIRoutes(app, api, logger)

	var appHandler http.Handler = &notFoundHandler{mux: app, ui: ui}
	appHandler = CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(appHandler)
	appHandler = ClientSession(ClientSessionConfig{
		Workspaces:   services.Workspaces,
		CookieDomain: services.CookieDomain,
	})(appHandler)
	appHandler = BrowserDetection()(appHandler)

	root := http.NewServeMux()
	root.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	root.Handle("GET /static/", staticWithCacheHeaders(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))), services.IsDev))
	if services.Metrics != nil && services.MetricsPath != "" {
		root.Handle("GET "+services.MetricsPath, services.Metrics)
	}
	root.Handle("/", appHandler)

	var handler http.Handler = root
	if services.CompressionEnabled {
		handler = Compression(CompressionConfig{Level: services.CompressionLevel, Logger: logger})(handler)
	}
	handler = Logging(logger)(handler)
	return Recover(logger)(handler), nil
}

// resolveFrontendFS picks template and static filesystems. Dev mode reads from
// disk so template edits only need a restart, not a rebuild.
func resolveFrontendFS(services RouterServices) (fs.FS, fs.FS, error) {
	templateFS, staticFS := services.TemplateFS, services.StaticFS
	if services.IsDev {
		if templateFS == nil {
			templateFS = os.DirFS(TemplatePathFromRoot)
		}
		if staticFS == nil {
			staticFS = os.DirFS(StaticPathFromRoot)
		}
		return templateFS, staticFS, nil
	}

	var err error
	if templateFS == nil {
		if templateFS, err = fs.Sub(flowstate.TemplateFS, TemplatePathFromRoot); err != nil {
			return nil, nil, err
		}
	}
	if staticFS == nil {
		if staticFS, err = fs.Sub(flowstate.StaticFS, StaticPathFromRoot); err != nil {
			return nil, nil, err
		}
	}
	return templateFS, staticFS, nil
}

// staticWithCacheHeaders wraps a static file handler to add cache headers.
func staticWithCacheHeaders(handler http.Handler, isDev bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isDev {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		handler.ServeHTTP(w, r)
	})
}

func registerUIRoutes(mux *http.ServeMux, h *UIHandlers, logger *slog.Logger) {
	guard := RequireAuthBrowser(logger)
	mux.Handle("GET /{$}", http.HandlerFunc(h.LoginPage))
	mux.Handle("POST /{$}", http.HandlerFunc(h.Login))
	mux.Handle("GET /register", http.HandlerFunc(h.RegisterPage))
	mux.Handle("POST /register", http.HandlerFunc(h.Register))
	mux.Handle("GET /dashboard", guard(http.HandlerFunc(h.Dashboard)))
	mux.Handle("POST /logout", http.HandlerFunc(h.Logout))
}

func registerAPIRoutes(mux *http.ServeMux, h *APIHandlers, logger *slog.Logger) {
	mux.Handle("GET /api/state", http.HandlerFunc(h.State))
	mux.Handle("GET /api/dashboard", RequireAuthBrowser(logger)(http.HandlerFunc(h.Dashboard)))
}

// notFoundHandler wraps a ServeMux and renders the 404 page for unmatched routes.
type notFoundHandler struct {
	mux *http.ServeMux
	ui  *UIHandlers
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		h.mux.ServeHTTP(w, r)
		return
	}
	// Unmatched: 404 or 405 from the mux. Only 404 gets a custom body.
	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	switch {
	case cw.status != http.StatusNotFound:
		cw.flushTo(w)
	case IsBrowserRequest(r):
		h.ui.NotFound(w, r)
	default:
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("not found")})
	}
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}
