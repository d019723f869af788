package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/flowstate/flowstate-dashboard/config"
	httpx "github.com/flowstate/flowstate-dashboard/internal/http"
	"github.com/flowstate/flowstate-dashboard/internal/observability/metrics"
	"github.com/flowstate/flowstate-dashboard/internal/ports"
	"github.com/flowstate/flowstate-dashboard/internal/service"
)

const shutdownTimeout = 10 * time.Second

// AppDeps contains the dependencies used to assemble the web dashboard.
type AppDeps struct {
	Config *config.AppConfig // Required
	Logger *slog.Logger

	// Storage overrides the configured storage driver (tests).
	Storage ports.StorageProvider
	// Backend overrides the FlowState API client (tests).
	Backend ports.BackendFactory
}

// App is the assembled web dashboard: HTTP server plus the resources it owns.
type App struct {
	Server  *http.Server
	Metrics *metrics.Recorder

	redis  redis.UniversalClient
	logger *slog.Logger
}

// NewApp connects infrastructure and wires services into an HTTP server. The
// caller must Close the App.
func NewApp(ctx context.Context, deps AppDeps) (*App, error) {
	if deps.Config == nil {
		return nil, errors.New("app config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{logger: logger}
	if cfg.Observability.Metrics.IsEnabled() {
		app.Metrics = metrics.New()
	}

	storage := deps.Storage
	if storage == nil {
		if cfg.Storage.Driver == config.StorageDriverRedis {
			client, err := ConnectRedis(ctx, RedisConnectConfig{Redis: cfg.Redis, Logger: logger})
			if err != nil {
				return nil, fmt.Errorf("connect redis: %w", err)
			}
			app.redis = client
		}
		var err error
		storage, err = BuildStorage(ctx, StorageDeps{Config: cfg.Storage, Redis: app.redis, Logger: logger})
		if err != nil {
			return nil, errors.Join(err, app.Close())
		}
	}

	backend := deps.Backend
	if backend == nil {
		client, err := NewBackendClient(cfg.Backend, app.Metrics, logger)
		if err != nil {
			return nil, errors.Join(err, app.Close())
		}
		backend = client.Factory()
	}

	workspaces := service.NewWorkspaceFactory(service.WorkspaceFactoryOptions{
		Storage:    storage,
		Backend:    backend,
		DefaultTTL: cfg.Storage.DefaultTTL,
		Observer:   app.Metrics,
		Logger:     logger,
	})

	handler, err := httpx.NewRouter(routerServices(cfg, workspaces, app.Metrics, logger))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build router: %w", err), app.Close())
	}

	app.Server = newHTTPServer(cfg.HTTP.Addr, handler)
	return app, nil
}

func routerServices(
	cfg *config.AppConfig,
	workspaces httpx.WorkspaceProvider,
	rec *metrics.Recorder,
	logger *slog.Logger,
) httpx.RouterServices {
	services := httpx.RouterServices{
		Workspaces:         workspaces,
		CookieDomain:       cfg.HTTP.CookieDomain,
		CompressionEnabled: cfg.HTTP.CompressionEnabled,
		CompressionLevel:   cfg.HTTP.CompressionLevel,
		IsDev:              cfg.IsDev,
		Logger:             logger,
	}
	if rec != nil {
		services.Metrics = rec.Handler()
		services.MetricsPath = cfg.Observability.Metrics.Path
	}
	return services
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Serve runs the HTTP server on ln until ctx is cancelled, then shuts it down
// within the shutdown budget.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfoContext(gctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		a.logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}

// Close releases infrastructure owned by the App.
func (a *App) Close() error {
	if a == nil || a.redis == nil {
		return nil
	}
	if err := a.redis.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}

// Run assembles the dashboard and serves it until SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, AppDeps{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	ln, err := net.Listen("tcp", app.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.Server.Addr, err)
	}
	return app.Serve(ctx, ln)
}
