package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/flowstate/flowstate-dashboard/config"
	"github.com/flowstate/flowstate-dashboard/internal/adapters/filestore"
	"github.com/flowstate/flowstate-dashboard/internal/bootstrap"
	"github.com/flowstate/flowstate-dashboard/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx       context.Context
	Logger    *slog.Logger
	Workspace *service.Workspace
	StatePath string
	Stdin     io.Reader
	Stdout    io.Writer
}

// errUsage marks failures that already printed their own message.
var errUsage = errors.New("usage")

func main() {
	// Diagnostics go to stderr so stdout stays readable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmdCtx, err := newCommandContext(ctx, &cfg, logger)
	if err != nil {
		logger.Error("initialize client", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must signal initialization failure to shell scripts
	}

	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		if !errors.Is(runErr, errUsage) {
			if err := writef(os.Stderr, "flowstate %s: %s\n", cmdName, runErr); err != nil {
				logger.Error("print command error failed", "error", err)
			}
		}
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

// newCommandContext wires a single workspace backed by the state file.
func newCommandContext(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*commandContext, error) {
	store, err := filestore.New(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	client, err := bootstrap.NewBackendClient(cfg.Backend, nil, logger)
	if err != nil {
		return nil, err
	}

	ws := service.NewWorkspace(service.WorkspaceOptions{
		Storage:    store,
		Backend:    client.Factory(),
		DefaultTTL: cfg.Storage.DefaultTTL,
		Logger:     logger,
	})
	return &commandContext{
		Ctx:       ctx,
		Logger:    logger,
		Workspace: ws,
		StatePath: store.Path(),
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
	}, nil
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Log in and store the access token locally",
			run:         runLogin,
		},
		"register": {
			name:        "register",
			description: "Create a FlowState account (does not log in)",
			run:         runRegister,
		},
		"dashboard": {
			name:        "dashboard",
			description: "Show focus statistics for the logged-in user",
			run:         runDashboard,
		},
		"logout": {
			name:        "logout",
			description: "Forget the locally stored token and profile",
			run:         runLogout,
		},
		"status": {
			name:        "status",
			description: "Show whether a user is logged in",
			run:         runStatus,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: flowstate <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-12s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
