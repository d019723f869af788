package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	domainauth "github.com/flowstate/flowstate-dashboard/internal/domain/auth"
	apperrors "github.com/flowstate/flowstate-dashboard/internal/errors"
	"github.com/flowstate/flowstate-dashboard/internal/http/uiutil"
	"github.com/flowstate/flowstate-dashboard/internal/service"
)

const barChartWidth = 30

type loginOptions struct {
	Username string
	Password string
}

type registerOptions struct {
	Username string
	Email    string
	Password string
}

type dashboardOptions struct {
	JSON bool
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// parseFlags maps flag parse failures to errUsage; the flag package has
// already printed the problem.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := newFlagSet("login")
	var opts loginOptions
	fs.StringVar(&opts.Username, "username", "", "Account username (prompted when empty)")
	fs.StringVar(&opts.Password, "password", "", "Account password (read from stdin when empty)")
	if err := parseFlags(fs, args); err != nil {
		return loginOptions{}, err
	}
	return opts, nil
}

func parseRegisterFlags(args []string) (registerOptions, error) {
	fs := newFlagSet("register")
	var opts registerOptions
	fs.StringVar(&opts.Username, "username", "", "Account username (prompted when empty)")
	fs.StringVar(&opts.Email, "email", "", "Optional email address")
	fs.StringVar(&opts.Password, "password", "", "Account password (read from stdin when empty)")
	if err := parseFlags(fs, args); err != nil {
		return registerOptions{}, err
	}
	return opts, nil
}

func parseDashboardFlags(args []string) (dashboardOptions, error) {
	fs := newFlagSet("dashboard")
	var opts dashboardOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print the dashboard as JSON")
	if err := parseFlags(fs, args); err != nil {
		return dashboardOptions{}, err
	}
	return opts, nil
}

func parseNoFlags(name string, args []string) error {
	return parseFlags(newFlagSet(name), args)
}

// prompter reads answers line by line from one reader so several prompts can
// share piped input. Secrets typed on a terminal are read without echo.
type prompter struct {
	in           *bufio.Reader
	out          io.Writer
	fd           int
	tty          bool
	readPassword func(fd int) ([]byte, error)
}

func newPrompter(ctx *commandContext) *prompter {
	p := &prompter{in: bufio.NewReader(ctx.Stdin), out: ctx.Stdout, readPassword: term.ReadPassword}
	p.fd, p.tty = terminalFd(ctx.Stdin)
	return p
}

// terminalFd reports the descriptor behind r and whether it is a terminal.
func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd()) //nolint:gosec // descriptors fit in int
	return fd, term.IsTerminal(fd)
}

func (p *prompter) ask(label, current string) (string, error) {
	if current != "" {
		return current, nil
	}
	if err := writef(p.out, "%s: ", label); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askSecret is ask without echo when stdin is a terminal. Piped input falls
// back to the line reader.
func (p *prompter) askSecret(label, current string) (string, error) {
	if current != "" || !p.tty {
		return p.ask(label, current)
	}
	if err := writef(p.out, "%s: ", label); err != nil {
		return "", err
	}
	b, err := p.readPassword(p.fd)
	// The terminal swallowed the user's newline.
	if werr := writeln(p.out, ""); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func runLogin(ctx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}
	p := newPrompter(ctx)
	if opts.Username, err = p.ask("Username", strings.TrimSpace(opts.Username)); err != nil {
		return err
	}
	if opts.Password, err = p.askSecret("Password", opts.Password); err != nil {
		return err
	}

	res, err := ctx.Workspace.Auth.Login(ctx.Ctx, domainauth.Credentials{
		Username: strings.TrimSpace(opts.Username),
		Password: opts.Password,
	})
	if err != nil {
		return errors.New(apperrors.UserMessage(err, apperrors.MsgInvalidCredentials))
	}
	return writef(ctx.Stdout, "Logged in as %s.\n", res.User.Username)
}

func runRegister(ctx *commandContext, args []string) error {
	opts, err := parseRegisterFlags(args)
	if err != nil {
		return err
	}
	p := newPrompter(ctx)
	if opts.Username, err = p.ask("Username", strings.TrimSpace(opts.Username)); err != nil {
		return err
	}
	if opts.Password, err = p.askSecret("Password", opts.Password); err != nil {
		return err
	}

	reg := domainauth.Registration{
		Username: strings.TrimSpace(opts.Username),
		Email:    strings.TrimSpace(opts.Email),
		Password: opts.Password,
	}
	if err := ctx.Workspace.Auth.Register(ctx.Ctx, reg); err != nil {
		return errors.New(apperrors.UserMessage(err, apperrors.MsgRegistrationFailed))
	}
	return writef(ctx.Stdout, "Account %s created. Run \"flowstate login\" to sign in.\n", reg.Username)
}

func runLogout(ctx *commandContext, args []string) error {
	if err := parseNoFlags("logout", args); err != nil {
		return err
	}
	if err := ctx.Workspace.Auth.Logout(ctx.Ctx); err != nil {
		return fmt.Errorf("clear local state: %w", err)
	}
	return writeln(ctx.Stdout, "Logged out.")
}

func runStatus(ctx *commandContext, args []string) error {
	if err := parseNoFlags("status", args); err != nil {
		return err
	}
	st, err := ctx.Workspace.State.Snapshot(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("read local state: %w", err)
	}

	switch {
	case st.IsAuthenticated():
		if email := st.User.DisplayEmail(); email != "" {
			err = writef(ctx.Stdout, "Logged in as %s <%s>.\n", st.User.Username, email)
		} else {
			err = writef(ctx.Stdout, "Logged in as %s.\n", st.User.Username)
		}
	case st.HasToken():
		err = writeln(ctx.Stdout, "Token stored but no profile loaded. Run \"flowstate login\" again.")
	default:
		err = writeln(ctx.Stdout, "Not logged in.")
	}
	if err != nil {
		return err
	}
	if ctx.StatePath != "" {
		return writef(ctx.Stdout, "State file: %s\n", ctx.StatePath)
	}
	return nil
}

func runDashboard(ctx *commandContext, args []string) error {
	opts, err := parseDashboardFlags(args)
	if err != nil {
		return err
	}

	authed, err := ctx.Workspace.State.IsAuthenticated(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("read local state: %w", err)
	}
	if !authed {
		return errors.New("not logged in; run \"flowstate login\" first")
	}

	d, err := ctx.Workspace.Dashboard.Load(ctx.Ctx)
	if err != nil {
		if apperrors.IsTokenInvalid(err) {
			return errors.New("session expired; run \"flowstate login\" again")
		}
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	return printDashboard(ctx.Stdout, d)
}

func printDashboard(out io.Writer, d *service.Dashboard) error {
	if err := writef(out, "Welcome back, %s.\n\n", d.User.Username); err != nil {
		return err
	}
	if d.SessionsUnavailable {
		if err := writeln(out, "Sessions could not be loaded. Showing an empty summary.\n"); err != nil {
			return err
		}
	}

	s := d.Summary
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Metric\tValue"); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	if err := writef(w, "Total focus\t%s min\n", uiutil.FormatMinutes(s.TotalFocusMinutes)); err != nil {
		return fmt.Errorf("write total focus: %w", err)
	}
	if err := writef(w, "Sessions\t%d\n", s.SessionCount); err != nil {
		return fmt.Errorf("write session count: %w", err)
	}
	if err := writef(w, "Average session\t%d min\n", s.AverageDurationMinutes); err != nil {
		return fmt.Errorf("write average: %w", err)
	}
	if err := writef(w, "Look-aways\t%d\n", s.TotalLookAways); err != nil {
		return fmt.Errorf("write look-aways: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush summary: %w", err)
	}

	if len(d.Bars) > 0 {
		if err := writeln(out, "\nRecent sessions (minutes)"); err != nil {
			return err
		}
		w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, b := range d.Bars {
			bar := strings.Repeat("#", max(1, int(b.Percent*barChartWidth/100)))
			if b.Minutes == 0 {
				bar = ""
			}
			if err := writef(w, "%s\t%s\t%s\n", uiutil.TruncateWithEllipsis(b.Label, 24), bar, uiutil.FormatMinutes(b.Minutes)); err != nil {
				return fmt.Errorf("write bar %q: %w", b.Label, err)
			}
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush chart: %w", err)
		}
	}

	if len(s.RecentSessions) == 0 {
		return writeln(out, "\nNo sessions yet.")
	}
	if err := writeln(out, "\nLatest sessions"); err != nil {
		return err
	}
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "When\tTask\tDuration\tLook-aways\tTab switches"); err != nil {
		return fmt.Errorf("write sessions header: %w", err)
	}
	for _, sess := range s.RecentSessions {
		if err := writef(w, "%s\t%s\t%s\t%d\t%d\n",
			uiutil.FormatFriendlyDateTime(sess.Timestamp.Time),
			uiutil.TruncateWithEllipsis(sess.Label(), 32),
			uiutil.FormatDuration(sess.DurationSeconds),
			sess.LookAwayCount,
			sess.TabSwitchCount,
		); err != nil {
			return fmt.Errorf("write session %d: %w", sess.ID, err)
		}
	}
	return w.Flush()
}
