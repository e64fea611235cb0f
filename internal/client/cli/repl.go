package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/guard"
	"github.com/dmitrijs2005/pdflearn/internal/common"
)

// dispatcher is the minimal surface the REPL needs. The real App satisfies
// it; tests can provide a lightweight stub.
type dispatcher interface {
	dispatch(ctx context.Context, line string) error
	prompt() string
	takeNotice() string
}

// runREPL reads lines from reader and dispatches them until EOF, ctx is
// done, or a command asks to quit. Command errors are reported by the
// dispatcher itself; this loop only does I/O.
func runREPL(ctx context.Context, d dispatcher, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		if n := d.takeNotice(); n != "" {
			fmt.Fprintln(w, n)
		}
		fmt.Fprint(w, d.prompt())

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			fmt.Fprintln(w)
			return
		}
		if derr := d.dispatch(ctx, strings.TrimSpace(line)); errors.Is(derr, errQuit) {
			return
		}
		if err != nil {
			return
		}
	}
}

func (a *App) prompt() string {
	return fmt.Sprintf("pdflearn %s %s> ", a.status(), a.Route())
}

// Run checks the stored session, starts the connectivity watcher and runs
// the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to pdflearn (type 'help' for commands)")
	a.start(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.reader, a.out)
}

// start resolves the startup session check and lands on the first page.
func (a *App) start(ctx context.Context) {
	a.checkOnline(ctx)
	a.println(guard.CheckingMessage)
	snap := a.session.CheckSession(ctx)
	// A stored token rejected here is not an expiry the user saw.
	a.takeNotice()
	if snap.IsAuthenticated {
		a.printf("Signed in as %s.\n", snap.User.DisplayName())
		a.navigate(common.RouteHome)
		return
	}
	a.navigate(common.RouteLogin)
	a.println("You are not signed in. Type 'login' or 'register'.")
}

// Exec runs a single command non-interactively, e.g. from a subcommand.
func (a *App) Exec(ctx context.Context, args ...string) error {
	a.session.CheckSession(ctx)
	a.takeNotice()
	if len(args) == 0 {
		return nil
	}
	cmd, ok := a.commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if !a.allowed(cmd) {
		return fmt.Errorf("%s: not permitted in the current session", cmd.name)
	}
	if err := cmd.run(ctx, args[1:]); err != nil && !errors.Is(err, errQuit) {
		return &displayError{text: userMessage(err)}
	}
	return nil
}
