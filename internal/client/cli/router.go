package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/client"
	"github.com/dmitrijs2005/pdflearn/internal/client/guard"
	"github.com/dmitrijs2005/pdflearn/internal/client/services"
)

// errQuit ends the REPL.
var errQuit = errors.New("quit")

// displayError carries text that is shown to the user as it is.
type displayError struct {
	text string
}

func (e *displayError) Error() string { return e.text }

func displayf(format string, args ...any) error {
	return &displayError{text: fmt.Sprintf(format, args...)}
}

func usage(u string) error {
	return displayf("Usage: %s", u)
}

type command struct {
	name  string
	usage string
	help  string
	route string
	guard guard.Guard
	run   func(ctx context.Context, args []string) error
}

func (a *App) registerCommands() {
	cmds := []*command{
		{name: "help", help: "show available commands", guard: guard.Open(), run: a.help},
		{name: "exit", help: "leave the program", guard: guard.Open(), run: a.quit},
		{name: "quit", help: "leave the program", guard: guard.Open(), run: a.quit},

		{name: "login", help: "sign in", route: "/login", guard: guard.Public(), run: a.Login},
		{name: "register", help: "create an account", route: "/register", guard: guard.Public(), run: a.Register},
		{name: "logout", help: "sign out", guard: guard.Protected(), run: a.Logout},
		{name: "whoami", help: "show the signed-in user", guard: guard.Protected(), run: a.WhoAmI},
		{name: "profile", usage: "profile [set <field> <value>]", help: "show or edit your profile", route: "/profile", guard: guard.Protected(), run: a.Profile},

		{name: "dashboard", help: "overview of your learning", route: "/", guard: guard.Protected(), run: a.Dashboard},
		{name: "docs", help: "list documents", route: "/documents", guard: guard.Protected(), run: a.Documents},
		{name: "upload", usage: "upload <path>", help: "upload a PDF", route: "/documents", guard: guard.Protected(), run: a.Upload},
		{name: "show", usage: "show <id>", help: "show a document", route: "/documents", guard: guard.Protected(), run: a.ShowDocument},
		{name: "rmdoc", usage: "rmdoc <id>", help: "delete a document", route: "/documents", guard: guard.Protected(), run: a.DeleteDocument},
		{name: "reprocess", usage: "reprocess <id>", help: "process a document again", route: "/documents", guard: guard.Protected(), run: a.Reprocess},
		{name: "search", usage: "search <query> [--doc <id>]", help: "search document text", route: "/documents", guard: guard.Protected(), run: a.Search},

		{name: "quiz", help: "generate and take a quiz", route: "/quiz", guard: guard.Protected(), run: a.TakeQuiz},
		{name: "quizzes", help: "list generated quizzes", route: "/quiz", guard: guard.Protected(), run: a.Quizzes},
		{name: "attempts", help: "list quiz attempts", route: "/quiz", guard: guard.Protected(), run: a.Attempts},
		{name: "attempt", usage: "attempt <id>", help: "review one attempt", route: "/quiz", guard: guard.Protected(), run: a.AttemptDetail},
		{name: "quizstats", help: "quiz statistics", route: "/quiz", guard: guard.Protected(), run: a.QuizStats},

		{name: "progress", help: "progress overview", route: "/progress", guard: guard.Protected(), run: a.Progress},
		{name: "sessions", usage: "sessions [--recent]", help: "list study sessions", route: "/progress", guard: guard.Protected(), run: a.Sessions},
		{name: "startsession", usage: "startsession <document id> [reading|quiz|review]", help: "start a study session", route: "/progress", guard: guard.Protected(), run: a.StartSession},
		{name: "endsession", usage: "endsession <id>", help: "end a study session", route: "/progress", guard: guard.Protected(), run: a.EndSession},
		{name: "goals", help: "list learning goals", route: "/progress", guard: guard.Protected(), run: a.Goals},
		{name: "addgoal", help: "create a learning goal", route: "/progress", guard: guard.Protected(), run: a.AddGoal},
		{name: "goalprogress", usage: "goalprogress <id> <value>", help: "record progress on a goal", route: "/progress", guard: guard.Protected(), run: a.GoalProgress},
		{name: "completegoal", usage: "completegoal <id>", help: "mark a goal completed", route: "/progress", guard: guard.Protected(), run: a.CompleteGoal},
	}

	a.commands = make(map[string]*command, len(cmds))
	for _, c := range cmds {
		a.commands[c.name] = c
	}
}

// dispatch runs one input line. It returns errQuit when the user leaves.
func (a *App) dispatch(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, ok := a.commands[parts[0]]
	if !ok {
		a.println("Unknown command:", parts[0])
		return nil
	}

	if !a.allowed(cmd) {
		return nil
	}

	if cmd.route != "" {
		a.navigate(cmd.route)
	}
	err := cmd.run(ctx, parts[1:])
	if errors.Is(err, errQuit) {
		return err
	}
	if err != nil {
		a.log.Debug(ctx, "command failed", "command", cmd.name, "error", err)
		a.println(userMessage(err))
	}
	return nil
}

// allowed applies the command's guard and prints what the user sees instead
// of the command when it may not run.
func (a *App) allowed(cmd *command) bool {
	d := cmd.guard.Decide(a.session.State())
	switch d.Kind {
	case guard.Wait:
		a.println(d.Message)
		return false
	case guard.Redirect:
		a.navigate(d.To)
		if d.To == guard.LoginRoute {
			a.println("Please log in first (type 'login' or 'register').")
		} else {
			a.println("You are already logged in.")
		}
		return false
	}
	return true
}

func (a *App) help(_ context.Context, _ []string) error {
	snap := a.session.State()
	names := make([]string, 0, len(a.commands))
	for name, c := range a.commands {
		if c.guard.Decide(snap).Kind == guard.Render {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	a.println("Available commands:")
	for _, name := range names {
		c := a.commands[name]
		line := c.usage
		if line == "" {
			line = c.name
		}
		a.printf("  %-50s %s\n", line, c.help)
	}
	return nil
}

func (a *App) quit(_ context.Context, _ []string) error {
	a.println("Bye!")
	return errQuit
}

// userMessage turns an error into the text shown to the user.
func userMessage(err error) string {
	var apiErr *client.APIError
	var shown *displayError
	switch {
	case errors.As(err, &shown):
		return shown.text
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable. Check your connection and try again."
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, services.ErrNotAuthenticated):
		return "Please log in first."
	case errors.As(err, &apiErr):
		if apiErr.Status >= http.StatusInternalServerError {
			return "Something went wrong on the server. Please try again."
		}
		return apiErr.Message
	}
	return err.Error()
}

// apiFieldMessage returns the server's message under key, or fallback for
// any other failure. Errors raised before a request are shown as they are.
func apiFieldMessage(err error, key, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Field(key); msg != "" {
			return msg
		}
		return fallback
	}
	if errors.Is(err, client.ErrUnavailable) || errors.Is(err, client.ErrUnauthorized) {
		return userMessage(err)
	}
	return err.Error()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
