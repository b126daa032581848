package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Open(ctx context.Context, path string) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	Search(ctx context.Context, query string) error
	New(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) error
	// afterCommand applies navigation requested while the command ran.
	afterCommand(ctx context.Context)
}

const (
	helpGuest = "Available commands: login, open <path>, whoami, help, exit"
	helpUser  = "Available commands: open <path>, refresh, search <text>, new, edit <id>, delete <id>, " +
		"deactivate <id>, reactivate <id>, whoami, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the agenda client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The prompt and REPL messages go to out. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Commands that need an argument (open, edit, delete, deactivate,
// reactivate) report their usage when it is missing; search with no text
// clears the filter. Which list commands work depends on the current screen.
//
// Errors returned by command handlers are ignored here; handlers show their
// own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "agenda %s > \n", statusFn())
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

		needArg := func(usage string) bool {
			if arg == "" {
				fmt.Fprintln(out, "Usage:", usage)
				return false
			}
			return true
		}

		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpUser)
			} else {
				fmt.Fprintln(out, helpGuest)
			}

		case "open", "go":
			if needArg("open <path>") {
				_ = a.Open(ctx, arg)
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "refresh", "r":
			_ = a.Refresh(ctx)

		case "search", "s":
			_ = a.Search(ctx, arg)

		case "new":
			_ = a.New(ctx)

		case "edit":
			if needArg("edit <id>") {
				_ = a.Edit(ctx, arg)
			}

		case "delete", "rm":
			if needArg("delete <id>") {
				_ = a.Delete(ctx, arg)
			}

		case "deactivate":
			if needArg("deactivate <id>") {
				_ = a.Deactivate(ctx, arg)
			}

		case "reactivate":
			if needArg("reactivate <id>") {
				_ = a.Reactivate(ctx, arg)
			}

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		a.afterCommand(ctx)
	}
}
