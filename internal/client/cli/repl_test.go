package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	after int
}

func (f *fakeExec) record(s string) error {
	f.calls = append(f.calls, s)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Open(_ context.Context, p string) error {
	return f.record("open " + p)
}
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(context.Context) error  { return f.record("whoami") }
func (f *fakeExec) Refresh(context.Context) error { return f.record("refresh") }
func (f *fakeExec) Search(_ context.Context, q string) error {
	return f.record("search " + q)
}
func (f *fakeExec) New(context.Context) error { return f.record("new") }
func (f *fakeExec) Edit(_ context.Context, id string) error {
	return f.record("edit " + id)
}
func (f *fakeExec) Delete(_ context.Context, id string) error {
	return f.record("delete " + id)
}
func (f *fakeExec) Deactivate(_ context.Context, id string) error {
	return f.record("deactivate " + id)
}
func (f *fakeExec) Reactivate(_ context.Context, id string) error {
	return f.record("reactivate " + id)
}
func (f *fakeExec) afterCommand(context.Context) { f.after++ }

func outputLines(buf *bytes.Buffer) []string {
	var lines []string
	for _, l := range strings.Split(buf.String(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	var buf bytes.Buffer

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"open /clients",
		"search  Lucia Perez ",
		"search",
		"new",
		"edit 12",
		"delete 12",
		"deactivate 3",
		"reactivate 3",
		"refresh",
		"whoami",
		"",
		"foobar",
		"logout",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input), &buf)
	out := outputLines(&buf)

	assert.Equal(t, []string{
		"login",
		"open /clients",
		"search Lucia Perez",
		"search ",
		"new",
		"edit 12",
		"delete 12",
		"deactivate 3",
		"reactivate 3",
		"refresh",
		"whoami",
		"logout",
	}, exec.calls)

	assert.Contains(t, out, helpGuest)
	assert.Contains(t, out, helpUser)
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Bye!")
	assert.Contains(t, out, "agenda status >")
	// every dispatched line except the empty one and exit
	assert.Equal(t, 15, exec.after)
}

func TestRunREPL_MissingArguments(t *testing.T) {
	var buf bytes.Buffer
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("open\nedit\ndelete\n"), &buf)
	out := outputLines(&buf)

	assert.Empty(t, exec.calls)
	assert.Contains(t, out, "Usage: open <path>")
	assert.Contains(t, out, "Usage: edit <id>")
	assert.Contains(t, out, "Usage: delete <id>")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("whoami"), io.Discard)
	assert.Equal(t, []string{"whoami"}, exec.calls)
}
