package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/router"
)

// screen is what a route shows. mount loads its data (and, for forms, runs
// the prompts); render prints the current state.
type screen interface {
	title() string
	mount(ctx context.Context) error
	render(w io.Writer)
}

// Optional capabilities of a screen, checked by the commands.
type searcher interface {
	search(query string)
}

type creator interface {
	create(ctx context.Context) error
}

type editor interface {
	edit(ctx context.Context, id models.ID) error
}

type remover interface {
	remove(ctx context.Context, id models.ID) error
}

type activator interface {
	setActive(ctx context.Context, id models.ID, active bool) error
}

func (a *App) screenFor(d router.Decision) screen {
	switch d.Route.Screen {
	case router.ScreenDashboard:
		if a.sessions.Current().Role() == models.RoleAdmin {
			return &adminDashboard{app: a}
		}
		return newAppointmentsScreen(a, true)
	case router.ScreenRegister:
		return &registerScreen{app: a}
	case router.ScreenUsers:
		return newUsersScreen(a)
	case router.ScreenAppointments:
		return newAppointmentsScreen(a, false)
	case router.ScreenNewAppointment:
		return &newAppointmentScreen{app: a}
	case router.ScreenEditAppointment:
		return &editAppointmentScreen{app: a, id: models.ID(d.Params["id"])}
	case router.ScreenClients:
		return newClientsScreen(a)
	case router.ScreenNewClient:
		return &newClientScreen{app: a}
	case router.ScreenServices:
		return newServicesScreen(a)
	case router.ScreenNewService:
		return &newServiceScreen{app: a}
	}
	return &loginScreen{app: a}
}

// listScreen is the shared state of the table screens: the last fetched
// snapshot and the search filter over it.
type listScreen[T any] struct {
	items   []T
	query   string
	fetch   func(ctx context.Context) ([]T, error)
	match   func(item T, query string) bool
	id      func(item T) models.ID
	columns []string
	row     func(item T) []string
}

// load replaces the snapshot; on error the previous one is kept.
func (l *listScreen[T]) load(ctx context.Context) error {
	items, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	l.items = items
	return nil
}

func (l *listScreen[T]) search(query string) {
	l.query = strings.TrimSpace(query)
}

func (l *listScreen[T]) visible() []T {
	if l.query == "" || l.match == nil {
		return l.items
	}
	q := strings.ToLower(l.query)
	out := make([]T, 0, len(l.items))
	for _, it := range l.items {
		if l.match(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func (l *listScreen[T]) find(id models.ID) (T, bool) {
	for _, it := range l.items {
		if l.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (l *listScreen[T]) renderTable(w io.Writer) {
	if l.query != "" {
		fmt.Fprintf(w, "filter: %q\n", l.query)
	}
	items := l.visible()
	if len(items) == 0 {
		fmt.Fprintln(w, "(no results)")
		return
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, l.row(it))
	}
	writeTable(w, l.columns, rows)
}

func writeTable(w io.Writer, columns []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type loginScreen struct{ app *App }

func (s *loginScreen) title() string               { return "Login" }
func (s *loginScreen) mount(context.Context) error { return nil }
func (s *loginScreen) render(w io.Writer) {
	fmt.Fprintln(w, "Type 'login' to sign in.")
}

type adminDashboard struct{ app *App }

func (s *adminDashboard) title() string               { return "Administration" }
func (s *adminDashboard) mount(context.Context) error { return nil }
func (s *adminDashboard) render(w io.Writer) {
	u := s.app.sessions.Current().User
	if u != nil {
		fmt.Fprintf(w, "Signed in as %s (admin)\n", u.Username)
	}
	fmt.Fprintln(w, "  open /users      manage operator accounts")
	fmt.Fprintln(w, "  open /register   create an operator account")
}
