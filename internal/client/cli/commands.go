package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/router"
	"github.com/nailstudio/agenda/internal/client/validate"
)

var errNotHere = errors.New("command not available on this screen")

// getPassword is a test seam for the hidden password prompt.
var getPassword = GetPassword

// maxPendingHops bounds redirects chained by screens that redirect on mount.
const maxPendingHops = 8

// Open navigates to path, mounts the resulting screen and renders it.
func (a *App) Open(ctx context.Context, path string) error {
	d, err := a.nav.Navigate(path)
	if err != nil {
		a.log.Error(ctx, "navigation failed", "path", path, "error", err)
		return err
	}
	a.log.Debug(ctx, "navigate", "requested", path, "path", d.Path, "screen", d.Route.Screen)

	sc := a.screenFor(d)
	a.screen = sc
	if err := sc.mount(ctx); err != nil {
		a.fail(ctx, err)
	}
	// A screen that redirected on mount is left unrendered.
	if a.screen == sc && !a.nav.HasPending() {
		a.render()
	}
	return nil
}

// afterCommand applies a redirect requested during the last command, such
// as the one raised when the server rejects the session.
func (a *App) afterCommand(ctx context.Context) {
	for i := 0; i < maxPendingHops; i++ {
		p, ok := a.nav.TakePending()
		if !ok {
			return
		}
		_ = a.Open(ctx, p)
	}
}

func (a *App) render() {
	if a.screen == nil {
		return
	}
	fmt.Fprintf(a.out, "\n== %s ==\n", a.screen.title())
	a.screen.render(a.out)
}

// fail shows err to the user the way its kind calls for and returns it.
func (a *App) fail(ctx context.Context, err error) error {
	var verrs validate.Errors
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrUnauthorized):
		a.notifier.Error("your session has expired, please log in again")
	case errors.Is(err, client.ErrNoResponse):
		// the request client has already told the user
	case errors.As(err, &verrs):
		a.notifier.Error("please check the form fields")
		for _, field := range sortedKeys(verrs) {
			fmt.Fprintf(a.out, "  %s: %s\n", field, verrs[field])
		}
	case errors.Is(err, errNotHere):
		fmt.Fprintln(a.out, err.Error())
	default:
		a.notifier.Error(client.Message(err))
	}
	a.log.Debug(ctx, "command failed", "error", err)
	return err
}

func (a *App) Login(ctx context.Context) error {
	if s := a.sessions.Current(); s.Authenticated() {
		fmt.Fprintf(a.out, "Already logged in as %s\n", s.User.Username)
		return nil
	}

	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	s, err := a.auth.Login(ctx, username, string(password))
	if err != nil {
		return a.fail(ctx, err)
	}
	a.notifier.Success(fmt.Sprintf("Welcome, %s", s.User.Username))
	a.nav.Redirect(router.DashboardPath)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	if _, err := a.auth.Logout(ctx); err != nil {
		a.fail(ctx, err)
	}
	a.notifier.Success("Logged out")
	a.nav.Redirect(router.LoginPath)
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	s := a.sessions.Current()
	if !s.Authenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	u := s.User
	fmt.Fprintf(a.out, "%s (%s) role=%s id=%s\n", u.Username, u.FullName(), u.Role, u.ID)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if a.screen == nil {
		return nil
	}
	if err := a.screen.mount(ctx); err != nil {
		return a.fail(ctx, err)
	}
	if !a.nav.HasPending() {
		a.render()
	}
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	s, ok := a.screen.(searcher)
	if !ok {
		return a.fail(ctx, errNotHere)
	}
	s.search(query)
	a.render()
	return nil
}

func (a *App) New(ctx context.Context) error {
	c, ok := a.screen.(creator)
	if !ok {
		return a.fail(ctx, errNotHere)
	}
	return a.fail(ctx, c.create(ctx))
}

func (a *App) Edit(ctx context.Context, id string) error {
	e, ok := a.screen.(editor)
	if !ok {
		return a.fail(ctx, errNotHere)
	}
	return a.fail(ctx, e.edit(ctx, models.ID(id)))
}

func (a *App) Delete(ctx context.Context, id string) error {
	r, ok := a.screen.(remover)
	if !ok {
		return a.fail(ctx, errNotHere)
	}
	return a.fail(ctx, r.remove(ctx, models.ID(id)))
}

func (a *App) Deactivate(ctx context.Context, id string) error {
	return a.setActive(ctx, id, false)
}

func (a *App) Reactivate(ctx context.Context, id string) error {
	return a.setActive(ctx, id, true)
}

func (a *App) setActive(ctx context.Context, id string, active bool) error {
	s, ok := a.screen.(activator)
	if !ok {
		return a.fail(ctx, errNotHere)
	}
	return a.fail(ctx, s.setActive(ctx, models.ID(id), active))
}

// mutate runs fn; on success it shows msg, re-fetches the current screen
// and renders it. On failure the screen keeps its previous state.
func (a *App) mutate(ctx context.Context, msg string, fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	a.notifier.Success(msg)
	if a.screen != nil {
		if err := a.screen.mount(ctx); err != nil {
			return err
		}
		a.render()
	}
	return nil
}
