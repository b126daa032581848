package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

type usersScreen struct {
	app *App
	listScreen[models.User]
}

func newUsersScreen(a *App) *usersScreen {
	return &usersScreen{app: a, listScreen: listScreen[models.User]{
		fetch: a.users.List,
		match: func(u models.User, q string) bool {
			return containsFold(q, u.Username, u.FullName(), u.Phone)
		},
		id:      func(u models.User) models.ID { return u.ID },
		columns: []string{"ID", "USERNAME", "NAME", "PHONE", "ROLE", "ACTIVE"},
		row: func(u models.User) []string {
			return []string{u.ID.String(), u.Username, orDash(u.FullName()), orDash(u.Phone), string(u.Role), strconv.FormatBool(u.Active())}
		},
	}}
}

func (s *usersScreen) title() string                   { return "Users" }
func (s *usersScreen) mount(ctx context.Context) error { return s.load(ctx) }
func (s *usersScreen) render(w io.Writer)              { s.renderTable(w) }

func (s *usersScreen) create(context.Context) error {
	s.app.nav.Redirect("/register")
	return nil
}

func (s *usersScreen) edit(ctx context.Context, id models.ID) error {
	u, ok := s.find(id)
	if !ok {
		return fmt.Errorf("no user with id %s", id)
	}

	p := s.app.prompter()
	form := validate.UserUpdateForm{
		Username: p.withDefault("Username", u.Username),
		Password: p.password("New password (empty keeps the current one)"),
	}
	if err := p.done(); err != nil {
		return err
	}
	return s.app.mutate(ctx, "User updated", func() error {
		return s.app.users.Update(ctx, id, form)
	})
}

func (s *usersScreen) remove(ctx context.Context, id models.ID) error {
	u, ok := s.find(id)
	if !ok {
		return fmt.Errorf("no user with id %s", id)
	}
	yes, err := s.app.confirm(fmt.Sprintf("Delete user %s?", u.Username))
	if err != nil || !yes {
		return err
	}
	return s.app.mutate(ctx, "User deleted", func() error {
		return s.app.users.Delete(ctx, id)
	})
}

func (s *usersScreen) setActive(ctx context.Context, id models.ID, active bool) error {
	if active {
		return s.app.mutate(ctx, "User reactivated", func() error {
			return s.app.users.Reactivate(ctx, id)
		})
	}
	return s.app.mutate(ctx, "User deactivated", func() error {
		return s.app.users.Deactivate(ctx, id)
	})
}

// registerScreen is the operator sign-up form; it goes back to the user list
// once the account exists.
type registerScreen struct {
	app    *App
	failed bool
}

func (s *registerScreen) title() string { return "Register operator" }

func (s *registerScreen) mount(ctx context.Context) error {
	p := s.app.prompter()
	form := validate.RegisterForm{
		Name:     p.text("Name"),
		Surname:  p.text("Surname"),
		Username: p.text("Username"),
		Phone:    p.text("Phone"),
		Password: p.password("Password"),
	}
	if err := p.done(); err != nil {
		s.failed = true
		return err
	}
	if err := s.app.auth.Register(ctx, form); err != nil {
		s.failed = true
		return err
	}
	s.failed = false
	s.app.notifier.Success(fmt.Sprintf("User %s registered", form.Username))
	s.app.nav.Redirect("/users")
	return nil
}

func (s *registerScreen) render(w io.Writer) {
	if s.failed {
		fmt.Fprintln(w, "Type 'refresh' to fill in the form again.")
	}
}
