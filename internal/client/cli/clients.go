package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

type clientsScreen struct {
	app *App
	listScreen[models.Client]
}

func newClientsScreen(a *App) *clientsScreen {
	return &clientsScreen{app: a, listScreen: listScreen[models.Client]{
		fetch: a.clients.List,
		match: func(c models.Client, q string) bool {
			return containsFold(q, c.FullName(), c.Phone)
		},
		id:      func(c models.Client) models.ID { return c.ID },
		columns: []string{"ID", "NAME", "PHONE", "NOTES"},
		row: func(c models.Client) []string {
			return []string{c.ID.String(), c.FullName(), c.Phone, orDash(c.Notes)}
		},
	}}
}

func (s *clientsScreen) title() string                   { return "Clients" }
func (s *clientsScreen) mount(ctx context.Context) error { return s.load(ctx) }
func (s *clientsScreen) render(w io.Writer)              { s.renderTable(w) }

func (s *clientsScreen) create(context.Context) error {
	s.app.nav.Redirect("/clients/new")
	return nil
}

func (s *clientsScreen) edit(ctx context.Context, id models.ID) error {
	c, ok := s.find(id)
	if !ok {
		return fmt.Errorf("no client with id %s", id)
	}

	p := s.app.prompter()
	form := validate.ClientForm{
		Name:    p.withDefault("Name", c.Name),
		Surname: p.withDefault("Surname", c.Surname),
		Phone:   p.withDefault("Phone", c.Phone),
		Notes:   p.withDefault("Notes", c.Notes),
	}
	if err := p.done(); err != nil {
		return err
	}
	return s.app.mutate(ctx, "Client updated", func() error {
		return s.app.clients.Update(ctx, id, form)
	})
}

func (s *clientsScreen) remove(ctx context.Context, id models.ID) error {
	c, ok := s.find(id)
	if !ok {
		return fmt.Errorf("no client with id %s", id)
	}
	yes, err := s.app.confirm(fmt.Sprintf("Delete client %s?", c.FullName()))
	if err != nil || !yes {
		return err
	}
	return s.app.mutate(ctx, "Client deleted", func() error {
		return s.app.clients.Delete(ctx, id)
	})
}

type newClientScreen struct {
	app    *App
	failed bool
}

func (s *newClientScreen) title() string { return "New client" }

func (s *newClientScreen) mount(ctx context.Context) error {
	p := s.app.prompter()
	form := validate.ClientForm{
		Name:    p.text("Name"),
		Surname: p.text("Surname"),
		Phone:   p.text("Phone"),
		Notes:   p.text("Notes"),
	}
	s.failed = true
	if err := p.done(); err != nil {
		return err
	}
	if err := s.app.clients.Create(ctx, form); err != nil {
		return err
	}
	s.failed = false
	s.app.notifier.Success("Client created")
	s.app.nav.Redirect("/clients")
	return nil
}

func (s *newClientScreen) render(w io.Writer) {
	if s.failed {
		fmt.Fprintln(w, "Type 'refresh' to fill in the form again or 'open /clients' to go back.")
	}
}
