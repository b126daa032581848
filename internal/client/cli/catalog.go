package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

type servicesScreen struct {
	app *App
	listScreen[models.Service]
}

func newServicesScreen(a *App) *servicesScreen {
	return &servicesScreen{app: a, listScreen: listScreen[models.Service]{
		fetch: a.catalog.List,
		match: func(sv models.Service, q string) bool {
			return containsFold(q, sv.Name, sv.Category)
		},
		id:      func(sv models.Service) models.ID { return sv.ID },
		columns: []string{"ID", "NAME", "PRICE", "MINUTES", "CATEGORY"},
		row: func(sv models.Service) []string {
			return []string{sv.ID.String(), sv.Name, formatPrice(sv.Price), strconv.Itoa(sv.DurationMinutes), orDash(sv.Category)}
		},
	}}
}

func (s *servicesScreen) title() string                   { return "Services" }
func (s *servicesScreen) mount(ctx context.Context) error { return s.load(ctx) }
func (s *servicesScreen) render(w io.Writer)              { s.renderTable(w) }

func (s *servicesScreen) create(context.Context) error {
	s.app.nav.Redirect("/services/new")
	return nil
}

func (s *servicesScreen) edit(ctx context.Context, id models.ID) error {
	sv, ok := s.find(id)
	if !ok {
		return fmt.Errorf("no service with id %s", id)
	}

	p := s.app.prompter()
	form := validate.ServiceForm{Name: p.withDefault("Name", sv.Name)}
	price := p.withDefault("Price", formatPrice(sv.Price))
	duration := p.withDefault("Duration (minutes)", strconv.Itoa(sv.DurationMinutes))
	form.Category = p.withDefault("Category", sv.Category)
	form.Description = p.withDefault("Description", sv.Description)
	if err := p.done(); err != nil {
		return err
	}

	var err error
	if form.Price, form.DurationMinutes, err = parseServiceNumbers(price, duration); err != nil {
		return err
	}
	return s.app.mutate(ctx, "Service updated", func() error {
		return s.app.catalog.Update(ctx, id, form)
	})
}

func (s *servicesScreen) remove(ctx context.Context, id models.ID) error {
	sv, ok := s.find(id)
	if !ok {
		return fmt.Errorf("no service with id %s", id)
	}
	yes, err := s.app.confirm(fmt.Sprintf("Delete service %s?", sv.Name))
	if err != nil || !yes {
		return err
	}
	return s.app.mutate(ctx, "Service deleted", func() error {
		return s.app.catalog.Delete(ctx, id)
	})
}

type newServiceScreen struct {
	app    *App
	failed bool
}

func (s *newServiceScreen) title() string { return "New service" }

func (s *newServiceScreen) mount(ctx context.Context) error {
	p := s.app.prompter()
	form := validate.ServiceForm{Name: p.text("Name")}
	price := p.text("Price")
	duration := p.text("Duration (minutes)")
	form.Category = p.text("Category")
	form.Description = p.text("Description")

	s.failed = true
	if err := p.done(); err != nil {
		return err
	}
	var err error
	if form.Price, form.DurationMinutes, err = parseServiceNumbers(price, duration); err != nil {
		return err
	}
	if err := s.app.catalog.Create(ctx, form); err != nil {
		return err
	}
	s.failed = false
	s.app.notifier.Success("Service created")
	s.app.nav.Redirect("/services")
	return nil
}

func (s *newServiceScreen) render(w io.Writer) {
	if s.failed {
		fmt.Fprintln(w, "Type 'refresh' to fill in the form again or 'open /services' to go back.")
	}
}
