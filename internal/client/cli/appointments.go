package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

var (
	errNoClients  = errors.New("add a client before booking an appointment")
	errNoServices = errors.New("add a service before booking an appointment")
)

// appointmentsScreen is the operator's agenda; it doubles as the operator
// dashboard.
type appointmentsScreen struct {
	app       *App
	dashboard bool
	listScreen[models.Appointment]
}

func newAppointmentsScreen(a *App, dashboard bool) *appointmentsScreen {
	return &appointmentsScreen{app: a, dashboard: dashboard, listScreen: listScreen[models.Appointment]{
		fetch: a.appointments.List,
		match: func(ap models.Appointment, q string) bool {
			return containsFold(q, ap.ClientName())
		},
		id:      func(ap models.Appointment) models.ID { return ap.ID },
		columns: []string{"ID", "DATE", "CLIENT", "SERVICE", "STATUS"},
		row: func(ap models.Appointment) []string {
			return []string{ap.ID.String(), displayDate(ap.Date), orDash(ap.ClientName()), orDash(ap.ServiceName()), string(ap.Status)}
		},
	}}
}

func (s *appointmentsScreen) title() string {
	if s.dashboard {
		return "Dashboard"
	}
	return "Appointments"
}

func (s *appointmentsScreen) mount(ctx context.Context) error { return s.load(ctx) }

func (s *appointmentsScreen) render(w io.Writer) {
	if s.dashboard {
		if u := s.app.sessions.Current().User; u != nil {
			fmt.Fprintf(w, "Hello %s. Your appointments:\n", u.FullName())
		}
	}
	s.renderTable(w)
}

func (s *appointmentsScreen) create(context.Context) error {
	s.app.nav.Redirect("/appointments/new")
	return nil
}

func (s *appointmentsScreen) edit(_ context.Context, id models.ID) error {
	s.app.nav.Redirect(fmt.Sprintf("/appointments/%s/edit", id))
	return nil
}

func (s *appointmentsScreen) remove(ctx context.Context, id models.ID) error {
	prompt := fmt.Sprintf("Delete appointment %s?", id)
	if ap, ok := s.find(id); ok {
		prompt = fmt.Sprintf("Delete the appointment of %s on %s?", orDash(ap.ClientName()), displayDate(ap.Date))
	}
	yes, err := s.app.confirm(prompt)
	if err != nil || !yes {
		return err
	}
	return s.app.mutate(ctx, "Appointment deleted", func() error {
		return s.app.appointments.Delete(ctx, id)
	})
}

// newAppointmentScreen books a client into a service. Both lists are
// fetched on mount so the operator can pick ids from them.
type newAppointmentScreen struct {
	app    *App
	failed bool
}

func (s *newAppointmentScreen) title() string { return "New appointment" }

func (s *newAppointmentScreen) mount(ctx context.Context) error {
	s.failed = true
	clients, err := s.app.clients.List(ctx)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		return errNoClients
	}
	catalog, err := s.app.catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(catalog) == 0 {
		return errNoServices
	}

	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{c.ID.String(), c.FullName(), c.Phone})
	}
	writeTable(s.app.out, []string{"CLIENT", "NAME", "PHONE"}, rows)
	rows = rows[:0]
	for _, sv := range catalog {
		rows = append(rows, []string{sv.ID.String(), sv.Name, formatPrice(sv.Price)})
	}
	writeTable(s.app.out, []string{"SERVICE", "NAME", "PRICE"}, rows)

	p := s.app.prompter()
	form := validate.AppointmentForm{
		ClientID:    models.ID(p.text("Client id")),
		ServiceID:   models.ID(p.text("Service id")),
		Date:        p.text("Date (" + validate.DateLayout + ")"),
		Status:      models.AppointmentStatus(p.withDefault("Status", string(models.StatusPending))),
		Description: p.text("Description"),
	}
	if err := p.done(); err != nil {
		return err
	}
	if err := s.app.appointments.Create(ctx, form); err != nil {
		return err
	}
	s.failed = false
	s.app.notifier.Success("Appointment created")
	s.app.nav.Redirect("/appointments")
	return nil
}

func (s *newAppointmentScreen) render(w io.Writer) {
	if s.failed {
		fmt.Fprintln(w, "Type 'refresh' to fill in the form again or 'open /appointments' to go back.")
	}
}

// editAppointmentScreen loads one appointment and prompts for its new
// values, offering the current ones as defaults.
type editAppointmentScreen struct {
	app    *App
	id     models.ID
	failed bool
}

func (s *editAppointmentScreen) title() string { return "Edit appointment " + s.id.String() }

func (s *editAppointmentScreen) mount(ctx context.Context) error {
	s.failed = true
	ap, err := s.app.appointments.Get(ctx, s.id)
	if client.IsStatus(err, http.StatusNotFound) {
		s.failed = false
		s.app.notifier.Error("Appointment " + s.id.String() + " not found")
		s.app.nav.Redirect("/appointments")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.app.out, "Client: %s\n", orDash(ap.ClientName()))

	p := s.app.prompter()
	form := validate.AppointmentUpdateForm{
		ServiceID:   models.ID(p.withDefault("Service id", ap.ServiceID.String())),
		Date:        p.withDefault("Date ("+validate.DateLayout+")", displayDate(ap.Date)),
		Status:      models.AppointmentStatus(p.withDefault("Status (pending, completed, cancelled)", string(ap.Status))),
		Description: p.withDefault("Description", ap.Description),
	}
	if err := p.done(); err != nil {
		return err
	}
	if err := s.app.appointments.Update(ctx, s.id, form); err != nil {
		return err
	}
	s.failed = false
	s.app.notifier.Success("Appointment updated")
	s.app.nav.Redirect("/appointments")
	return nil
}

func (s *editAppointmentScreen) render(w io.Writer) {
	if s.failed {
		fmt.Fprintln(w, "Type 'refresh' to try again or 'open /appointments' to go back.")
	}
}

// displayDate shows API dates in the layout the forms accept, in local
// time. Unparseable values are shown as they are.
func displayDate(s string) string {
	t, err := validate.ParseDate(s)
	if err != nil {
		return s
	}
	return t.In(time.Local).Format(validate.DateLayout)
}
