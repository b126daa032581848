package validate

import (
	"fmt"
	"time"

	"github.com/nailstudio/agenda/internal/client/models"
)

type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required" trim:"-"`
}

func (f *LoginForm) Validate() error { return check(f).orNil() }

// RegisterForm creates an operator account.
type RegisterForm struct {
	Name     string `json:"name" validate:"required,min=3"`
	Surname  string `json:"surname" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Phone    string `json:"phone" validate:"required,digits,min=7,max=15"`
	Password string `json:"password" validate:"required,min=6" trim:"-"`
}

func (f *RegisterForm) Validate() error { return check(f).orNil() }

// UserUpdateForm changes an account's credentials; an empty password keeps
// the current one.
type UserUpdateForm struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6" trim:"-"`
}

func (f *UserUpdateForm) Validate() error { return check(f).orNil() }

type ClientForm struct {
	Name    string `json:"name" validate:"required,min=3"`
	Surname string `json:"surname" validate:"required,min=3"`
	Phone   string `json:"phone" validate:"required,digits,min=7,max=15"`
	Notes   string `json:"notes"`
}

func (f *ClientForm) Validate() error { return check(f).orNil() }

type ServiceForm struct {
	Name            string  `json:"name" validate:"required"`
	Price           float64 `json:"price" validate:"gt=0"`
	DurationMinutes int     `json:"durationMinutes"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
}

// ValidateCreate applies the creation threshold for duration.
func (f *ServiceForm) ValidateCreate() error { return f.validate(MinDurationCreate) }

// ValidateEdit applies the stricter edit threshold for duration.
func (f *ServiceForm) ValidateEdit() error { return f.validate(MinDurationEdit) }

func (f *ServiceForm) validate(minDuration int) error {
	errs := check(f)
	if err := v.Var(f.DurationMinutes, fmt.Sprintf("min=%d", minDuration)); err != nil {
		errs["durationMinutes"] = message("durationMinutes", "min", fmt.Sprint(minDuration), 0)
	}
	return errs.orNil()
}

// AppointmentForm creates an appointment. On success Date is rewritten to
// RFC 3339 and an empty Status becomes pending.
type AppointmentForm struct {
	ServiceID   models.ID                `json:"serviceId" validate:"required"`
	ClientID    models.ID                `json:"clientId" validate:"required"`
	Date        string                   `json:"date" validate:"required,appointment_date"`
	Status      models.AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=pending completed cancelled"`
	Description string                   `json:"description"`
}

func (f *AppointmentForm) Validate() error {
	if err := check(f).orNil(); err != nil {
		return err
	}
	if f.Status == "" {
		f.Status = models.StatusPending
	}
	f.Date = normalizeDate(f.Date)
	return nil
}

// AppointmentUpdateForm edits an appointment; the client cannot change.
type AppointmentUpdateForm struct {
	ServiceID   models.ID                `json:"serviceId" validate:"required"`
	Date        string                   `json:"date" validate:"required,appointment_date"`
	Status      models.AppointmentStatus `json:"status" validate:"required,oneof=pending completed cancelled"`
	Description string                   `json:"description"`
}

func (f *AppointmentUpdateForm) Validate() error {
	if err := check(f).orNil(); err != nil {
		return err
	}
	f.Date = normalizeDate(f.Date)
	return nil
}

func normalizeDate(s string) string {
	t, err := ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format(time.RFC3339)
}
