package services

import (
	"context"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

type AppointmentService interface {
	List(ctx context.Context) ([]models.Appointment, error)
	Get(ctx context.Context, id models.ID) (models.Appointment, error)
	Create(ctx context.Context, form validate.AppointmentForm) error
	Update(ctx context.Context, id models.ID, form validate.AppointmentUpdateForm) error
	Delete(ctx context.Context, id models.ID) error
}

type appointmentService struct {
	res resource[models.Appointment]
}

func NewAppointmentService(api Requester) AppointmentService {
	return &appointmentService{res: resource[models.Appointment]{api: api, path: client.AppointmentsPath, envelope: "appointments"}}
}

func (s *appointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	return s.res.list(ctx)
}

func (s *appointmentService) Get(ctx context.Context, id models.ID) (models.Appointment, error) {
	return s.res.get(ctx, id)
}

func (s *appointmentService) Create(ctx context.Context, form validate.AppointmentForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.res.create(ctx, form)
}

func (s *appointmentService) Update(ctx context.Context, id models.ID, form validate.AppointmentUpdateForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.res.update(ctx, id, form)
}

func (s *appointmentService) Delete(ctx context.Context, id models.ID) error {
	return s.res.delete(ctx, id)
}
