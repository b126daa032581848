package services

import (
	"context"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

// ClientService manages the signed-in operator's customers.
type ClientService interface {
	List(ctx context.Context) ([]models.Client, error)
	Create(ctx context.Context, form validate.ClientForm) error
	Update(ctx context.Context, id models.ID, form validate.ClientForm) error
	Delete(ctx context.Context, id models.ID) error
}

type clientService struct {
	res resource[models.Client]
}

func NewClientService(api Requester) ClientService {
	return &clientService{res: resource[models.Client]{api: api, path: client.ClientsPath, envelope: "clients"}}
}

func (s *clientService) List(ctx context.Context) ([]models.Client, error) {
	return s.res.list(ctx)
}

func (s *clientService) Create(ctx context.Context, form validate.ClientForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.res.create(ctx, form)
}

func (s *clientService) Update(ctx context.Context, id models.ID, form validate.ClientForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.res.update(ctx, id, form)
}

func (s *clientService) Delete(ctx context.Context, id models.ID) error {
	return s.res.delete(ctx, id)
}
