package services

import (
	"context"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

// CatalogService manages the studio's services (the things clients book).
type CatalogService interface {
	List(ctx context.Context) ([]models.Service, error)
	Create(ctx context.Context, form validate.ServiceForm) error
	Update(ctx context.Context, id models.ID, form validate.ServiceForm) error
	Delete(ctx context.Context, id models.ID) error
}

type catalogService struct {
	res resource[models.Service]
}

func NewCatalogService(api Requester) CatalogService {
	return &catalogService{res: resource[models.Service]{api: api, path: client.ServicesPath, envelope: "services"}}
}

func (s *catalogService) List(ctx context.Context) ([]models.Service, error) {
	return s.res.list(ctx)
}

func (s *catalogService) Create(ctx context.Context, form validate.ServiceForm) error {
	if err := form.ValidateCreate(); err != nil {
		return err
	}
	return s.res.create(ctx, form)
}

func (s *catalogService) Update(ctx context.Context, id models.ID, form validate.ServiceForm) error {
	if err := form.ValidateEdit(); err != nil {
		return err
	}
	return s.res.update(ctx, id, form)
}

func (s *catalogService) Delete(ctx context.Context, id models.ID) error {
	return s.res.delete(ctx, id)
}
