package services

import (
	"context"
	"net/http"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

// UserService manages operator accounts. Admin only on the server side.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id models.ID, form validate.UserUpdateForm) error
	Delete(ctx context.Context, id models.ID) error
	Deactivate(ctx context.Context, id models.ID) error
	Reactivate(ctx context.Context, id models.ID) error
}

type userService struct {
	res resource[models.User]
}

func NewUserService(api Requester) UserService {
	return &userService{res: resource[models.User]{api: api, path: client.UsersPath, envelope: "users"}}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.res.list(ctx)
}

func (s *userService) Update(ctx context.Context, id models.ID, form validate.UserUpdateForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return s.res.update(ctx, id, form)
}

func (s *userService) Delete(ctx context.Context, id models.ID) error {
	return s.res.delete(ctx, id)
}

func (s *userService) Deactivate(ctx context.Context, id models.ID) error {
	return s.res.api.Do(ctx, http.MethodPatch, s.res.itemPath(id, "deactivate"), nil, nil)
}

func (s *userService) Reactivate(ctx context.Context, id models.ID) error {
	return s.res.api.Do(ctx, http.MethodPatch, s.res.itemPath(id, "reactivate"), nil, nil)
}
