package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/validate"
)

var ErrBadLoginResponse = errors.New("login response is missing the token or the user")

// SessionManager is the part of session.Manager the auth service drives.
type SessionManager interface {
	Login(ctx context.Context, token string, user *models.User) (models.Session, error)
	Logout(ctx context.Context) (models.Session, error)
}

// AuthService signs users in and out and lets an admin register operators.
type AuthService interface {
	Login(ctx context.Context, username, password string) (models.Session, error)
	Register(ctx context.Context, form validate.RegisterForm) error
	Logout(ctx context.Context) (models.Session, error)
}

type authService struct {
	api      Requester
	sessions SessionManager
}

func NewAuthService(api Requester, sessions SessionManager) AuthService {
	return &authService{api: api, sessions: sessions}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login posts the credentials without a bearer token, so a rejection comes
// back as *client.APIError instead of expiring the session.
func (a *authService) Login(ctx context.Context, username, password string) (models.Session, error) {
	form := validate.LoginForm{Username: username, Password: password}
	if err := form.Validate(); err != nil {
		return models.Session{}, err
	}

	var resp loginResponse
	err := a.api.Do(ctx, http.MethodPost, client.AuthPath+"/login", form, &resp, client.WithoutAuth())
	if err != nil {
		return models.Session{}, err
	}
	if resp.Token == "" || resp.User == nil {
		return models.Session{}, ErrBadLoginResponse
	}
	return a.sessions.Login(ctx, resp.Token, resp.User)
}

func (a *authService) Register(ctx context.Context, form validate.RegisterForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	return a.api.Do(ctx, http.MethodPost, client.AuthPath+"/register", form, nil)
}

func (a *authService) Logout(ctx context.Context) (models.Session, error) {
	return a.sessions.Logout(ctx)
}
