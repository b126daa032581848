// Package devapi is a local stand-in for the studio's REST API, for running
// and testing the terminal client without the real backend. Data is kept in
// a SQLite database; an empty path keeps it in memory.
package devapi

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server bundles the Echo instance with the state behind it.
type Server struct {
	Echo  *echo.Echo
	Store *Store
	Auth  *AuthService
}

// NewServer opens the store, seeds the admin account and registers all
// routes.
func NewServer(ctx context.Context, cfg *Config, log zerolog.Logger) (*Server, error) {
	dsn := cfg.DBPath
	if dsn == "" {
		dsn = ":memory:"
	}
	store, err := OpenStore(ctx, dsn)
	if err != nil {
		return nil, err
	}
	auth := NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	admin, err := auth.SeedAdmin(ctx, cfg.Admin)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	log.Info().Str("username", admin.Username).Msg("admin account ready")

	return &Server{
		Echo:  NewRouter(NewHandler(store, auth, log), auth, log),
		Store: store,
		Auth:  auth,
	}, nil
}

// Close releases the database.
func (s *Server) Close() error {
	return s.Store.Close()
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(h *Handler, auth *AuthService, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))
	e.Use(Metrics())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/login", h.Login)

	// Per-route middleware keeps unmatched /api paths a plain 404.
	admin := []echo.MiddlewareFunc{Auth(auth), RBAC(RoleAdmin)}
	operator := []echo.MiddlewareFunc{Auth(auth), RBAC(RoleOperator)}

	api.POST("/auth/register", h.Register, admin...)

	// --- Users (admin) ---
	api.GET("/users", h.ListUsers, admin...)
	api.PUT("/users/:id", h.UpdateUser, admin...)
	api.DELETE("/users/:id", h.DeleteUser, admin...)
	api.PATCH("/users/:id/deactivate", h.DeactivateUser, admin...)
	api.PATCH("/users/:id/reactivate", h.ReactivateUser, admin...)

	// --- Operator data ---
	api.GET("/clients", h.ListClients, operator...)
	api.POST("/clients", h.CreateClient, operator...)
	api.PUT("/clients/:id", h.UpdateClient, operator...)
	api.DELETE("/clients/:id", h.DeleteClient, operator...)

	api.GET("/services", h.ListServices, operator...)
	api.POST("/services", h.CreateService, operator...)
	api.PUT("/services/:id", h.UpdateService, operator...)
	api.DELETE("/services/:id", h.DeleteService, operator...)

	api.GET("/appointments", h.ListAppointments, operator...)
	api.GET("/appointments/:id", h.GetAppointment, operator...)
	api.POST("/appointments", h.CreateAppointment, operator...)
	api.PUT("/appointments/:id", h.UpdateAppointment, operator...)
	api.DELETE("/appointments/:id", h.DeleteAppointment, operator...)

	return e
}
