package devapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const ctxUser = "user"

// Auth validates the bearer token and injects the account into context.
func Auth(auth *AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			u, err := auth.Verify(c.Request().Context(), parts[1])
			if errors.Is(err, ErrInactive) {
				return echo.NewHTTPError(http.StatusUnauthorized, ErrInactive.Error())
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ctxUser, u)
			return next(c)
		}
	}
}

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, _ := c.Get(ctxUser).(User)
			if _, ok := allowed[u.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// currentUser returns the account injected by Auth.
func currentUser(c echo.Context) (User, error) {
	u, ok := c.Get(ctxUser).(User)
	if !ok || u.ID == 0 {
		return User{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return u, nil
}
