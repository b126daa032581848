package devapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *Config {
	return &Config{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Admin:      AdminConfig{Username: "admin", Password: "admin123", Name: "Studio", Surname: "Admin"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(context.Background(), testConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func call(t *testing.T, srv *Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func login(t *testing.T, srv *Server, username, password string) string {
	t.Helper()
	code, body := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, code, body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func registerOperator(t *testing.T, srv *Server, adminToken, username string) {
	t.Helper()
	code, body := call(t, srv, http.MethodPost, "/api/auth/register", adminToken, map[string]string{
		"name": "Ana", "surname": "Lopez", "username": username, "phone": "5551234", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code, body)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	code, body := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin123"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["role"])
	assert.Equal(t, float64(1), user["id"])
	assert.NotContains(t, user, "PasswordHash")

	code, body = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", body["message"])

	code, body = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", body["message"])

	code, _ = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthAndRoles(t *testing.T) {
	srv := newTestServer(t)
	adminToken := login(t, srv, "admin", "admin123")
	registerOperator(t, srv, adminToken, "ana")
	opToken := login(t, srv, "ana", "secret1")

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"no token", "/api/clients", "", http.StatusUnauthorized},
		{"garbage token", "/api/clients", "garbage", http.StatusUnauthorized},
		{"admin on operator data", "/api/clients", adminToken, http.StatusForbidden},
		{"operator on users", "/api/users", opToken, http.StatusForbidden},
		{"operator on own data", "/api/clients", opToken, http.StatusOK},
		{"admin on users", "/api/users", adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := call(t, srv, http.MethodGet, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, code, body)
			if code >= 400 {
				assert.NotEmpty(t, body["message"])
			}
		})
	}

	code, _ := call(t, srv, http.MethodGet, "/api/nowhere", opToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)
	adminToken := login(t, srv, "admin", "admin123")

	code, body := call(t, srv, http.MethodPost, "/api/auth/register", adminToken, map[string]string{
		"name": "Ana", "surname": "Lopez", "username": "ana", "phone": "12ab", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "phone")

	registerOperator(t, srv, adminToken, "ana")
	code, body = call(t, srv, http.MethodPost, "/api/auth/register", adminToken, map[string]string{
		"name": "Ana", "surname": "Lopez", "username": "ANA", "phone": "5551234", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "username already taken", body["message"])
}

func TestUsers_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	adminToken := login(t, srv, "admin", "admin123")
	registerOperator(t, srv, adminToken, "ana")
	opToken := login(t, srv, "ana", "secret1")

	code, body := call(t, srv, http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].(map[string]any)["username"])

	code, body = call(t, srv, http.MethodPatch, "/api/users/2/deactivate", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["user"].(map[string]any)["isActive"])

	// deactivated: cannot log in, and the old token stops working
	code, body = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ana", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "account is deactivated", body["message"])
	code, _ = call(t, srv, http.MethodGet, "/api/clients", opToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, srv, http.MethodPatch, "/api/users/2/reactivate", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	login(t, srv, "ana", "secret1")

	code, _ = call(t, srv, http.MethodPut, "/api/users/2", adminToken, map[string]string{"username": "ana2"})
	require.Equal(t, http.StatusOK, code)
	login(t, srv, "ana2", "secret1")

	code, _ = call(t, srv, http.MethodPut, "/api/users/2", adminToken, map[string]string{"username": "ana2", "password": "newpass"})
	require.Equal(t, http.StatusOK, code)
	login(t, srv, "ana2", "newpass")

	// the admin account is not managed through /users
	code, body = call(t, srv, http.MethodDelete, "/api/users/1", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not found", body["message"])

	code, _ = call(t, srv, http.MethodDelete, "/api/users/2", adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, srv, http.MethodDelete, "/api/users/2", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOperatorDataIsScoped(t *testing.T) {
	srv := newTestServer(t)
	adminToken := login(t, srv, "admin", "admin123")
	registerOperator(t, srv, adminToken, "ana")
	registerOperator(t, srv, adminToken, "eva")
	ana := login(t, srv, "ana", "secret1")
	eva := login(t, srv, "eva", "secret1")

	code, body := call(t, srv, http.MethodPost, "/api/clients", ana, map[string]string{"name": "Maria", "surname": "Perez", "phone": "5550001"})
	require.Equal(t, http.StatusCreated, code, body)

	_, body = call(t, srv, http.MethodGet, "/api/clients", ana, nil)
	assert.Len(t, body["clients"], 1)
	_, body = call(t, srv, http.MethodGet, "/api/clients", eva, nil)
	assert.Len(t, body["clients"], 0)

	code, body = call(t, srv, http.MethodDelete, "/api/clients/1", eva, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not found", body["message"])

	code, _ = call(t, srv, http.MethodPut, "/api/clients/1", ana, map[string]string{"name": "Maria", "surname": "Gomez", "phone": "5550002"})
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, srv, http.MethodDelete, "/api/clients/1", ana, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAppointments(t *testing.T) {
	srv := newTestServer(t)
	adminToken := login(t, srv, "admin", "admin123")
	registerOperator(t, srv, adminToken, "ana")
	ana := login(t, srv, "ana", "secret1")

	code, _ := call(t, srv, http.MethodPost, "/api/clients", ana, map[string]string{"name": "Maria", "surname": "Perez", "phone": "5550001"})
	require.Equal(t, http.StatusCreated, code)
	code, body := call(t, srv, http.MethodPost, "/api/services", ana, map[string]any{"name": "Gel", "price": 25.5, "durationMinutes": 45})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = call(t, srv, http.MethodPost, "/api/services", ana, map[string]any{"name": "Quick", "price": 5, "durationMinutes": 2})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "durationMinutes")

	code, body = call(t, srv, http.MethodPost, "/api/appointments", ana, map[string]any{"serviceId": 9, "clientId": 1, "date": "2025-03-01T10:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "unknown service", body["message"])

	code, body = call(t, srv, http.MethodPost, "/api/appointments", ana, map[string]any{"serviceId": "1", "clientId": 1, "date": "not a date"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "date must be a valid date", body["message"])

	code, body = call(t, srv, http.MethodPost, "/api/appointments", ana, map[string]any{"serviceId": "1", "clientId": 1, "date": "2025-03-01T10:00:00Z"})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "pending", body["appointment"].(map[string]any)["status"])

	code, body = call(t, srv, http.MethodGet, "/api/appointments", ana, nil)
	require.Equal(t, http.StatusOK, code)
	list := body["appointments"].([]any)
	require.Len(t, list, 1)
	ap := list[0].(map[string]any)
	assert.Equal(t, "Maria", ap["client"].(map[string]any)["name"])
	assert.Equal(t, "Gel", ap["service"].(map[string]any)["name"])
	assert.Equal(t, "ana", ap["attendedBy"].(map[string]any)["username"])

	code, body = call(t, srv, http.MethodPut, "/api/appointments/1", ana, map[string]any{"serviceId": 1, "date": "2025-03-02T11:00:00Z", "status": "completed"})
	require.Equal(t, http.StatusOK, code, body)

	code, body = call(t, srv, http.MethodGet, "/api/appointments/1", ana, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, float64(1), body["clientId"])

	code, _ = call(t, srv, http.MethodPut, "/api/appointments/1", ana, map[string]any{"serviceId": 1, "date": "2025-03-02T11:00:00Z", "status": "lost"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, srv, http.MethodDelete, "/api/appointments/1", ana, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = call(t, srv, http.MethodDelete, "/api/appointments/1", ana, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not found", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	login(t, srv, "admin", "admin123")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "agenda_devapi_http_requests_total")
	assert.Contains(t, rec.Body.String(), `agenda_devapi_logins_total{result="ok"}`)
}
