package devapi

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Handler serves every /api route.
type Handler struct {
	store *Store
	auth  *AuthService
	log   zerolog.Logger
}

func NewHandler(store *Store, auth *AuthService, log zerolog.Logger) *Handler {
	return &Handler{store: store, auth: auth, log: log}
}

type messageResponse struct {
	Message string `json:"message"`
}

// flexID accepts an id sent as a JSON number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(n)
	return nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

func parseDate(s string) (string, error) {
	for _, l := range dateLayouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return t.Format(time.RFC3339), nil
		}
	}
	return "", echo.NewHTTPError(http.StatusBadRequest, "date must be a valid date")
}

// --- auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	token, u, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInactive):
		LoginsTotal.WithLabelValues("inactive").Inc()
		return err
	case err != nil:
		LoginsTotal.WithLabelValues("invalid").Inc()
		return err
	}
	LoginsTotal.WithLabelValues("ok").Inc()
	h.log.Info().Str("username", u.Username).Str("role", u.Role).Msg("login")
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: u})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Surname  string `json:"surname" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Phone    string `json:"phone" validate:"required,number,min=7,max=15"`
	Password string `json:"password" validate:"required,min=6"`
}

type userResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	u, err := h.auth.Register(c.Request().Context(), User{
		Name:     req.Name,
		Surname:  req.Surname,
		Username: req.Username,
		Phone:    req.Phone,
	}, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{Message: "user registered", User: u})
}

// --- users ---

func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.store.Operators(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]User{"users": users})
}

type userUpdateRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req userUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	u, err := h.auth.UpdateCredentials(c.Request().Context(), id, req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "user updated", User: u})
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

func (h *Handler) DeactivateUser(c echo.Context) error { return h.setActive(c, false) }
func (h *Handler) ReactivateUser(c echo.Context) error { return h.setActive(c, true) }

func (h *Handler) setActive(c echo.Context, active bool) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	u, err := h.store.SetActive(c.Request().Context(), id, active)
	if err != nil {
		return err
	}
	msg := "user deactivated"
	if active {
		msg = "user reactivated"
	}
	return c.JSON(http.StatusOK, userResponse{Message: msg, User: u})
}

// --- clients ---

type clientRequest struct {
	Name    string `json:"name" validate:"required,min=3"`
	Surname string `json:"surname" validate:"required,min=3"`
	Phone   string `json:"phone" validate:"required,number,min=7,max=15"`
	Notes   string `json:"notes"`
}

func (r clientRequest) client() Client {
	return Client{Name: r.Name, Surname: r.Surname, Phone: r.Phone, Notes: r.Notes}
}

type clientResponse struct {
	Message string `json:"message"`
	Client  Client `json:"client"`
}

func (h *Handler) ListClients(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	clients, err := h.store.Clients(c.Request().Context(), u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]Client{"clients": clients})
}

func (h *Handler) CreateClient(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req clientRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	cl, err := h.store.CreateClient(c.Request().Context(), u.ID, req.client())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, clientResponse{Message: "client created", Client: cl})
}

func (h *Handler) UpdateClient(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req clientRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	cl, err := h.store.UpdateClient(c.Request().Context(), u.ID, id, req.client())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clientResponse{Message: "client updated", Client: cl})
}

func (h *Handler) DeleteClient(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteClient(c.Request().Context(), u.ID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "client deleted"})
}

// --- services ---

type serviceRequest struct {
	Name            string  `json:"name" validate:"required"`
	Price           float64 `json:"price" validate:"gt=0"`
	DurationMinutes int     `json:"durationMinutes" validate:"min=5"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
}

func (r serviceRequest) service() Service {
	return Service{
		Name:            r.Name,
		Price:           r.Price,
		DurationMinutes: r.DurationMinutes,
		Category:        r.Category,
		Description:     r.Description,
	}
}

type serviceResponse struct {
	Message string  `json:"message"`
	Service Service `json:"service"`
}

func (h *Handler) ListServices(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	services, err := h.store.Services(c.Request().Context(), u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]Service{"services": services})
}

func (h *Handler) CreateService(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req serviceRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	sv, err := h.store.CreateService(c.Request().Context(), u.ID, req.service())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, serviceResponse{Message: "service created", Service: sv})
}

func (h *Handler) UpdateService(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req serviceRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	sv, err := h.store.UpdateService(c.Request().Context(), u.ID, id, req.service())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serviceResponse{Message: "service updated", Service: sv})
}

func (h *Handler) DeleteService(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteService(c.Request().Context(), u.ID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "service deleted"})
}

// --- appointments ---

type appointmentRequest struct {
	ServiceID   flexID `json:"serviceId" validate:"required"`
	ClientID    flexID `json:"clientId" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Description string `json:"description"`
}

type appointmentUpdateRequest struct {
	ServiceID   flexID `json:"serviceId" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=pending completed cancelled"`
	Description string `json:"description"`
}

type appointmentResponse struct {
	Message     string      `json:"message"`
	Appointment Appointment `json:"appointment"`
}

func (h *Handler) ListAppointments(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.store.Appointments(c.Request().Context(), u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]AppointmentView{"appointments": list})
}

func (h *Handler) GetAppointment(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.store.Appointment(c.Request().Context(), u.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req appointmentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	a, err := h.store.CreateAppointment(c.Request().Context(), u.ID, Appointment{
		ServiceID:   int64(req.ServiceID),
		ClientID:    int64(req.ClientID),
		Date:        date,
		Status:      status,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appointmentResponse{Message: "appointment created", Appointment: a})
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req appointmentUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}
	a, err := h.store.UpdateAppointment(c.Request().Context(), u.ID, id, Appointment{
		ServiceID:   int64(req.ServiceID),
		Date:        date,
		Status:      req.Status,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appointmentResponse{Message: "appointment updated", Appointment: a})
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteAppointment(c.Request().Context(), u.ID, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "appointment deleted"})
}
