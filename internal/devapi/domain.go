package devapi

import "errors"

const (
	RoleAdmin    = "admin"
	RoleOperator = "user"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is deactivated")
	ErrUnknownClient      = errors.New("unknown client")
	ErrUnknownService     = errors.New("unknown service")
)

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Username     string `json:"username"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	IsActive     bool   `json:"isActive"`
	PasswordHash string `json:"-"`
}

type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes,omitempty"`
}

type Service struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
	Category        string  `json:"category,omitempty"`
	Description     string  `json:"description,omitempty"`
}

type Appointment struct {
	ID          int64  `json:"id"`
	ServiceID   int64  `json:"serviceId"`
	ClientID    int64  `json:"clientId"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

// AppointmentView is an appointment as listed: with its client, service and
// the operator attending it embedded.
type AppointmentView struct {
	Appointment
	Service    *Service `json:"service,omitempty"`
	Client     *Client  `json:"client,omitempty"`
	AttendedBy *User    `json:"attendedBy,omitempty"`
}
