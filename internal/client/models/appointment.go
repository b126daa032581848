package models

import "slices"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var AppointmentStatuses = []AppointmentStatus{StatusPending, StatusCompleted, StatusCancelled}

func (s AppointmentStatus) Valid() bool {
	return slices.Contains(AppointmentStatuses, s)
}

// Appointment references a service and a client by id. List and get
// responses also embed both records and the operator who attends it.
type Appointment struct {
	ID          ID                `json:"id"`
	ServiceID   ID                `json:"serviceId"`
	ClientID    ID                `json:"clientId"`
	Date        string            `json:"date"`
	Status      AppointmentStatus `json:"status"`
	Description string            `json:"description,omitempty"`

	Service    *Service `json:"service,omitempty"`
	Client     *Client  `json:"client,omitempty"`
	AttendedBy *User    `json:"attendedBy,omitempty"`
}

func (a Appointment) ClientName() string {
	if a.Client == nil {
		return ""
	}
	return a.Client.FullName()
}

func (a Appointment) ServiceName() string {
	if a.Service == nil {
		return ""
	}
	return a.Service.Name
}
