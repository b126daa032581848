package client

const (
	AuthPath         = "/auth"
	UsersPath        = "/users"
	ClientsPath      = "/clients"
	ServicesPath     = "/services"
	AppointmentsPath = "/appointments"
)
