package models

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	// RoleOperator is the service provider account, sent as "user" by the API.
	RoleOperator Role = "user"
)

type User struct {
	ID       ID     `json:"id"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
	IsActive *bool  `json:"isActive,omitempty"`
}

func (u User) IsAdmin() bool    { return u.Role == RoleAdmin }
func (u User) IsOperator() bool { return u.Role == RoleOperator }

// Active treats a missing flag as active.
func (u User) Active() bool { return u.IsActive == nil || *u.IsActive }

func (u User) FullName() string {
	switch {
	case u.Name == "":
		return u.Surname
	case u.Surname == "":
		return u.Name
	}
	return u.Name + " " + u.Surname
}
