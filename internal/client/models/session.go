package models

// Session is the authenticated identity held by the client.
// Token is set if and only if User is set.
type Session struct {
	User  *User
	Token string
}

func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Role returns the session role, or "" when unauthenticated.
func (s Session) Role() Role {
	if !s.Authenticated() {
		return ""
	}
	return s.User.Role
}
