package models

import "time"

// Role is the user "tipo".
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "usuario"
)

// PrimaryAdminUsername identifies the account that can never be removed.
const PrimaryAdminUsername = "admin"

// User is a user record. Secret is a bcrypt hash on the server and clear text
// in the client-side mirror.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Username  string    `json:"usuario"`
	Email     string    `json:"email"`
	Secret    string    `json:"senha,omitempty"`
	Role      Role      `json:"tipo"`
	CreatedAt time.Time `json:"dataCriacao"`
}

// WithoutSecret returns a copy safe to hand to callers.
func (u User) WithoutSecret() User {
	u.Secret = ""
	return u
}

// IsPrimaryAdmin reports whether u is the protected admin account.
func (u User) IsPrimaryAdmin() bool {
	return u.Role == RoleAdmin && u.Username == PrimaryAdminUsername
}

// StripSecrets returns copies of users without their secrets.
func StripSecrets(users []User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = u.WithoutSecret()
	}
	return out
}

// Session is the per-tab login snapshot. It never holds the secret.
type Session struct {
	User       User      `json:"usuario"`
	Role       Role      `json:"tipo"`
	Token      string    `json:"token,omitempty"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

// NewSession builds a session snapshot for u.
func NewSession(u User, token string) Session {
	return Session{
		User:       u.WithoutSecret(),
		Role:       u.Role,
		Token:      token,
		LoggedInAt: time.Now().UTC(),
	}
}
