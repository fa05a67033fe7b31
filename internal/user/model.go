package user

import (
	"time"

	"storefront-be/internal/auth"
)

type User struct {
	ID        uint
	Email     string
	Name      string
	Password  string
	Role      auth.Role
	CreatedAt time.Time
}

func (u *User) Identity() auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"-"`
}
