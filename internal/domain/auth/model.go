package auth

import (
	"strings"
	"time"

	"servicecenter/internal/core/entity"
)

// UserTable is the login users table name.
const UserTable = "users"

// User is a login account. Usernames equal employee names.
type User struct {
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     string     `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Active reports whether the user may log in.
func (u *User) Active() bool {
	return u.IsActive == entity.Yes
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePassword replaces a password after checking the old one.
type ChangePassword struct {
	Username    string `json:"username" validate:"required"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// Token is the login response.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

// NormalizeName trims and collapses inner whitespace, so "  Ravi   Kumar " is "Ravi Kumar".
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
