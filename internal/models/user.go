package models

import "time"

// User represents an account holder
type User struct {
	ID                  string
	Username            string
	Email               string
	FullName            string
	PasswordHash        string
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasPendingReset reports whether a reset token is stored and not yet expired
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != "" && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
}

// PublicUser is the account view returned to clients; it never carries secrets
type PublicUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Public returns the client-safe view of the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
	}
}
