package models

import (
	"fmt"
	"time"
)

// User represents an account known to the external authentication service.
// The ID is assigned by that service and carried in the token subject.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	TelegramID *int64    `json:"-" db:"telegram_id"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the user's full name
func (u *User) FullName() string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}

// DisplayName returns the best display name for the user
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return fmt.Sprintf("Utilisateur #%d", u.ID)
}
