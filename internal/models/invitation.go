package models

import "time"

// Invitation invites an email address to join a family. Token is a UUID.
type Invitation struct {
	ID         int64     `json:"id" db:"id"`
	FamilyID   int64     `json:"famille_id" db:"famille_id"`
	Email      string    `json:"email" db:"email"`
	Token      string    `json:"token" db:"token"`
	InvitedBy  int64     `json:"invited_by" db:"invited_by"`
	Accepted   bool      `json:"accepted" db:"accepted"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	FamilyName string    `json:"famille_nom,omitempty"`
}

// Expired reports whether the invitation can no longer be accepted at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// JoinRequest (demande d'adhésion) is a user's request to join a family.
type JoinRequest struct {
	ID        int64     `json:"id" db:"id"`
	FamilyID  int64     `json:"famille_id" db:"famille_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
}

// TelegramLink is a one-time code a user sends to the bot to link their
// Telegram account.
type TelegramLink struct {
	Code      string    `json:"code" db:"code"`
	UserID    int64     `json:"-" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
