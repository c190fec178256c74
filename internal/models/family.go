package models

import "time"

// Member roles inside a family.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Family represents a group through which gifts and their contribution pools
// are shared.
type Family struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"nom" db:"nom"`
	Description string    `json:"description" db:"description"`
	CreatorID   int64     `json:"creator_id" db:"creator_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Members     []Member  `json:"membres,omitempty"`
}

// Member is the public projection of a family member.
type Member struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// IsCreator reports whether userID created the family.
func (f *Family) IsCreator(userID int64) bool {
	return f.CreatorID == userID
}
