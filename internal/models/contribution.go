package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contribution is a monetary pledge by a non-owner toward a gift's price.
// IsAnonymous is chosen at creation and never changes.
type Contribution struct {
	ID          int64           `json:"id" db:"id"`
	GiftID      int64           `json:"cadeau_id" db:"cadeau_id"`
	UserID      int64           `json:"user_id" db:"user_id"`
	Amount      decimal.Decimal `json:"montant" db:"montant"`
	Message     string          `json:"message" db:"message"`
	IsAnonymous bool            `json:"is_anonymous" db:"is_anonymous"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ContributionStats summarises a user's own contributions.
type ContributionStats struct {
	Total decimal.Decimal `json:"total_contribue"`
	Count int             `json:"nombre_contributions"`
}

// FamilyContribution is a contribution joined with its gift, as used by the
// family recap.
type FamilyContribution struct {
	Contribution
	GiftTitle   string `json:"cadeau_titre"`
	GiftOwnerID int64  `json:"cadeau_owner"`
}
