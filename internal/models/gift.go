package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Gift (cadeau) is a wishlist item owned by one user and listed under one or
// more families. OwnerID never changes after creation; IsPurchased and
// PurchasedByID are always set or cleared together.
type Gift struct {
	ID            int64           `json:"id" db:"id"`
	Title         string          `json:"titre" db:"titre"`
	Price         decimal.Decimal `json:"prix" db:"prix"`
	Description   string          `json:"description" db:"description"`
	PhotoURL      *string         `json:"photo_url,omitempty" db:"photo_url"`
	PurchaseLink  *string         `json:"lien_achat,omitempty" db:"lien_achat"`
	OwnerID       int64           `json:"owner_id" db:"owner_id"`
	IsPurchased   bool            `json:"is_purchased" db:"is_purchased"`
	PurchasedByID *int64          `json:"purchased_by_id" db:"purchased_by_id"`
	FamilyIDs     []int64         `json:"famille_ids"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOwnedBy reports whether userID is the gift's owner.
func (g *Gift) IsOwnedBy(userID int64) bool {
	return g.OwnerID == userID
}

// ListedIn reports whether the gift is listed under familyID.
func (g *Gift) ListedIn(familyID int64) bool {
	for _, id := range g.FamilyIDs {
		if id == familyID {
			return true
		}
	}
	return false
}
