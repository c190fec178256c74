package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// GiftState is the contribution state of a gift.
type GiftState string

const (
	// StateOpen accepts contributions and still needs money.
	StateOpen GiftState = "open"
	// StateFunded is fully funded but not bought yet. Contributions are
	// still admitted.
	StateFunded GiftState = "funded"
	// StatePurchased no longer accepts contributions.
	StatePurchased GiftState = "purchased"
)

// StateOf derives the gift's state from its purchase flag and summary.
func StateOf(gift *models.Gift, summary Summary) GiftState {
	switch {
	case gift.IsPurchased:
		return StatePurchased
	case summary.GoalReached():
		return StateFunded
	default:
		return StateOpen
	}
}

// Submission is a contribution request before admission.
type Submission struct {
	Amount      decimal.Decimal
	Message     string
	IsAnonymous bool
}

// Admit checks whether contributorID may contribute sub to gift.
//
// Over-funding is allowed: the remaining balance is not a cap. Amounts are
// judged after rounding to cents, the precision they are stored with.
func Admit(gift *models.Gift, contributorID int64, sub Submission) error {
	if gift == nil {
		return ErrNotFound
	}
	if gift.IsOwnedBy(contributorID) {
		return ErrInvalidContributor
	}
	if !sub.Amount.Round(2).IsPositive() {
		return ErrInvalidAmount
	}
	if gift.IsPurchased {
		return ErrGiftPurchased
	}
	return nil
}

// Prepare admits sub and builds the contribution to persist.
func Prepare(gift *models.Gift, contributorID int64, sub Submission, now time.Time) (*models.Contribution, error) {
	if err := Admit(gift, contributorID, sub); err != nil {
		return nil, err
	}
	return &models.Contribution{
		GiftID:      gift.ID,
		UserID:      contributorID,
		Amount:      sub.Amount.Round(2),
		Message:     strings.TrimSpace(sub.Message),
		IsAnonymous: sub.IsAnonymous,
		CreatedAt:   now,
	}, nil
}

// AuthorizeDelete checks that requesterID authored c.
func AuthorizeDelete(c *models.Contribution, requesterID int64) error {
	if c == nil {
		return ErrNotFound
	}
	if c.UserID != requesterID {
		return ErrForbidden
	}
	return nil
}

// MarkPurchased records actorID as the gift's purchaser.
func MarkPurchased(gift *models.Gift, actorID int64) error {
	if gift == nil {
		return ErrNotFound
	}
	if gift.IsOwnedBy(actorID) {
		return ErrInvalidContributor
	}
	if gift.IsPurchased {
		return ErrAlreadyPurchased
	}
	purchaser := actorID
	gift.IsPurchased = true
	gift.PurchasedByID = &purchaser
	return nil
}

// UnmarkPurchased clears the purchase. Only the recorded purchaser may do it.
func UnmarkPurchased(gift *models.Gift, actorID int64) error {
	if gift == nil {
		return ErrNotFound
	}
	if gift.IsOwnedBy(actorID) {
		return ErrInvalidContributor
	}
	if !gift.IsPurchased || gift.PurchasedByID == nil || *gift.PurchasedByID != actorID {
		return ErrForbidden
	}
	gift.IsPurchased = false
	gift.PurchasedByID = nil
	return nil
}
