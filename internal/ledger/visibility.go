package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// AnonymousPlaceholder replaces the contributor name of anonymous
// contributions.
const AnonymousPlaceholder = "Anonyme"

// VisibleContribution is a contribution as shown to a non-owner. It never
// carries the contributor's user id.
type VisibleContribution struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"montant"`
	Message     string          `json:"message"`
	IsAnonymous bool            `json:"is_anonymous"`
	CreatedAt   time.Time       `json:"created_at"`
	Contributor string          `json:"contributeur"`
}

// VisibleState is everything a viewer may see of a gift's contributions.
type VisibleState struct {
	Summary
	Contributions []VisibleContribution `json:"contributions"`
}

// Names maps user ids to display names.
type Names map[int64]string

// Resolve returns the display name for userID.
func (n Names) Resolve(userID int64) string {
	if name, ok := n[userID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Utilisateur #%d", userID)
}

// VisibleStateFor computes what viewerID may see of the gift's contributions.
//
// The owner gets an empty state (zero total, remaining equal to the price, no
// entries) whatever the actual contributions are. Anyone else gets the full
// aggregate and every contribution, each attributed either to its author's
// display name or to AnonymousPlaceholder according to its own flag.
func VisibleStateFor(gift *models.Gift, viewerID int64, contributions []*models.Contribution, names Names) VisibleState {
	if gift.IsOwnedBy(viewerID) {
		return VisibleState{
			Summary:       EmptySummary(gift.Price),
			Contributions: []VisibleContribution{},
		}
	}

	visible := make([]VisibleContribution, 0, len(contributions))
	for _, c := range contributions {
		visible = append(visible, VisibleContribution{
			ID:          c.ID,
			Amount:      c.Amount,
			Message:     c.Message,
			IsAnonymous: c.IsAnonymous,
			CreatedAt:   c.CreatedAt,
			Contributor: contributorLabel(c, names),
		})
	}

	return VisibleState{
		Summary:       Summarize(gift.Price, contributions),
		Contributions: visible,
	}
}

// SummaryFor returns the aggregate viewerID may see in gift listings, or nil
// for the owner.
func SummaryFor(gift *models.Gift, viewerID int64, summary Summary) *Summary {
	if gift.IsOwnedBy(viewerID) {
		return nil
	}
	return &summary
}

// GiftViewFor returns the gift as viewerID may see it. The owner never learns
// whether the gift was bought or by whom.
func GiftViewFor(gift *models.Gift, viewerID int64) models.Gift {
	view := *gift
	view.FamilyIDs = append([]int64(nil), gift.FamilyIDs...)
	if gift.IsOwnedBy(viewerID) {
		view.IsPurchased = false
		view.PurchasedByID = nil
	}
	return view
}

func contributorLabel(c *models.Contribution, names Names) string {
	if c.IsAnonymous {
		return AnonymousPlaceholder
	}
	return names.Resolve(c.UserID)
}
