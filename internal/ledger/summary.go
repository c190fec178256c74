// Package ledger holds the contribution rules of the gift registry: how
// contributions toward a gift are summed, what each viewer may see of them,
// and which contributions and purchase changes are admitted.
//
// Everything here is a pure function of its arguments. Callers load the gift,
// its contributions and the viewer identity and pass them in explicitly.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary is the aggregate of a gift's contributions.
type Summary struct {
	Total      decimal.Decimal `json:"total_contribue"`
	Remaining  decimal.Decimal `json:"reste"`
	Percentage decimal.Decimal `json:"pourcentage"`
	Count      int             `json:"nb_contributions"`
}

// Summarize sums contributions toward a gift of the given price.
//
// Remaining is never clamped and goes negative when the gift is over-funded.
// Percentage is clamped to 100 and only meant for progress display.
func Summarize(price decimal.Decimal, contributions []*models.Contribution) Summary {
	total := decimal.Zero
	for _, c := range contributions {
		total = total.Add(c.Amount)
	}

	return Summary{
		Total:      total,
		Remaining:  price.Sub(total),
		Percentage: percentage(total, price),
		Count:      len(contributions),
	}
}

// EmptySummary is what a gift with no contributions looks like.
func EmptySummary(price decimal.Decimal) Summary {
	return Summary{
		Total:      decimal.Zero,
		Remaining:  price,
		Percentage: decimal.Zero,
	}
}

// GoalReached reports whether the contributions cover the price.
func (s Summary) GoalReached() bool {
	return !s.Remaining.IsPositive()
}

func percentage(total, price decimal.Decimal) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	pct := total.Div(price).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(2)
}
