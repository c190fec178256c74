package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/cache"
	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
)

// Ledger loads gifts and contributions, runs them through the ledger rules
// and persists the outcome.
type Ledger struct {
	logger        *logrus.Logger
	gifts         repository.GiftRepository
	contributions repository.ContributionRepository
	users         repository.UserRepository
	families      repository.FamilyRepository
	summaries     cache.SummaryCache
	notifier      Notifier
	now           func() time.Time
}

// loadGift returns the gift if viewerID may see it. Gifts outside the
// viewer's families are reported as missing.
func (l *Ledger) loadGift(ctx context.Context, giftID, viewerID int64) (*models.Gift, error) {
	gift, err := l.gifts.GetByID(ctx, giftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gift %d: %w", giftID, err)
	}
	if gift == nil {
		return nil, ledger.ErrNotFound
	}

	ok, err := l.canSee(ctx, gift, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ledger.ErrNotFound
	}

	return gift, nil
}

func (l *Ledger) canSee(ctx context.Context, gift *models.Gift, viewerID int64) (bool, error) {
	if gift.IsOwnedBy(viewerID) {
		return true, nil
	}
	for _, familyID := range gift.FamilyIDs {
		ok, err := l.families.IsMember(ctx, familyID, viewerID)
		if err != nil {
			return false, fmt.Errorf("failed to check membership in family %d: %w", familyID, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// VisibleState returns what viewerID may see of the gift's contributions.
func (l *Ledger) VisibleState(ctx context.Context, giftID, viewerID int64) (*ledger.VisibleState, error) {
	gift, err := l.loadGift(ctx, giftID, viewerID)
	if err != nil {
		return nil, err
	}

	if gift.IsOwnedBy(viewerID) {
		state := ledger.VisibleStateFor(gift, viewerID, nil, nil)
		return &state, nil
	}

	contributions, err := l.contributions.GetByGift(ctx, gift.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions of gift %d: %w", gift.ID, err)
	}

	names, err := l.names(ctx, contributions)
	if err != nil {
		return nil, err
	}

	state := ledger.VisibleStateFor(gift, viewerID, contributions, names)
	return &state, nil
}

// names resolves display names of non-anonymous contributors only.
func (l *Ledger) names(ctx context.Context, contributions []*models.Contribution) (ledger.Names, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, c := range contributions {
		if c.IsAnonymous || seen[c.UserID] {
			continue
		}
		seen[c.UserID] = true
		ids = append(ids, c.UserID)
	}

	names := make(ledger.Names, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	users, err := l.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contributor names: %w", err)
	}
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}

	return names, nil
}

// Submit admits and records a contribution, then returns it with the
// refreshed aggregate.
func (l *Ledger) Submit(ctx context.Context, giftID, viewerID int64, sub ledger.Submission) (*models.Contribution, *ledger.Summary, error) {
	gift, err := l.loadGift(ctx, giftID, viewerID)
	if err != nil {
		return nil, nil, err
	}

	contribution, err := ledger.Prepare(gift, viewerID, sub, l.now())
	if err != nil {
		contributionsRejected.WithLabelValues(ledger.KindOf(err).String()).Inc()
		return nil, nil, err
	}

	saved, err := l.contributions.Create(ctx, contribution)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save contribution to gift %d: %w", gift.ID, err)
	}

	l.invalidate(ctx, gift.ID)

	summary, err := l.Summary(ctx, gift)
	if err != nil {
		return nil, nil, err
	}

	contributionsSubmitted.Inc()
	l.notifier.ContributionsUpdated(gift)

	l.logger.WithFields(logrus.Fields{
		"gift_id":         gift.ID,
		"contribution_id": saved.ID,
		"anonymous":       saved.IsAnonymous,
	}).Info("Contribution recorded")

	return saved, &summary, nil
}

// Delete removes a contribution. Only its author may do so.
func (l *Ledger) Delete(ctx context.Context, contributionID, requesterID int64) error {
	contribution, err := l.contributions.GetByID(ctx, contributionID)
	if err != nil {
		return fmt.Errorf("failed to get contribution %d: %w", contributionID, err)
	}

	if err := ledger.AuthorizeDelete(contribution, requesterID); err != nil {
		return err
	}

	if err := l.contributions.Delete(ctx, contributionID); err != nil {
		return missing(err)
	}

	l.invalidate(ctx, contribution.GiftID)
	contributionsDeleted.Inc()

	gift, err := l.gifts.GetByID(ctx, contribution.GiftID)
	if err != nil {
		l.logger.WithError(err).Warnf("Failed to load gift %d after contribution delete", contribution.GiftID)
	} else if gift != nil {
		l.notifier.ContributionsUpdated(gift)
	}

	l.logger.WithFields(logrus.Fields{
		"gift_id":         contribution.GiftID,
		"contribution_id": contributionID,
	}).Info("Contribution deleted")

	return nil
}

// MarkPurchased records actorID as the buyer of the gift.
func (l *Ledger) MarkPurchased(ctx context.Context, giftID, actorID int64) (*models.Gift, error) {
	gift, err := l.loadGift(ctx, giftID, actorID)
	if err != nil {
		return nil, err
	}

	if err := ledger.MarkPurchased(gift, actorID); err != nil {
		return nil, err
	}

	if err := l.gifts.MarkPurchased(ctx, gift.ID, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrAlreadyPurchased
		}
		return nil, err
	}

	purchaseChanges.WithLabelValues("mark").Inc()
	l.notifier.GiftUpdated(gift)
	l.logger.WithFields(logrus.Fields{"gift_id": gift.ID, "user_id": actorID}).Info("Gift marked as purchased")

	return gift, nil
}

// UnmarkPurchased clears the purchase. Only the recorded buyer may do it.
func (l *Ledger) UnmarkPurchased(ctx context.Context, giftID, actorID int64) (*models.Gift, error) {
	gift, err := l.loadGift(ctx, giftID, actorID)
	if err != nil {
		return nil, err
	}

	if err := ledger.UnmarkPurchased(gift, actorID); err != nil {
		return nil, err
	}

	if err := l.gifts.UnmarkPurchased(ctx, gift.ID, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrForbidden
		}
		return nil, err
	}

	purchaseChanges.WithLabelValues("unmark").Inc()
	l.notifier.GiftUpdated(gift)
	l.logger.WithFields(logrus.Fields{"gift_id": gift.ID, "user_id": actorID}).Info("Gift purchase cancelled")

	return gift, nil
}

// Mine lists the contributions userID authored, newest first.
func (l *Ledger) Mine(ctx context.Context, userID int64) ([]*models.Contribution, error) {
	contributions, err := l.contributions.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions of user %d: %w", userID, err)
	}
	if contributions == nil {
		contributions = []*models.Contribution{}
	}
	return contributions, nil
}

// Stats returns the total and count of userID's contributions.
func (l *Ledger) Stats(ctx context.Context, userID int64) (*models.ContributionStats, error) {
	stats, err := l.contributions.StatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution stats of user %d: %w", userID, err)
	}
	return stats, nil
}

// Summary returns the aggregate of the gift's contributions, from cache when
// possible. Cache failures fall back to the database.
func (l *Ledger) Summary(ctx context.Context, gift *models.Gift) (ledger.Summary, error) {
	cached, generation, ok, err := l.summaries.Get(ctx, gift.ID)
	if err != nil {
		l.logger.WithError(err).Warnf("Summary cache read failed for gift %d", gift.ID)
	}
	if ok {
		summaryCacheLookups.WithLabelValues("hit").Inc()
		return *cached, nil
	}
	summaryCacheLookups.WithLabelValues("miss").Inc()

	contributions, err := l.contributions.GetByGift(ctx, gift.ID)
	if err != nil {
		return ledger.Summary{}, fmt.Errorf("failed to get contributions of gift %d: %w", gift.ID, err)
	}

	summary := ledger.Summarize(gift.Price, contributions)
	if err := l.summaries.Set(ctx, gift.ID, generation, summary); err != nil {
		l.logger.WithError(err).Warnf("Summary cache write failed for gift %d", gift.ID)
	}

	return summary, nil
}

func (l *Ledger) invalidate(ctx context.Context, giftIDs ...int64) {
	if err := l.summaries.Invalidate(ctx, giftIDs...); err != nil {
		l.logger.WithError(err).Warnf("Summary cache invalidation failed for gifts %v", giftIDs)
	}
}

// RecapContribution is a contribution line of the family recap.
type RecapContribution struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"montant"`
	Message     string          `json:"message"`
	IsAnonymous bool            `json:"is_anonymous"`
	CreatedAt   time.Time       `json:"created_at"`
	GiftTitle   string          `json:"cadeau_titre"`
	GiftOwnerID int64           `json:"cadeau_owner"`
}

// RecapMember groups contributions by author. Anonymous contributions are
// grouped under a single entry with UserID 0.
type RecapMember struct {
	UserID        int64               `json:"user_id"`
	Username      string              `json:"username"`
	Email         string              `json:"email"`
	Total         decimal.Decimal     `json:"total_contribue"`
	Count         int                 `json:"nb_contributions"`
	Contributions []RecapContribution `json:"contributions"`
}

// RecapGift is the progress of one gift in the family recap.
type RecapGift struct {
	GiftID      int64           `json:"cadeau_id"`
	Title       string          `json:"cadeau_titre"`
	Price       decimal.Decimal `json:"cadeau_prix"`
	Owner       string          `json:"owner"`
	IsPurchased bool            `json:"is_purchased"`
	ledger.Summary
}

// RecapTotals are the family-wide figures of the recap.
type RecapTotals struct {
	Total        decimal.Decimal `json:"total_contribue"`
	Count        int             `json:"nb_contributions"`
	Gifts        int             `json:"nb_cadeaux"`
	Contributors int             `json:"nb_contributeurs"`
}

// Recap is the contribution overview of a family.
type Recap struct {
	FamilyID   int64         `json:"famille_id"`
	FamilyName string        `json:"famille_nom"`
	Totals     RecapTotals   `json:"stats_globales"`
	ByMember   []RecapMember `json:"contributions_par_membre"`
	ByGift     []RecapGift   `json:"contributions_par_cadeau"`
}

// Recap builds the contribution overview of a family for its creator. Gifts
// owned by the viewer are left out so the recap never reveals what was
// given toward them.
func (l *Ledger) Recap(ctx context.Context, familyID, viewerID int64) (*Recap, error) {
	family, err := l.families.GetByID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family %d: %w", familyID, err)
	}
	if family == nil {
		return nil, notFound("famille introuvable")
	}
	if !family.IsCreator(viewerID) {
		return nil, forbidden("seul le créateur de la famille peut voir le récapitulatif")
	}

	gifts, err := l.gifts.GetByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gifts of family %d: %w", familyID, err)
	}
	all, err := l.contributions.GetByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contributions of family %d: %w", familyID, err)
	}

	included := make(map[int64]*models.Gift)
	userIDs := make(map[int64]bool)
	for _, g := range gifts {
		if g.IsOwnedBy(viewerID) {
			continue
		}
		included[g.ID] = g
		userIDs[g.OwnerID] = true
	}

	byGift := make(map[int64][]*models.Contribution)
	var kept []*models.FamilyContribution
	for _, fc := range all {
		if _, ok := included[fc.GiftID]; !ok {
			continue
		}
		kept = append(kept, fc)
		c := fc.Contribution
		byGift[fc.GiftID] = append(byGift[fc.GiftID], &c)
		if !fc.IsAnonymous {
			userIDs[fc.UserID] = true
		}
	}

	users, err := l.users.GetByIDs(ctx, keys(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recap users: %w", err)
	}
	profiles := make(map[int64]*models.User, len(users))
	names := make(ledger.Names, len(users))
	for _, u := range users {
		profiles[u.ID] = u
		names[u.ID] = u.DisplayName()
	}

	recap := &Recap{
		FamilyID:   family.ID,
		FamilyName: family.Name,
		Totals:     RecapTotals{Total: decimal.Zero, Gifts: len(included)},
		ByMember:   []RecapMember{},
		ByGift:     []RecapGift{},
	}

	members := make(map[int64]*RecapMember)
	contributors := make(map[int64]bool)
	for _, fc := range kept {
		recap.Totals.Total = recap.Totals.Total.Add(fc.Amount)
		recap.Totals.Count++

		key := fc.UserID
		if fc.IsAnonymous {
			key = 0
		}
		contributors[key] = true
		m, ok := members[key]
		if !ok {
			m = &RecapMember{UserID: key, Total: decimal.Zero}
			if key == 0 {
				m.Username = ledger.AnonymousPlaceholder
			} else {
				m.Username = names.Resolve(key)
				if u := profiles[key]; u != nil {
					m.Email = u.Email
				}
			}
			members[key] = m
		}
		m.Total = m.Total.Add(fc.Amount)
		m.Count++
		m.Contributions = append(m.Contributions, RecapContribution{
			ID:          fc.ID,
			Amount:      fc.Amount,
			Message:     fc.Message,
			IsAnonymous: fc.IsAnonymous,
			CreatedAt:   fc.CreatedAt,
			GiftTitle:   fc.GiftTitle,
			GiftOwnerID: fc.GiftOwnerID,
		})
	}
	recap.Totals.Contributors = len(contributors)

	for _, m := range members {
		recap.ByMember = append(recap.ByMember, *m)
	}
	sort.Slice(recap.ByMember, func(i, j int) bool {
		if c := recap.ByMember[i].Total.Cmp(recap.ByMember[j].Total); c != 0 {
			return c > 0
		}
		return recap.ByMember[i].UserID < recap.ByMember[j].UserID
	})

	for _, g := range gifts {
		if _, ok := included[g.ID]; !ok {
			continue
		}
		recap.ByGift = append(recap.ByGift, RecapGift{
			GiftID:      g.ID,
			Title:       g.Title,
			Price:       g.Price,
			Owner:       names.Resolve(g.OwnerID),
			IsPurchased: g.IsPurchased,
			Summary:     ledger.Summarize(g.Price, byGift[g.ID]),
		})
	}
	sort.SliceStable(recap.ByGift, func(i, j int) bool {
		return recap.ByGift[i].Percentage.GreaterThan(recap.ByGift[j].Percentage)
	})

	return recap, nil
}

func keys(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
