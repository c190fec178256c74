package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// GiftView is a gift as a given viewer may see it, with the contribution
// progress when the viewer is not its owner.
type GiftView struct {
	models.Gift
	Progress *ledger.Summary `json:"progression,omitempty"`
}

// GiftInput holds the editable fields of a gift.
type GiftInput struct {
	Title        string
	Price        decimal.Decimal
	Description  string
	PhotoURL     *string
	PurchaseLink *string
	FamilyIDs    []int64
}

func (s *Service) view(ctx context.Context, gift *models.Gift, viewerID int64) (GiftView, error) {
	v := GiftView{Gift: ledger.GiftViewFor(gift, viewerID)}
	if gift.IsOwnedBy(viewerID) {
		return v, nil
	}

	summary, err := s.Ledger.Summary(ctx, gift)
	if err != nil {
		return GiftView{}, err
	}
	v.Progress = ledger.SummaryFor(gift, viewerID, summary)
	return v, nil
}

func (s *Service) views(ctx context.Context, gifts []*models.Gift, viewerID int64) ([]GiftView, error) {
	out := make([]GiftView, 0, len(gifts))
	for _, g := range gifts {
		v, err := s.view(ctx, g, viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// VisibleGifts lists every gift of every family the user belongs to.
func (s *Service) VisibleGifts(ctx context.Context, userID int64) ([]GiftView, error) {
	gifts, err := s.Gifts.GetVisibleTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gifts visible to user %d: %w", userID, err)
	}
	return s.views(ctx, gifts, userID)
}

// MyGifts lists the gifts the user owns. Purchase state stays hidden.
func (s *Service) MyGifts(ctx context.Context, userID int64) ([]GiftView, error) {
	gifts, err := s.Gifts.GetByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gifts of user %d: %w", userID, err)
	}
	return s.views(ctx, gifts, userID)
}

// FamilyGifts lists the gifts of a family the user belongs to.
func (s *Service) FamilyGifts(ctx context.Context, familyID, userID int64) ([]GiftView, error) {
	if _, err := s.loadFamily(ctx, familyID); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}

	gifts, err := s.Gifts.GetByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gifts of family %d: %w", familyID, err)
	}
	return s.views(ctx, gifts, userID)
}

// Gift returns one gift as viewerID may see it.
func (s *Service) Gift(ctx context.Context, giftID, viewerID int64) (*GiftView, error) {
	gift, err := s.Ledger.loadGift(ctx, giftID, viewerID)
	if err != nil {
		return nil, err
	}

	v, err := s.view(ctx, gift, viewerID)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) validateGift(ctx context.Context, ownerID int64, in *GiftInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return invalid("le titre est obligatoire")
	}
	in.Price = in.Price.Round(2)
	if !in.Price.IsPositive() {
		return invalid("le prix doit être strictement positif")
	}
	in.FamilyIDs = uniqueIDs(in.FamilyIDs)
	if len(in.FamilyIDs) == 0 {
		return invalid("un cadeau doit appartenir à au moins une famille")
	}
	for _, familyID := range in.FamilyIDs {
		ok, err := s.Families.IsMember(ctx, familyID, ownerID)
		if err != nil {
			return fmt.Errorf("failed to check membership in family %d: %w", familyID, err)
		}
		if !ok {
			return forbidden(fmt.Sprintf("vous n'êtes pas membre de la famille %d", familyID))
		}
	}
	return nil
}

// CreateGift adds a gift to the owner's list in the given families.
func (s *Service) CreateGift(ctx context.Context, ownerID int64, in GiftInput) (*models.Gift, error) {
	if err := s.validateGift(ctx, ownerID, &in); err != nil {
		return nil, err
	}

	gift, err := s.Gifts.Create(ctx, &models.Gift{
		Title:        in.Title,
		Price:        in.Price,
		Description:  strings.TrimSpace(in.Description),
		PhotoURL:     in.PhotoURL,
		PurchaseLink: in.PurchaseLink,
		OwnerID:      ownerID,
		FamilyIDs:    in.FamilyIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gift: %w", err)
	}

	s.notifier.GiftsUpdated(gift.FamilyIDs, gift.ID)
	s.logger.WithFields(logrus.Fields{"gift_id": gift.ID, "user_id": ownerID}).Info("Gift created")

	return gift, nil
}

// loadOwnGift returns the gift if userID owns it.
func (s *Service) loadOwnGift(ctx context.Context, giftID, userID int64) (*models.Gift, error) {
	gift, err := s.Ledger.loadGift(ctx, giftID, userID)
	if err != nil {
		return nil, err
	}
	if !gift.IsOwnedBy(userID) {
		return nil, forbidden("seul le propriétaire peut modifier ce cadeau")
	}
	return gift, nil
}

// UpdateGift changes the editable fields of a gift. Owner and purchase state
// never change here.
func (s *Service) UpdateGift(ctx context.Context, giftID, userID int64, in GiftInput) (*models.Gift, error) {
	gift, err := s.loadOwnGift(ctx, giftID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.validateGift(ctx, userID, &in); err != nil {
		return nil, err
	}

	previousFamilies := append([]int64(nil), gift.FamilyIDs...)
	priceChanged := !gift.Price.Equal(in.Price)

	gift.Title = in.Title
	gift.Price = in.Price
	gift.Description = strings.TrimSpace(in.Description)
	gift.PhotoURL = in.PhotoURL
	gift.PurchaseLink = in.PurchaseLink
	gift.FamilyIDs = in.FamilyIDs

	updated, err := s.Gifts.Update(ctx, gift)
	if err != nil {
		return nil, missing(err)
	}

	if priceChanged {
		s.Ledger.invalidate(ctx, gift.ID)
	}

	s.notifier.GiftsUpdated(uniqueIDs(append(previousFamilies, updated.FamilyIDs...)), updated.ID)
	s.logger.WithFields(logrus.Fields{"gift_id": gift.ID, "user_id": userID}).Info("Gift updated")

	return updated, nil
}

// DeleteGift removes a gift and, with it, its contributions.
func (s *Service) DeleteGift(ctx context.Context, giftID, userID int64) error {
	gift, err := s.loadOwnGift(ctx, giftID, userID)
	if err != nil {
		return err
	}

	if err := s.Gifts.Delete(ctx, gift.ID); err != nil {
		return missing(err)
	}

	s.Ledger.invalidate(ctx, gift.ID)
	s.notifier.GiftsUpdated(gift.FamilyIDs, gift.ID)
	s.logger.WithFields(logrus.Fields{"gift_id": gift.ID, "user_id": userID}).Info("Gift deleted")

	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
