package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// MyFamilies lists the families the user belongs to.
func (s *Service) MyFamilies(ctx context.Context, userID int64) ([]*models.Family, error) {
	families, err := s.Families.GetByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get families of user %d: %w", userID, err)
	}
	if families == nil {
		families = []*models.Family{}
	}
	return families, nil
}

// CreateFamily creates a family. Its creator becomes an admin member.
func (s *Service) CreateFamily(ctx context.Context, creatorID int64, name, description string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("le nom de la famille est obligatoire")
	}

	family, err := s.Families.Create(ctx, &models.Family{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatorID:   creatorID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"family_id": family.ID, "user_id": creatorID}).Infof("Created new family: %q", name)
	return family, nil
}

// Family returns a family with its members. Only members may see it.
func (s *Service) Family(ctx context.Context, familyID, userID int64) (*models.Family, error) {
	family, err := s.loadFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}

	members, err := s.Families.GetMembers(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of family %d: %w", familyID, err)
	}
	family.Members = members

	return family, nil
}

// UpdateFamily renames a family. Only its creator may do it.
func (s *Service) UpdateFamily(ctx context.Context, familyID, userID int64, name, description string) (*models.Family, error) {
	family, err := s.loadOwnFamily(ctx, familyID, userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("le nom de la famille est obligatoire")
	}
	family.Name = name
	family.Description = strings.TrimSpace(description)

	updated, err := s.Families.Update(ctx, family)
	if err != nil {
		return nil, missing(err)
	}

	s.logger.Infof("Updated family name to %q (family_id=%d)", name, familyID)
	return updated, nil
}

// DeleteFamily deletes a family. Only its creator may do it.
func (s *Service) DeleteFamily(ctx context.Context, familyID, userID int64) error {
	if _, err := s.loadOwnFamily(ctx, familyID, userID); err != nil {
		return err
	}

	if err := s.Families.Delete(ctx, familyID); err != nil {
		return missing(err)
	}

	s.logger.WithFields(logrus.Fields{"family_id": familyID, "user_id": userID}).Info("Family deleted")
	return nil
}

// SearchFamilies finds families by name among those the user is not part of.
func (s *Service) SearchFamilies(ctx context.Context, query string, userID int64) ([]*models.Family, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Family{}, nil
	}

	families, err := s.Families.Search(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to search families: %w", err)
	}
	if families == nil {
		families = []*models.Family{}
	}
	return families, nil
}

// RemoveMember removes memberID from the family. The creator may remove
// anyone but themself; any other member may only leave.
func (s *Service) RemoveMember(ctx context.Context, familyID, actorID, memberID int64) error {
	family, err := s.loadFamily(ctx, familyID)
	if err != nil {
		return err
	}

	switch {
	case family.IsCreator(memberID):
		return invalid("le créateur ne peut pas quitter sa famille")
	case family.IsCreator(actorID), actorID == memberID:
	default:
		return forbidden("action réservée au créateur de la famille")
	}

	if err := s.Families.RemoveMember(ctx, familyID, memberID); err != nil {
		return missing(err)
	}

	s.logger.Infof("Removed user %d from family %d", memberID, familyID)
	return nil
}
