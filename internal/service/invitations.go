package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// Invite creates an invitation for email to join the family. Only the
// creator may invite.
func (s *Service) Invite(ctx context.Context, familyID, inviterID int64, email string) (*models.Invitation, error) {
	family, err := s.loadOwnFamily(ctx, familyID, inviterID)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("l'email est obligatoire")
	}

	now := s.now()
	pending, err := s.Invitations.HasPending(ctx, familyID, email, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	if pending {
		return nil, conflict("une invitation est déjà en attente pour cet email")
	}

	invitation, err := s.Invitations.Create(ctx, &models.Invitation{
		FamilyID:  familyID,
		Email:     email,
		Token:     uuid.NewString(),
		InvitedBy: inviterID,
		ExpiresAt: now.Add(s.invitationTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	invitation.FamilyName = family.Name

	s.logger.WithFields(logrus.Fields{"family_id": familyID, "invitation_id": invitation.ID}).Info("Invitation created")
	return invitation, nil
}

// FamilyInvitations lists the invitations of a family for its creator.
func (s *Service) FamilyInvitations(ctx context.Context, familyID, userID int64) ([]*models.Invitation, error) {
	if _, err := s.loadOwnFamily(ctx, familyID, userID); err != nil {
		return nil, err
	}

	invitations, err := s.Invitations.GetByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations of family %d: %w", familyID, err)
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}
	return invitations, nil
}

// PendingInvitations lists the open invitations addressed to the user's
// email.
func (s *Service) PendingInvitations(ctx context.Context, user *models.User) ([]*models.Invitation, error) {
	if user.Email == "" {
		return []*models.Invitation{}, nil
	}

	invitations, err := s.Invitations.GetPendingByEmail(ctx, user.Email, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get pending invitations: %w", err)
	}
	if invitations == nil {
		invitations = []*models.Invitation{}
	}
	return invitations, nil
}

// AcceptInvitation adds the user to the invitation's family. The invitation
// must be addressed to the user's email.
func (s *Service) AcceptInvitation(ctx context.Context, token string, user *models.User) (*models.Family, error) {
	invitation, err := s.Invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	if invitation == nil {
		return nil, notFound("invitation introuvable")
	}
	if invitation.Accepted {
		return nil, conflict("cette invitation a déjà été acceptée")
	}
	if invitation.Expired(s.now()) {
		return nil, invalid("cette invitation a expiré")
	}
	if !strings.EqualFold(invitation.Email, user.Email) {
		return nil, forbidden("cette invitation ne vous est pas destinée")
	}

	if err := s.Families.AddMember(ctx, invitation.FamilyID, user.ID, models.RoleMember); err != nil {
		return nil, fmt.Errorf("failed to add user %d to family %d: %w", user.ID, invitation.FamilyID, err)
	}
	if err := s.Invitations.MarkAccepted(ctx, invitation.ID); err != nil {
		return nil, missing(err)
	}

	s.logger.Infof("Added user %d to family %d", user.ID, invitation.FamilyID)
	return s.loadFamily(ctx, invitation.FamilyID)
}

// RequestToJoin records the user's request to join a family.
func (s *Service) RequestToJoin(ctx context.Context, familyID, userID int64, message string) (*models.JoinRequest, error) {
	if _, err := s.loadFamily(ctx, familyID); err != nil {
		return nil, err
	}

	member, err := s.Families.IsMember(ctx, familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return nil, conflict("vous êtes déjà membre de cette famille")
	}

	exists, err := s.JoinRequests.Exists(ctx, familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check join requests: %w", err)
	}
	if exists {
		return nil, conflict("une demande est déjà en attente pour cette famille")
	}

	request, err := s.JoinRequests.Create(ctx, &models.JoinRequest{
		FamilyID: familyID,
		UserID:   userID,
		Message:  strings.TrimSpace(message),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"family_id": familyID, "user_id": userID}).Info("Join request created")
	return request, nil
}

// JoinRequestsOf lists the pending join requests of a family for its
// creator.
func (s *Service) JoinRequestsOf(ctx context.Context, familyID, userID int64) ([]*models.JoinRequest, error) {
	if _, err := s.loadOwnFamily(ctx, familyID, userID); err != nil {
		return nil, err
	}

	requests, err := s.JoinRequests.GetByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get join requests of family %d: %w", familyID, err)
	}
	if requests == nil {
		requests = []*models.JoinRequest{}
	}
	return requests, nil
}

func (s *Service) loadJoinRequest(ctx context.Context, requestID, userID int64) (*models.JoinRequest, error) {
	request, err := s.JoinRequests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get join request %d: %w", requestID, err)
	}
	if request == nil {
		return nil, notFound("demande introuvable")
	}
	if _, err := s.loadOwnFamily(ctx, request.FamilyID, userID); err != nil {
		return nil, err
	}
	return request, nil
}

// AcceptJoinRequest adds the requester to the family and drops the request.
func (s *Service) AcceptJoinRequest(ctx context.Context, requestID, userID int64) error {
	request, err := s.loadJoinRequest(ctx, requestID, userID)
	if err != nil {
		return err
	}

	if err := s.Families.AddMember(ctx, request.FamilyID, request.UserID, models.RoleMember); err != nil {
		return fmt.Errorf("failed to add user %d to family %d: %w", request.UserID, request.FamilyID, err)
	}
	if err := s.JoinRequests.Delete(ctx, request.ID); err != nil {
		return missing(err)
	}

	s.logger.Infof("Added user %d to family %d", request.UserID, request.FamilyID)
	return nil
}

// RejectJoinRequest drops the request without adding the requester.
func (s *Service) RejectJoinRequest(ctx context.Context, requestID, userID int64) error {
	request, err := s.loadJoinRequest(ctx, requestID, userID)
	if err != nil {
		return err
	}

	if err := s.JoinRequests.Delete(ctx, request.ID); err != nil {
		return missing(err)
	}

	s.logger.WithFields(logrus.Fields{"family_id": request.FamilyID, "user_id": request.UserID}).Info("Join request rejected")
	return nil
}
