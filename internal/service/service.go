package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/ListeDeNoel/internal/cache"
	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
)

// Repositories groups the persistence collaborators of the service layer.
type Repositories struct {
	Users         repository.UserRepository
	Families      repository.FamilyRepository
	Gifts         repository.GiftRepository
	Contributions repository.ContributionRepository
	Invitations   repository.InvitationRepository
	JoinRequests  repository.JoinRequestRepository
	TelegramLinks repository.TelegramLinkRepository
}

// Service is the central business logic layer that holds all repositories
// and provides high-level methods for the REST API and the Telegram bot.
type Service struct {
	logger        *logrus.Logger
	notifier      Notifier
	invitationTTL time.Duration
	now           func() time.Time

	Users         repository.UserRepository
	Families      repository.FamilyRepository
	Gifts         repository.GiftRepository
	Contributions repository.ContributionRepository
	Invitations   repository.InvitationRepository
	JoinRequests  repository.JoinRequestRepository
	TelegramLinks repository.TelegramLinkRepository

	Ledger *Ledger
}

// New creates a new Service. A nil summaries cache or notifier disables
// caching or change signals.
func New(logger *logrus.Logger, repos Repositories, summaries cache.SummaryCache, notifier Notifier, invitationTTL time.Duration) *Service {
	if summaries == nil {
		summaries = cache.NewNoopSummaryCache()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	s := &Service{
		logger:        logger,
		notifier:      notifier,
		invitationTTL: invitationTTL,
		now:           time.Now,
		Users:         repos.Users,
		Families:      repos.Families,
		Gifts:         repos.Gifts,
		Contributions: repos.Contributions,
		Invitations:   repos.Invitations,
		JoinRequests:  repos.JoinRequests,
		TelegramLinks: repos.TelegramLinks,
	}

	s.Ledger = &Ledger{
		logger:        logger,
		gifts:         repos.Gifts,
		contributions: repos.Contributions,
		users:         repos.Users,
		families:      repos.Families,
		summaries:     summaries,
		notifier:      notifier,
		now:           s.clock,
	}

	return s
}

// clock lets tests swap s.now after construction.
func (s *Service) clock() time.Time {
	return s.now()
}

// Identity is what the authentication token says about the caller.
type Identity struct {
	UserID    int64
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// EnsureUser creates or refreshes the local record of the authenticated
// user from their token claims.
func (s *Service) EnsureUser(ctx context.Context, id Identity) (*models.User, error) {
	if id.UserID <= 0 {
		return nil, invalid("identifiant utilisateur manquant")
	}

	username := strings.TrimSpace(id.Username)
	if username == "" {
		username = fmt.Sprintf("user%d", id.UserID)
	}

	user, err := s.Users.Upsert(ctx, &models.User{
		ID:        id.UserID,
		Username:  username,
		Email:     strings.ToLower(strings.TrimSpace(id.Email)),
		FirstName: strings.TrimSpace(id.FirstName),
		LastName:  strings.TrimSpace(id.LastName),
		IsActive:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user %d: %w", id.UserID, err)
	}

	return user, nil
}

// requireMember fails with a forbidden error unless userID belongs to the
// family.
func (s *Service) requireMember(ctx context.Context, familyID, userID int64) error {
	ok, err := s.Families.IsMember(ctx, familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership of user %d in family %d: %w", userID, familyID, err)
	}
	if !ok {
		return forbidden("vous n'êtes pas membre de cette famille")
	}
	return nil
}

// loadFamily returns the family or a not-found error.
func (s *Service) loadFamily(ctx context.Context, familyID int64) (*models.Family, error) {
	family, err := s.Families.GetByID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family %d: %w", familyID, err)
	}
	if family == nil {
		return nil, notFound("famille introuvable")
	}
	return family, nil
}

// loadOwnFamily returns the family if userID created it.
func (s *Service) loadOwnFamily(ctx context.Context, familyID, userID int64) (*models.Family, error) {
	family, err := s.loadFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}
	if !family.IsCreator(userID) {
		return nil, forbidden("action réservée au créateur de la famille")
	}
	return family, nil
}
