package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// ErrNotFound is returned by mutations that matched no row. Lookups return
// (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	SetTelegramID(ctx context.Context, userID, telegramID int64) error
}

// FamilyRepository defines the interface for family data operations
type FamilyRepository interface {
	// Create stores the family and makes its creator an admin member.
	Create(ctx context.Context, family *models.Family) (*models.Family, error)
	GetByID(ctx context.Context, id int64) (*models.Family, error)
	GetByMember(ctx context.Context, userID int64) ([]*models.Family, error)
	Search(ctx context.Context, query string, excludeMemberID int64) ([]*models.Family, error)
	Update(ctx context.Context, family *models.Family) (*models.Family, error)
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, familyID, userID int64, role string) error
	RemoveMember(ctx context.Context, familyID, userID int64) error
	GetMembers(ctx context.Context, familyID int64) ([]models.Member, error)
	IsMember(ctx context.Context, familyID, userID int64) (bool, error)
}

// GiftRepository defines the interface for gift data operations
type GiftRepository interface {
	Create(ctx context.Context, gift *models.Gift) (*models.Gift, error)
	GetByID(ctx context.Context, id int64) (*models.Gift, error)
	GetByFamily(ctx context.Context, familyID int64) ([]*models.Gift, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*models.Gift, error)
	// GetVisibleTo returns every gift listed in a family userID belongs to.
	GetVisibleTo(ctx context.Context, userID int64) ([]*models.Gift, error)
	// Update stores the editable fields and family listing. Owner and
	// purchase state are left untouched.
	Update(ctx context.Context, gift *models.Gift) (*models.Gift, error)
	// MarkPurchased records buyerID as the buyer of a gift that is not yet
	// purchased. It returns ErrNotFound when no such gift exists.
	MarkPurchased(ctx context.Context, giftID, buyerID int64) error
	// UnmarkPurchased clears the purchase only if buyerID is the recorded
	// buyer. It returns ErrNotFound otherwise.
	UnmarkPurchased(ctx context.Context, giftID, buyerID int64) error
	Delete(ctx context.Context, id int64) error
}

// ContributionRepository defines the interface for contribution data operations
type ContributionRepository interface {
	Create(ctx context.Context, contribution *models.Contribution) (*models.Contribution, error)
	GetByID(ctx context.Context, id int64) (*models.Contribution, error)
	GetByGift(ctx context.Context, giftID int64) ([]*models.Contribution, error)
	GetByUser(ctx context.Context, userID int64) ([]*models.Contribution, error)
	GetByFamily(ctx context.Context, familyID int64) ([]*models.FamilyContribution, error)
	StatsByUser(ctx context.Context, userID int64) (*models.ContributionStats, error)
	Delete(ctx context.Context, id int64) error
}

// InvitationRepository defines the interface for family invitations
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) (*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	GetByFamily(ctx context.Context, familyID int64) ([]*models.Invitation, error)
	GetPendingByEmail(ctx context.Context, email string, now time.Time) ([]*models.Invitation, error)
	HasPending(ctx context.Context, familyID int64, email string, now time.Time) (bool, error)
	MarkAccepted(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// JoinRequestRepository defines the interface for requests to join a family
type JoinRequestRepository interface {
	Create(ctx context.Context, request *models.JoinRequest) (*models.JoinRequest, error)
	GetByID(ctx context.Context, id int64) (*models.JoinRequest, error)
	GetByFamily(ctx context.Context, familyID int64) ([]*models.JoinRequest, error)
	Exists(ctx context.Context, familyID, userID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// TelegramLinkRepository stores one-time Telegram account link codes
type TelegramLinkRepository interface {
	Create(ctx context.Context, link *models.TelegramLink) error
	// Consume deletes and returns the link if it exists and has not expired.
	Consume(ctx context.Context, code string, now time.Time) (*models.TelegramLink, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
