// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetTelegramID(ctx context.Context, userID, telegramID int64) error {
	args := m.Called(ctx, userID, telegramID)
	return args.Error(0)
}

// MockFamilyRepository is a mock implementation of repository.FamilyRepository
type MockFamilyRepository struct {
	mock.Mock
}

func (m *MockFamilyRepository) Create(ctx context.Context, family *models.Family) (*models.Family, error) {
	args := m.Called(ctx, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) GetByID(ctx context.Context, id int64) (*models.Family, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) GetByMember(ctx context.Context, userID int64) ([]*models.Family, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) Search(ctx context.Context, query string, excludeMemberID int64) ([]*models.Family, error) {
	args := m.Called(ctx, query, excludeMemberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) Update(ctx context.Context, family *models.Family) (*models.Family, error) {
	args := m.Called(ctx, family)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Family), args.Error(1)
}

func (m *MockFamilyRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFamilyRepository) AddMember(ctx context.Context, familyID, userID int64, role string) error {
	args := m.Called(ctx, familyID, userID, role)
	return args.Error(0)
}

func (m *MockFamilyRepository) RemoveMember(ctx context.Context, familyID, userID int64) error {
	args := m.Called(ctx, familyID, userID)
	return args.Error(0)
}

func (m *MockFamilyRepository) GetMembers(ctx context.Context, familyID int64) ([]models.Member, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Member), args.Error(1)
}

func (m *MockFamilyRepository) IsMember(ctx context.Context, familyID, userID int64) (bool, error) {
	args := m.Called(ctx, familyID, userID)
	return args.Bool(0), args.Error(1)
}

// MockGiftRepository is a mock implementation of repository.GiftRepository
type MockGiftRepository struct {
	mock.Mock
}

func (m *MockGiftRepository) Create(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	args := m.Called(ctx, gift)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gift), args.Error(1)
}

func (m *MockGiftRepository) GetByID(ctx context.Context, id int64) (*models.Gift, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gift), args.Error(1)
}

func (m *MockGiftRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.Gift, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Gift), args.Error(1)
}

func (m *MockGiftRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*models.Gift, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Gift), args.Error(1)
}

func (m *MockGiftRepository) GetVisibleTo(ctx context.Context, userID int64) ([]*models.Gift, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Gift), args.Error(1)
}

func (m *MockGiftRepository) Update(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	args := m.Called(ctx, gift)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Gift), args.Error(1)
}

func (m *MockGiftRepository) MarkPurchased(ctx context.Context, giftID, buyerID int64) error {
	args := m.Called(ctx, giftID, buyerID)
	return args.Error(0)
}

func (m *MockGiftRepository) UnmarkPurchased(ctx context.Context, giftID, buyerID int64) error {
	args := m.Called(ctx, giftID, buyerID)
	return args.Error(0)
}

func (m *MockGiftRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockContributionRepository is a mock implementation of repository.ContributionRepository
type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) Create(ctx context.Context, contribution *models.Contribution) (*models.Contribution, error) {
	args := m.Called(ctx, contribution)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contribution), args.Error(1)
}

func (m *MockContributionRepository) GetByID(ctx context.Context, id int64) (*models.Contribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contribution), args.Error(1)
}

func (m *MockContributionRepository) GetByGift(ctx context.Context, giftID int64) ([]*models.Contribution, error) {
	args := m.Called(ctx, giftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contribution), args.Error(1)
}

func (m *MockContributionRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Contribution, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contribution), args.Error(1)
}

func (m *MockContributionRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.FamilyContribution, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FamilyContribution), args.Error(1)
}

func (m *MockContributionRepository) StatsByUser(ctx context.Context, userID int64) (*models.ContributionStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContributionStats), args.Error(1)
}

func (m *MockContributionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInvitationRepository is a mock implementation of repository.InvitationRepository
type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) (*models.Invitation, error) {
	args := m.Called(ctx, invitation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.Invitation, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) GetPendingByEmail(ctx context.Context, email string, now time.Time) ([]*models.Invitation, error) {
	args := m.Called(ctx, email, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) HasPending(ctx context.Context, familyID int64, email string, now time.Time) (bool, error) {
	args := m.Called(ctx, familyID, email, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepository) MarkAccepted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvitationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockJoinRequestRepository is a mock implementation of repository.JoinRequestRepository
type MockJoinRequestRepository struct {
	mock.Mock
}

func (m *MockJoinRequestRepository) Create(ctx context.Context, request *models.JoinRequest) (*models.JoinRequest, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestRepository) GetByID(ctx context.Context, id int64) (*models.JoinRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.JoinRequest, error) {
	args := m.Called(ctx, familyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestRepository) Exists(ctx context.Context, familyID, userID int64) (bool, error) {
	args := m.Called(ctx, familyID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJoinRequestRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTelegramLinkRepository is a mock implementation of repository.TelegramLinkRepository
type MockTelegramLinkRepository struct {
	mock.Mock
}

func (m *MockTelegramLinkRepository) Create(ctx context.Context, link *models.TelegramLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockTelegramLinkRepository) Consume(ctx context.Context, code string, now time.Time) (*models.TelegramLink, error) {
	args := m.Called(ctx, code, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TelegramLink), args.Error(1)
}

func (m *MockTelegramLinkRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// Set bundles one mock per repository.
type Set struct {
	Users         *MockUserRepository
	Families      *MockFamilyRepository
	Gifts         *MockGiftRepository
	Contributions *MockContributionRepository
	Invitations   *MockInvitationRepository
	JoinRequests  *MockJoinRequestRepository
	TelegramLinks *MockTelegramLinkRepository
}

// NewSet creates a fresh set of repository mocks.
func NewSet() *Set {
	return &Set{
		Users:         &MockUserRepository{},
		Families:      &MockFamilyRepository{},
		Gifts:         &MockGiftRepository{},
		Contributions: &MockContributionRepository{},
		Invitations:   &MockInvitationRepository{},
		JoinRequests:  &MockJoinRequestRepository{},
		TelegramLinks: &MockTelegramLinkRepository{},
	}
}

// AssertExpectations asserts the expectations of every mock in the set.
func (s *Set) AssertExpectations(t mock.TestingT) {
	s.Users.AssertExpectations(t)
	s.Families.AssertExpectations(t)
	s.Gifts.AssertExpectations(t)
	s.Contributions.AssertExpectations(t)
	s.Invitations.AssertExpectations(t)
	s.JoinRequests.AssertExpectations(t)
	s.TelegramLinks.AssertExpectations(t)
}
