package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
)

// TelegramLinkTTL is how long a link code stays valid.
const TelegramLinkTTL = 15 * time.Minute

// IssueTelegramLink creates a one-time code the user sends to the bot to
// link their Telegram account.
func (s *Service) IssueTelegramLink(ctx context.Context, userID int64) (*models.TelegramLink, error) {
	link := &models.TelegramLink{
		Code:      uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().Add(TelegramLinkTTL),
	}

	if err := s.TelegramLinks.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to issue telegram link for user %d: %w", userID, err)
	}

	return link, nil
}

// LinkTelegram consumes a link code and attaches telegramID to its user.
func (s *Service) LinkTelegram(ctx context.Context, code string, telegramID int64) (*models.User, error) {
	code = strings.TrimSpace(code)
	if _, err := uuid.Parse(code); err != nil {
		return nil, invalid("code de liaison invalide")
	}

	link, err := s.TelegramLinks.Consume(ctx, code, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to consume telegram link: %w", err)
	}
	if link == nil {
		return nil, notFound("code de liaison inconnu ou expiré")
	}

	if err := s.Users.SetTelegramID(ctx, link.UserID, telegramID); err != nil {
		return nil, missing(err)
	}

	user, err := s.Users.GetByID(ctx, link.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", link.UserID, err)
	}
	if user == nil {
		return nil, notFound("utilisateur introuvable")
	}

	s.logger.Infof("Linked telegram account %d to user %s", telegramID, user.DisplayName())
	return user, nil
}

// UserByTelegram returns the user linked to telegramID, or nil.
func (s *Service) UserByTelegram(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (telegram_id=%d): %w", telegramID, err)
	}
	return user, nil
}
