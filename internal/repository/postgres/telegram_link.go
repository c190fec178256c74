package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
)

type telegramLinkRepository struct {
	db *sql.DB
}

// NewTelegramLinkRepository creates a new Telegram link code repository
func NewTelegramLinkRepository(db *sql.DB) repository.TelegramLinkRepository {
	return &telegramLinkRepository{db: db}
}

func (r *telegramLinkRepository) Create(ctx context.Context, link *models.TelegramLink) error {
	query := `
		INSERT INTO telegram_links (code, user_id, expires_at)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, link.Code, link.UserID, link.ExpiresAt); err != nil {
		return fmt.Errorf("failed to create telegram link: %w", err)
	}

	return nil
}

func (r *telegramLinkRepository) Consume(ctx context.Context, code string, now time.Time) (*models.TelegramLink, error) {
	query := `
		DELETE FROM telegram_links
		WHERE code = $1
		RETURNING code, user_id, expires_at`

	link := &models.TelegramLink{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&link.Code, &link.UserID, &link.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume telegram link: %w", err)
	}

	if !now.Before(link.ExpiresAt) {
		return nil, nil
	}

	return link, nil
}

func (r *telegramLinkRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM telegram_links WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired telegram links: %w", err)
	}

	return result.RowsAffected()
}
