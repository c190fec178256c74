package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
)

type contributionRepository struct {
	db *sql.DB
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db *sql.DB) repository.ContributionRepository {
	return &contributionRepository{db: db}
}

const contributionColumns = `k.id, k.cadeau_id, k.user_id, k.montant, k.message, k.is_anonymous, k.created_at`

func (r *contributionRepository) Create(ctx context.Context, contribution *models.Contribution) (*models.Contribution, error) {
	query := `
		INSERT INTO contributions (cadeau_id, user_id, montant, message, is_anonymous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if contribution.CreatedAt.IsZero() {
		contribution.CreatedAt = time.Now()
	}

	err := r.db.QueryRowContext(ctx, query,
		contribution.GiftID,
		contribution.UserID,
		contribution.Amount,
		contribution.Message,
		contribution.IsAnonymous,
		contribution.CreatedAt,
	).Scan(&contribution.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create contribution: %w", err)
	}

	return contribution, nil
}

func (r *contributionRepository) GetByID(ctx context.Context, id int64) (*models.Contribution, error) {
	query := `SELECT ` + contributionColumns + ` FROM contributions k WHERE k.id = $1`

	contribution := &models.Contribution{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&contribution.ID,
		&contribution.GiftID,
		&contribution.UserID,
		&contribution.Amount,
		&contribution.Message,
		&contribution.IsAnonymous,
		&contribution.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contribution by ID: %w", err)
	}

	return contribution, nil
}

func (r *contributionRepository) GetByGift(ctx context.Context, giftID int64) ([]*models.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions k
		WHERE k.cadeau_id = $1
		ORDER BY k.created_at DESC, k.id DESC`

	return r.queryContributions(ctx, query, giftID)
}

func (r *contributionRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions k
		WHERE k.user_id = $1
		ORDER BY k.created_at DESC, k.id DESC`

	return r.queryContributions(ctx, query, userID)
}

func (r *contributionRepository) queryContributions(ctx context.Context, query string, args ...any) ([]*models.Contribution, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.Contribution
	for rows.Next() {
		contribution := &models.Contribution{}
		err := rows.Scan(
			&contribution.ID,
			&contribution.GiftID,
			&contribution.UserID,
			&contribution.Amount,
			&contribution.Message,
			&contribution.IsAnonymous,
			&contribution.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, contribution)
	}

	return contributions, rows.Err()
}

func (r *contributionRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.FamilyContribution, error) {
	query := `
		SELECT ` + contributionColumns + `, c.titre, c.owner_id
		FROM contributions k
		INNER JOIN cadeaux c ON c.id = k.cadeau_id
		INNER JOIN cadeau_familles l ON l.cadeau_id = c.id
		WHERE l.famille_id = $1
		ORDER BY k.created_at DESC, k.id DESC`

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*models.FamilyContribution
	for rows.Next() {
		fc := &models.FamilyContribution{}
		err := rows.Scan(
			&fc.ID,
			&fc.GiftID,
			&fc.UserID,
			&fc.Amount,
			&fc.Message,
			&fc.IsAnonymous,
			&fc.CreatedAt,
			&fc.GiftTitle,
			&fc.GiftOwnerID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family contribution: %w", err)
		}
		contributions = append(contributions, fc)
	}

	return contributions, rows.Err()
}

func (r *contributionRepository) StatsByUser(ctx context.Context, userID int64) (*models.ContributionStats, error) {
	query := `
		SELECT COALESCE(SUM(montant), 0), COUNT(*)
		FROM contributions
		WHERE user_id = $1`

	stats := &models.ContributionStats{Total: decimal.Zero}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&stats.Total, &stats.Count); err != nil {
		return nil, fmt.Errorf("failed to get contribution stats: %w", err)
	}

	return stats, nil
}

func (r *contributionRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete contribution", `DELETE FROM contributions WHERE id = $1`, id)
}
