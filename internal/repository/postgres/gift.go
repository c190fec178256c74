package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
)

type giftRepository struct {
	db *sql.DB
}

// NewGiftRepository creates a new gift repository
func NewGiftRepository(db *sql.DB) repository.GiftRepository {
	return &giftRepository{db: db}
}

const giftColumns = `
	c.id, c.titre, c.prix, c.description, c.photo_url, c.lien_achat,
	c.owner_id, c.is_purchased, c.purchased_by_id, c.created_at, c.updated_at,
	ARRAY(SELECT cf.famille_id FROM cadeau_familles cf WHERE cf.cadeau_id = c.id ORDER BY cf.famille_id)`

func scanGift(row interface{ Scan(...any) error }) (*models.Gift, error) {
	gift := &models.Gift{}
	var photoURL, purchaseLink sql.NullString
	var purchasedByID sql.NullInt64
	err := row.Scan(
		&gift.ID,
		&gift.Title,
		&gift.Price,
		&gift.Description,
		&photoURL,
		&purchaseLink,
		&gift.OwnerID,
		&gift.IsPurchased,
		&purchasedByID,
		&gift.CreatedAt,
		&gift.UpdatedAt,
		pq.Array(&gift.FamilyIDs),
	)
	if err != nil {
		return nil, err
	}
	if photoURL.Valid {
		gift.PhotoURL = &photoURL.String
	}
	if purchaseLink.Valid {
		gift.PurchaseLink = &purchaseLink.String
	}
	if purchasedByID.Valid {
		gift.PurchasedByID = &purchasedByID.Int64
	}
	return gift, nil
}

func (r *giftRepository) Create(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	gift.CreatedAt = now
	gift.UpdatedAt = now
	gift.IsPurchased = false
	gift.PurchasedByID = nil

	err = tx.QueryRowContext(ctx, `
		INSERT INTO cadeaux (titre, prix, description, photo_url, lien_achat, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		gift.Title,
		gift.Price,
		gift.Description,
		gift.PhotoURL,
		gift.PurchaseLink,
		gift.OwnerID,
		gift.CreatedAt,
		gift.UpdatedAt,
	).Scan(&gift.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create gift: %w", err)
	}

	if err := linkFamilies(ctx, tx, gift.ID, gift.FamilyIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit gift: %w", err)
	}

	return gift, nil
}

// linkFamilies replaces the family listing of a gift.
func linkFamilies(ctx context.Context, tx *sql.Tx, giftID int64, familyIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cadeau_familles WHERE cadeau_id = $1`, giftID); err != nil {
		return fmt.Errorf("failed to clear gift families: %w", err)
	}

	if len(familyIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO cadeau_familles (cadeau_id, famille_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`

	if _, err := tx.ExecContext(ctx, query, giftID, pq.Array(familyIDs)); err != nil {
		return fmt.Errorf("failed to link gift families: %w", err)
	}

	return nil
}

func (r *giftRepository) GetByID(ctx context.Context, id int64) (*models.Gift, error) {
	query := `SELECT ` + giftColumns + ` FROM cadeaux c WHERE c.id = $1`

	gift, err := scanGift(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gift by ID: %w", err)
	}

	return gift, nil
}

func (r *giftRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.Gift, error) {
	query := `
		SELECT ` + giftColumns + `
		FROM cadeaux c
		INNER JOIN cadeau_familles l ON l.cadeau_id = c.id
		WHERE l.famille_id = $1
		ORDER BY c.created_at DESC`

	return r.queryGifts(ctx, query, familyID)
}

func (r *giftRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*models.Gift, error) {
	query := `
		SELECT ` + giftColumns + `
		FROM cadeaux c
		WHERE c.owner_id = $1
		ORDER BY c.created_at DESC`

	return r.queryGifts(ctx, query, ownerID)
}

func (r *giftRepository) GetVisibleTo(ctx context.Context, userID int64) ([]*models.Gift, error) {
	query := `
		SELECT ` + giftColumns + `
		FROM cadeaux c
		WHERE EXISTS (
			SELECT 1
			FROM cadeau_familles l
			INNER JOIN famille_membres fm ON fm.famille_id = l.famille_id
			WHERE l.cadeau_id = c.id AND fm.user_id = $1
		)
		ORDER BY c.created_at DESC`

	return r.queryGifts(ctx, query, userID)
}

func (r *giftRepository) queryGifts(ctx context.Context, query string, args ...any) ([]*models.Gift, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gifts: %w", err)
	}
	defer rows.Close()

	var gifts []*models.Gift
	for rows.Next() {
		gift, err := scanGift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift: %w", err)
		}
		gifts = append(gifts, gift)
	}

	return gifts, rows.Err()
}

func (r *giftRepository) Update(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	gift.UpdatedAt = time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE cadeaux
		SET titre = $2, prix = $3, description = $4, photo_url = $5, lien_achat = $6, updated_at = $7
		WHERE id = $1`,
		gift.ID,
		gift.Title,
		gift.Price,
		gift.Description,
		gift.PhotoURL,
		gift.PurchaseLink,
		gift.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update gift: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("gift %d: %w", gift.ID, repository.ErrNotFound)
	}

	if err := linkFamilies(ctx, tx, gift.ID, gift.FamilyIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit gift: %w", err)
	}

	return gift, nil
}

func (r *giftRepository) MarkPurchased(ctx context.Context, giftID, buyerID int64) error {
	query := `
		UPDATE cadeaux
		SET is_purchased = TRUE, purchased_by_id = $2, updated_at = $3
		WHERE id = $1 AND is_purchased = FALSE`

	return execOne(ctx, r.db, "mark gift purchased", query, giftID, buyerID, time.Now())
}

func (r *giftRepository) UnmarkPurchased(ctx context.Context, giftID, buyerID int64) error {
	query := `
		UPDATE cadeaux
		SET is_purchased = FALSE, purchased_by_id = NULL, updated_at = $3
		WHERE id = $1 AND purchased_by_id = $2`

	return execOne(ctx, r.db, "unmark gift purchased", query, giftID, buyerID, time.Now())
}

func (r *giftRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete gift", `DELETE FROM cadeaux WHERE id = $1`, id)
}
