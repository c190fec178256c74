package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kerhoff/ListeDeNoel/internal/models"
	"github.com/Kerhoff/ListeDeNoel/internal/repository"
)

type familyRepository struct {
	db *sql.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *sql.DB) repository.FamilyRepository {
	return &familyRepository{db: db}
}

const familyColumns = `f.id, f.nom, f.description, f.creator_id, f.created_at, f.updated_at`

func scanFamily(row interface{ Scan(...any) error }) (*models.Family, error) {
	family := &models.Family{}
	err := row.Scan(
		&family.ID,
		&family.Name,
		&family.Description,
		&family.CreatorID,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	return family, err
}

func (r *familyRepository) Create(ctx context.Context, family *models.Family) (*models.Family, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	family.CreatedAt = now
	family.UpdatedAt = now

	err = tx.QueryRowContext(ctx, `
		INSERT INTO familles (nom, description, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		family.Name,
		family.Description,
		family.CreatorID,
		family.CreatedAt,
		family.UpdatedAt,
	).Scan(&family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO famille_membres (famille_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)`,
		family.ID, family.CreatorID, models.RoleAdmin, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add family creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit family: %w", err)
	}

	return family, nil
}

func (r *familyRepository) GetByID(ctx context.Context, id int64) (*models.Family, error) {
	query := `SELECT ` + familyColumns + ` FROM familles f WHERE f.id = $1`

	family, err := scanFamily(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family by ID: %w", err)
	}

	return family, nil
}

func (r *familyRepository) GetByMember(ctx context.Context, userID int64) ([]*models.Family, error) {
	query := `
		SELECT ` + familyColumns + `
		FROM familles f
		INNER JOIN famille_membres fm ON fm.famille_id = f.id
		WHERE fm.user_id = $1
		ORDER BY f.nom ASC`

	return r.queryFamilies(ctx, query, userID)
}

func (r *familyRepository) Search(ctx context.Context, query string, excludeMemberID int64) ([]*models.Family, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	sqlQuery := `
		SELECT ` + familyColumns + `
		FROM familles f
		WHERE f.nom ILIKE $1
		  AND NOT EXISTS (
			SELECT 1 FROM famille_membres fm
			WHERE fm.famille_id = f.id AND fm.user_id = $2
		  )
		ORDER BY f.nom ASC
		LIMIT 50`

	return r.queryFamilies(ctx, sqlQuery, pattern, excludeMemberID)
}

func (r *familyRepository) queryFamilies(ctx context.Context, query string, args ...any) ([]*models.Family, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []*models.Family
	for rows.Next() {
		family, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, rows.Err()
}

func (r *familyRepository) Update(ctx context.Context, family *models.Family) (*models.Family, error) {
	query := `
		UPDATE familles
		SET nom = $2, description = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at`

	family.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		family.ID,
		family.Name,
		family.Description,
		family.UpdatedAt,
	).Scan(&family.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("family %d: %w", family.ID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update family: %w", err)
	}

	return family, nil
}

func (r *familyRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete family", `DELETE FROM familles WHERE id = $1`, id)
}

func (r *familyRepository) AddMember(ctx context.Context, familyID, userID int64, role string) error {
	query := `
		INSERT INTO famille_membres (famille_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (famille_id, user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, familyID, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}

	return nil
}

func (r *familyRepository) RemoveMember(ctx context.Context, familyID, userID int64) error {
	return execOne(ctx, r.db, "remove family member",
		`DELETE FROM famille_membres WHERE famille_id = $1 AND user_id = $2`,
		familyID, userID,
	)
}

func (r *familyRepository) GetMembers(ctx context.Context, familyID int64) ([]models.Member, error) {
	query := `
		SELECT u.id, u.username, u.email, fm.role, fm.joined_at
		FROM users u
		INNER JOIN famille_membres fm ON fm.user_id = u.id
		WHERE fm.famille_id = $1
		ORDER BY fm.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func (r *familyRepository) IsMember(ctx context.Context, familyID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM famille_membres
			WHERE famille_id = $1 AND user_id = $2
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, familyID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check family membership: %w", err)
	}

	return exists, nil
}
