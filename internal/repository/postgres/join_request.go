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

type joinRequestRepository struct {
	db *sql.DB
}

// NewJoinRequestRepository creates a new join request repository
func NewJoinRequestRepository(db *sql.DB) repository.JoinRequestRepository {
	return &joinRequestRepository{db: db}
}

func (r *joinRequestRepository) Create(ctx context.Context, request *models.JoinRequest) (*models.JoinRequest, error) {
	query := `
		INSERT INTO demandes_adhesion (famille_id, user_id, message, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	request.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		request.FamilyID,
		request.UserID,
		request.Message,
		request.CreatedAt,
	).Scan(&request.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	return request, nil
}

func (r *joinRequestRepository) GetByID(ctx context.Context, id int64) (*models.JoinRequest, error) {
	query := `
		SELECT d.id, d.famille_id, d.user_id, d.message, d.created_at, u.username, u.email
		FROM demandes_adhesion d
		INNER JOIN users u ON u.id = d.user_id
		WHERE d.id = $1`

	request := &models.JoinRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.FamilyID,
		&request.UserID,
		&request.Message,
		&request.CreatedAt,
		&request.Username,
		&request.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get join request by ID: %w", err)
	}

	return request, nil
}

func (r *joinRequestRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.JoinRequest, error) {
	query := `
		SELECT d.id, d.famille_id, d.user_id, d.message, d.created_at, u.username, u.email
		FROM demandes_adhesion d
		INNER JOIN users u ON u.id = d.user_id
		WHERE d.famille_id = $1
		ORDER BY d.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.JoinRequest
	for rows.Next() {
		request := &models.JoinRequest{}
		err := rows.Scan(
			&request.ID,
			&request.FamilyID,
			&request.UserID,
			&request.Message,
			&request.CreatedAt,
			&request.Username,
			&request.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

func (r *joinRequestRepository) Exists(ctx context.Context, familyID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM demandes_adhesion
			WHERE famille_id = $1 AND user_id = $2
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, familyID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check join request: %w", err)
	}

	return exists, nil
}

func (r *joinRequestRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "delete join request", `DELETE FROM demandes_adhesion WHERE id = $1`, id)
}
