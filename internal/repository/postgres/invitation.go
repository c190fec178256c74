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

type invitationRepository struct {
	db *sql.DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *sql.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `i.id, i.famille_id, i.email, i.token, i.invited_by, i.accepted, i.expires_at, i.created_at, f.nom`

func scanInvitation(row interface{ Scan(...any) error }) (*models.Invitation, error) {
	invitation := &models.Invitation{}
	err := row.Scan(
		&invitation.ID,
		&invitation.FamilyID,
		&invitation.Email,
		&invitation.Token,
		&invitation.InvitedBy,
		&invitation.Accepted,
		&invitation.ExpiresAt,
		&invitation.CreatedAt,
		&invitation.FamilyName,
	)
	return invitation, err
}

func (r *invitationRepository) Create(ctx context.Context, invitation *models.Invitation) (*models.Invitation, error) {
	query := `
		INSERT INTO invitations (famille_id, email, token, invited_by, accepted, expires_at, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
		RETURNING id`

	invitation.CreatedAt = time.Now()
	invitation.Accepted = false

	err := r.db.QueryRowContext(ctx, query,
		invitation.FamilyID,
		invitation.Email,
		invitation.Token,
		invitation.InvitedBy,
		invitation.ExpiresAt,
		invitation.CreatedAt,
	).Scan(&invitation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return invitation, nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		INNER JOIN familles f ON f.id = i.famille_id
		WHERE i.token = $1`

	invitation, err := scanInvitation(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}

	return invitation, nil
}

func (r *invitationRepository) GetByFamily(ctx context.Context, familyID int64) ([]*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		INNER JOIN familles f ON f.id = i.famille_id
		WHERE i.famille_id = $1
		ORDER BY i.created_at DESC`

	return r.queryInvitations(ctx, query, familyID)
}

func (r *invitationRepository) GetPendingByEmail(ctx context.Context, email string, now time.Time) ([]*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		INNER JOIN familles f ON f.id = i.famille_id
		WHERE LOWER(i.email) = $1 AND i.accepted = FALSE AND i.expires_at > $2
		ORDER BY i.created_at DESC`

	return r.queryInvitations(ctx, query, strings.ToLower(email), now)
}

func (r *invitationRepository) queryInvitations(ctx context.Context, query string, args ...any) ([]*models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}

	return invitations, rows.Err()
}

func (r *invitationRepository) HasPending(ctx context.Context, familyID int64, email string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM invitations
			WHERE famille_id = $1 AND LOWER(email) = $2 AND accepted = FALSE AND expires_at > $3
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, familyID, strings.ToLower(email), now).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}

	return exists, nil
}

func (r *invitationRepository) MarkAccepted(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "accept invitation",
		`UPDATE invitations SET accepted = TRUE WHERE id = $1 AND accepted = FALSE`, id)
}

func (r *invitationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE accepted = FALSE AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}

	return result.RowsAffected()
}
