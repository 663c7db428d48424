package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/timetable-api/internal/models"
)

const collaboratorColumns = `id, timetable_id, user_id, role, status, invited_at, accepted_at`

// CollaboratorRepository provides persistence for timetable collaborators.
type CollaboratorRepository struct {
	db *sqlx.DB
}

// NewCollaboratorRepository creates a new collaborator repository.
func NewCollaboratorRepository(db *sqlx.DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

// FindByTimetableAndUser loads the single grant a user holds on a timetable.
func (r *CollaboratorRepository) FindByTimetableAndUser(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_collaborators WHERE timetable_id = $1 AND user_id = $2`, collaboratorColumns)
	var collaborator models.TimetableCollaborator
	if err := r.db.GetContext(ctx, &collaborator, query, timetableID, userID); err != nil {
		return nil, err
	}
	return &collaborator, nil
}

// ListByTimetable returns every collaborator row of a timetable.
func (r *CollaboratorRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableCollaborator, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_collaborators WHERE timetable_id = $1 ORDER BY invited_at ASC`, collaboratorColumns)
	var collaborators []models.TimetableCollaborator
	if err := r.db.SelectContext(ctx, &collaborators, query, timetableID); err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	return collaborators, nil
}

// Create stores a new collaborator invitation.
func (r *CollaboratorRepository) Create(ctx context.Context, collaborator *models.TimetableCollaborator) error {
	if collaborator.ID == "" {
		collaborator.ID = uuid.NewString()
	}
	if collaborator.InvitedAt.IsZero() {
		collaborator.InvitedAt = time.Now().UTC()
	}

	const query = `INSERT INTO timetable_collaborators (id, timetable_id, user_id, role, status, invited_at, accepted_at) VALUES (:id, :timetable_id, :user_id, :role, :status, :invited_at, :accepted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, collaborator); err != nil {
		return fmt.Errorf("create collaborator: %w", err)
	}
	return nil
}

// UpdateStatus transitions a PENDING invitation to its terminal state. The
// status guard in the WHERE clause makes concurrent accept/reject calls
// settle on exactly one winner; it reports whether a row was transitioned.
func (r *CollaboratorRepository) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus, acceptedAt *time.Time) (bool, error) {
	const query = `UPDATE timetable_collaborators SET status = $2, accepted_at = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, id, status, acceptedAt, models.InvitationPending)
	if err != nil {
		return false, fmt.Errorf("update collaborator status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update collaborator status result: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a collaborator grant and reports whether a row was deleted.
func (r *CollaboratorRepository) Delete(ctx context.Context, timetableID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetable_collaborators WHERE timetable_id = $1 AND user_id = $2`, timetableID, userID)
	if err != nil {
		return false, fmt.Errorf("delete collaborator: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete collaborator result: %w", err)
	}
	return affected > 0, nil
}
