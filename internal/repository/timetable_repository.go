package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/timetable-api/internal/models"
)

// TimetableRepository provides persistence for timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// FindByID loads a timetable by id.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, name, description, owner_id, created_at, updated_at FROM timetables WHERE id = $1`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListOwnedByUser returns timetables the user owns, newest first.
func (r *TimetableRepository) ListOwnedByUser(ctx context.Context, userID string) ([]models.Timetable, error) {
	const query = `SELECT id, name, description, owner_id, created_at, updated_at FROM timetables WHERE owner_id = $1 ORDER BY created_at DESC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, userID); err != nil {
		return nil, fmt.Errorf("list owned timetables: %w", err)
	}
	return timetables, nil
}

// ListSharedWithUser returns timetables shared with the user through an
// accepted collaboration.
func (r *TimetableRepository) ListSharedWithUser(ctx context.Context, userID string) ([]models.Timetable, error) {
	const query = `SELECT t.id, t.name, t.description, t.owner_id, t.created_at, t.updated_at
		FROM timetables t
		JOIN timetable_collaborators c ON c.timetable_id = t.id
		WHERE c.user_id = $1 AND c.status = $2
		ORDER BY t.created_at DESC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, userID, models.InvitationAccepted); err != nil {
		return nil, fmt.Errorf("list shared timetables: %w", err)
	}
	return timetables, nil
}

// Create stores a new timetable record.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	const query = `INSERT INTO timetables (id, name, description, owner_id, created_at, updated_at) VALUES (:id, :name, :description, :owner_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// Update modifies a timetable's name and description.
func (r *TimetableRepository) Update(ctx context.Context, timetable *models.Timetable) error {
	timetable.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetables SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("update timetable: %w", err)
	}
	return nil
}

// Delete removes a timetable with its sessions and collaborator rows in a
// single transaction.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete timetable: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM class_sessions WHERE timetable_id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable sessions: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM timetable_collaborators WHERE timetable_id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable collaborators: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete timetable: %w", err)
	}
	return nil
}
