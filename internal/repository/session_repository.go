package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/timetable-api/internal/models"
)

const sessionColumns = `id, timetable_id, course_id, title, day_of_week, start_time, end_time, location, recurring, created_by, created_at, updated_at`

// ConflictCheck validates a candidate mutation against the locked sessions of
// its target day. Returning an error aborts the transaction before any write.
type ConflictCheck func(existing []models.ClassSession) error

// SessionRepository provides persistence for recurring class sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sessions WHERE id = $1`, sessionColumns)
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByTimetable returns every session in a timetable ordered by day and
// start time.
func (r *SessionRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.ClassSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sessions WHERE timetable_id = $1 ORDER BY day_of_week ASC, start_time ASC`, sessionColumns)
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, timetableID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// CreateChecked inserts a session after running the conflict check against
// the target day's sessions. Check and insert share one transaction holding
// an exclusive lock on the timetable row, so two concurrent mutations aiming
// at the same slot serialize and the second one re-reads the first's
// committed sessions before its check.
func (r *SessionRepository) CreateChecked(ctx context.Context, session *models.ClassSession, check ConflictCheck) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.runCheck(ctx, tx, session.TimetableID, session.DayOfWeek, check); err != nil {
		return err
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO class_sessions (id, timetable_id, course_id, title, day_of_week, start_time, end_time, location, recurring, created_by, created_at, updated_at) VALUES (:id, :timetable_id, :course_id, :title, :day_of_week, :start_time, :end_time, :location, :recurring, :created_by, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	return nil
}

// UpdateChecked applies all mutable session fields after running the conflict
// check against the session's target day, under the same transaction. A
// failed check leaves every stored field untouched.
func (r *SessionRepository) UpdateChecked(ctx context.Context, session *models.ClassSession, check ConflictCheck) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.runCheck(ctx, tx, session.TimetableID, session.DayOfWeek, check); err != nil {
		return err
	}

	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_sessions SET title = :title, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, location = :location, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update session: %w", err)
	}
	return nil
}

// runCheck serializes conflict checking on the parent timetable row. Locking
// session rows directly would not work: an empty day matches zero rows and
// locks nothing, and at READ COMMITTED a blocked transaction's scan snapshot
// predates the winner's commit, so a freshly inserted row is never seen. The
// timetable lock is taken as its own statement; the day scan that follows
// runs on a snapshot taken after the lock was granted and therefore sees
// every committed concurrent write.
func (r *SessionRepository) runCheck(ctx context.Context, tx *sqlx.Tx, timetableID string, dayOfWeek int, check ConflictCheck) error {
	if check == nil {
		return nil
	}
	var lockedID string
	if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM timetables WHERE id = $1 FOR UPDATE`, timetableID); err != nil {
		return fmt.Errorf("lock timetable: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM class_sessions WHERE timetable_id = $1 AND day_of_week = $2 ORDER BY start_time ASC`, sessionColumns)
	var existing []models.ClassSession
	if err := tx.SelectContext(ctx, &existing, query, timetableID, dayOfWeek); err != nil {
		return fmt.Errorf("read sessions for day: %w", err)
	}
	return check(existing)
}

// Delete removes a session by id and reports whether a row was deleted.
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM class_sessions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete session result: %w", err)
	}
	return affected > 0, nil
}
