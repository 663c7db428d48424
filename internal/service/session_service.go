package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/repository"
	"github.com/campushub/timetable-api/internal/schedule"
	"github.com/campushub/timetable-api/internal/timerange"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type sessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	ListByTimetable(ctx context.Context, timetableID string) ([]models.ClassSession, error)
	CreateChecked(ctx context.Context, session *models.ClassSession, check repository.ConflictCheck) error
	UpdateChecked(ctx context.Context, session *models.ClassSession, check repository.ConflictCheck) error
	Delete(ctx context.Context, id string) (bool, error)
}

type sessionTimetableFinder interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
}

type courseFavoriteChecker interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	IsFavorite(ctx context.Context, userID, courseID string) (bool, error)
}

// CreateSessionRequest describes payload for creating a recurring session.
type CreateSessionRequest struct {
	CourseID  string  `json:"course_id" validate:"required"`
	Title     string  `json:"title" validate:"required,max=200"`
	DayOfWeek int     `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	Location  *string `json:"location"`
}

// UpdateSessionRequest retimes, relocates, renames or re-days a session.
// Nil fields keep their stored value; changed fields land atomically or not
// at all.
type UpdateSessionRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
	DayOfWeek *int    `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Location  *string `json:"location"`
}

// SessionService validates and commits session mutations. Every write runs
// its conflict check and commit as one atomic unit against the timetable's
// target day.
type SessionService struct {
	repo          sessionRepository
	timetables    sessionTimetableFinder
	collaborators collaboratorFinder
	courses       courseFavoriteChecker
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewSessionService instantiates SessionService.
func NewSessionService(repo sessionRepository, timetables sessionTimetableFinder, collaborators collaboratorFinder, courses courseFavoriteChecker, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:          repo,
		timetables:    timetables,
		collaborators: collaborators,
		courses:       courses,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
	}
}

// Create validates and inserts a new recurring session. The referenced course
// must be in the creating user's favorites; this gate applies at creation
// time only and is never re-validated afterwards.
func (s *SessionService) Create(ctx context.Context, timetableID string, req CreateSessionRequest, userID string) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	if err := s.requireSessionRights(ctx, timetableID, userID); err != nil {
		return nil, err
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	favorite, err := s.courses.IsFavorite(ctx, userID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course favorites")
	}
	if !favorite {
		return nil, appErrors.Clone(appErrors.ErrUnfavoritedCourse, "add the course to your favorites before scheduling it")
	}

	if err := validateClockRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	session := &models.ClassSession{
		TimetableID: timetableID,
		CourseID:    req.CourseID,
		Title:       req.Title,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Recurring:   true,
		CreatedBy:   userID,
	}

	if err := s.repo.CreateChecked(ctx, session, s.conflictCheck(*session, "")); err != nil {
		return nil, s.mapWriteError(err, "failed to create session")
	}
	s.invalidate(ctx, timetableID)
	return session, nil
}

// Update applies a partial session mutation (retime, relocate, rename,
// re-day, move, resize). The recomputed (day, start, end) is conflict-checked
// with the session's own prior state excluded; on any failure no field is
// changed.
func (s *SessionService) Update(ctx context.Context, id string, req UpdateSessionRequest, userID string) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	if err := s.requireSessionRights(ctx, existing.TimetableID, userID); err != nil {
		return nil, err
	}

	updated := *existing
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.DayOfWeek != nil {
		updated.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		updated.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		updated.EndTime = *req.EndTime
	}
	if req.Location != nil {
		updated.Location = req.Location
	}

	if err := validateClockRange(updated.StartTime, updated.EndTime); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateChecked(ctx, &updated, s.conflictCheck(updated, existing.ID)); err != nil {
		return nil, s.mapWriteError(err, "failed to update session")
	}
	s.invalidate(ctx, existing.TimetableID)
	return &updated, nil
}

// Delete removes a session. Deleting an already-removed session fails with
// NotFound and changes nothing.
func (s *SessionService) Delete(ctx context.Context, id, userID string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	if err := s.requireSessionRights(ctx, existing.TimetableID, userID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	s.invalidate(ctx, existing.TimetableID)
	return nil
}

// requireSessionRights loads the timetable and requires OWNER or CONTRIBUTOR.
func (s *SessionService) requireSessionRights(ctx context.Context, timetableID, userID string) error {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	role, err := resolveRole(ctx, s.collaborators, timetable, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role")
	}
	if !role.CanManageSessions() {
		return appErrors.Clone(appErrors.ErrForbidden, "viewer access cannot modify sessions")
	}
	return nil
}

// conflictCheck builds the single-candidate check run inside the repository
// transaction, excluding the candidate's own prior identity.
func (s *SessionService) conflictCheck(candidate models.ClassSession, excludeID string) repository.ConflictCheck {
	return func(existing []models.ClassSession) error {
		if conflict := schedule.FirstConflict(candidate, existing, excludeID); conflict != nil {
			s.metrics.RecordConflictRejection()
			domainErr := &models.ScheduleConflictError{Conflict: *conflict}
			return appErrors.Wrap(domainErr, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status,
				fmt.Sprintf("session overlaps %q (%s-%s)", conflict.Title, conflict.StartTime, conflict.EndTime))
		}
		return nil
	}
}

func (s *SessionService) mapWriteError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *SessionService) invalidate(ctx context.Context, timetableID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("timetable:%s:*", timetableID)); err != nil {
		s.logger.Warn("session cache invalidation failed", zap.String("timetable_id", timetableID), zap.Error(err))
	}
}

// validateClockRange parses both times and requires a strictly positive span.
func validateClockRange(startTime, endTime string) error {
	start, err := timerange.Parse(startTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_time must be HH:MM")
	}
	end, err := timerange.Parse(endTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "end_time must be HH:MM")
	}
	if !timerange.IsValidRange(start, end) {
		return appErrors.Clone(appErrors.ErrInvalidTimeRange, "")
	}
	return nil
}
