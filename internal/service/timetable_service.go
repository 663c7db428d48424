package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/schedule"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type timetableRepository interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListOwnedByUser(ctx context.Context, userID string) ([]models.Timetable, error)
	ListSharedWithUser(ctx context.Context, userID string) ([]models.Timetable, error)
	Create(ctx context.Context, timetable *models.Timetable) error
	Update(ctx context.Context, timetable *models.Timetable) error
	Delete(ctx context.Context, id string) error
}

type timetableSessionLister interface {
	ListByTimetable(ctx context.Context, timetableID string) ([]models.ClassSession, error)
}

type timetableCollaboratorReader interface {
	collaboratorFinder
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableCollaborator, error)
}

// CreateTimetableRequest describes payload for creating a timetable.
type CreateTimetableRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description"`
}

// UpdateTimetableRequest renames or re-describes a timetable. Nil fields are
// left unchanged.
type UpdateTimetableRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description"`
}

// TimetableService coordinates timetable lifecycle and read projections.
type TimetableService struct {
	repo          timetableRepository
	sessions      timetableSessionLister
	collaborators timetableCollaboratorReader
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(repo timetableRepository, sessions timetableSessionLister, collaborators timetableCollaboratorReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, sessions: sessions, collaborators: collaborators, cache: cache, validator: validate, logger: logger}
}

// Create registers a new timetable owned by the requesting user.
func (s *TimetableService) Create(ctx context.Context, req CreateTimetableRequest, userID string) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	timetable := &models.Timetable{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
	}
	if err := s.repo.Create(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}
	return timetable, nil
}

// List returns the user's timetables grouped into owned and shared. Shared
// covers accepted collaborations only.
func (s *TimetableService) List(ctx context.Context, userID string) (*models.TimetableSummary, error) {
	owned, err := s.repo.ListOwnedByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	shared, err := s.repo.ListSharedWithUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shared timetables")
	}
	return &models.TimetableSummary{Owned: owned, Shared: shared}, nil
}

// Get returns the full timetable projection for a user with access. Conflict
// pairs are included as warnings; pre-existing overlapping data stays visible
// rather than being hidden or auto-corrected.
func (s *TimetableService) Get(ctx context.Context, id, userID string) (*models.TimetableDetail, error) {
	cacheKey := timetableDetailKey(id, userID)
	var cached models.TimetableDetail
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	timetable, role, err := s.loadWithRole(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !role.CanView() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this timetable")
	}

	sessions, err := s.sessions.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	collaborators, err := s.collaborators.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list collaborators")
	}

	detail := &models.TimetableDetail{
		Timetable:     *timetable,
		Role:          role,
		Sessions:      sessions,
		Collaborators: collaborators,
		Conflicts:     schedule.FindConflicts(sessions),
	}

	_ = s.cache.Set(ctx, cacheKey, detail, 0)
	return detail, nil
}

// Update renames or re-describes a timetable. Owner only.
func (s *TimetableService) Update(ctx context.Context, id string, req UpdateTimetableRequest, userID string) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	timetable, role, err := s.loadWithRole(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleOwner {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner can modify the timetable")
	}

	if req.Name != nil {
		timetable.Name = *req.Name
	}
	if req.Description != nil {
		timetable.Description = req.Description
	}
	if err := s.repo.Update(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}

	s.invalidate(ctx, id)
	return timetable, nil
}

// Delete removes a timetable with all its sessions and collaborator grants.
// Owner only.
func (s *TimetableService) Delete(ctx context.Context, id, userID string) error {
	_, role, err := s.loadWithRole(ctx, id, userID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owner can delete the timetable")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *TimetableService) loadWithRole(ctx context.Context, id, userID string) (*models.Timetable, models.TimetableRole, error) {
	timetable, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.RoleNone, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, models.RoleNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	role, err := resolveRole(ctx, s.collaborators, timetable, userID)
	if err != nil {
		return nil, models.RoleNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role")
	}
	return timetable, role, nil
}

func (s *TimetableService) invalidate(ctx context.Context, timetableID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("timetable:%s:*", timetableID)); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.String("timetable_id", timetableID), zap.Error(err))
	}
}

func timetableDetailKey(timetableID, userID string) string {
	return fmt.Sprintf("timetable:%s:detail:%s", timetableID, userID)
}
