package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type collaboratorRepository interface {
	collaboratorFinder
	ListByTimetable(ctx context.Context, timetableID string) ([]models.TimetableCollaborator, error)
	Create(ctx context.Context, collaborator *models.TimetableCollaborator) error
	UpdateStatus(ctx context.Context, id string, status models.InvitationStatus, acceptedAt *time.Time) (bool, error)
	Delete(ctx context.Context, timetableID, userID string) (bool, error)
}

// InviteCollaboratorRequest describes payload for inviting a user.
type InviteCollaboratorRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,collabrole"`
}

// CollaborationService governs the invitation lifecycle: rows are created
// PENDING and transition exactly once to ACCEPTED or REJECTED by the invited
// user. The caller of this service is responsible for dispatching any
// notifications about the transitions it observes.
type CollaborationService struct {
	repo       collaboratorRepository
	timetables sessionTimetableFinder
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCollaborationService instantiates CollaborationService.
func NewCollaborationService(repo collaboratorRepository, timetables sessionTimetableFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CollaborationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CollaborationService{repo: repo, timetables: timetables, cache: cache, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("collabrole", func(fl validator.FieldLevel) bool {
		switch models.TimetableRole(strings.ToUpper(fl.Field().String())) {
		case models.RoleViewer, models.RoleContributor:
			return true
		default:
			return false
		}
	})
	return svc
}

// Invite creates a PENDING grant. Owner only; self-invites are rejected and
// so is any pair that already has a row, whatever its status.
func (s *CollaborationService) Invite(ctx context.Context, timetableID string, req InviteCollaboratorRequest, inviterID string) (*models.TimetableCollaborator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invitation payload")
	}

	timetable, err := s.loadTimetable(ctx, timetableID)
	if err != nil {
		return nil, err
	}
	if timetable.OwnerID != inviterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner can invite collaborators")
	}
	if req.UserID == inviterID {
		return nil, appErrors.Clone(appErrors.ErrSelfInvitation, "")
	}

	if _, err := s.repo.FindByTimetableAndUser(ctx, timetableID, req.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrDuplicateInvitation, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing invitation")
	}

	collaborator := &models.TimetableCollaborator{
		TimetableID: timetableID,
		UserID:      req.UserID,
		Role:        models.TimetableRole(strings.ToUpper(req.Role)),
		Status:      models.InvitationPending,
	}
	if err := s.repo.Create(ctx, collaborator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invitation")
	}

	s.invalidate(ctx, timetableID)
	return collaborator, nil
}

// Accept transitions the caller's PENDING invitation to ACCEPTED, stamping
// accepted_at. The granted role takes effect immediately.
func (s *CollaborationService) Accept(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error) {
	return s.transition(ctx, timetableID, userID, models.InvitationAccepted)
}

// Reject transitions the caller's PENDING invitation to REJECTED.
func (s *CollaborationService) Reject(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error) {
	return s.transition(ctx, timetableID, userID, models.InvitationRejected)
}

// Remove deletes a collaborator grant. The owner can revoke anyone; a
// collaborator can remove themselves to leave the timetable.
func (s *CollaborationService) Remove(ctx context.Context, timetableID, targetUserID, requesterID string) error {
	timetable, err := s.loadTimetable(ctx, timetableID)
	if err != nil {
		return err
	}
	if timetable.OwnerID != requesterID && targetUserID != requesterID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owner can remove other collaborators")
	}

	deleted, err := s.repo.Delete(ctx, timetableID, targetUserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove collaborator")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "collaborator not found")
	}

	s.invalidate(ctx, timetableID)
	return nil
}

func (s *CollaborationService) transition(ctx context.Context, timetableID, userID string, status models.InvitationStatus) (*models.TimetableCollaborator, error) {
	collaborator, err := s.repo.FindByTimetableAndUser(ctx, timetableID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invitation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invitation")
	}
	if collaborator.Status != models.InvitationPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "")
	}

	var acceptedAt *time.Time
	if status == models.InvitationAccepted {
		now := time.Now().UTC()
		acceptedAt = &now
	}

	// The repository refuses the update unless the row is still PENDING, so a
	// concurrent accept and reject settle on exactly one outcome.
	transitioned, err := s.repo.UpdateStatus(ctx, collaborator.ID, status, acceptedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invitation")
	}
	if !transitioned {
		return nil, appErrors.Clone(appErrors.ErrInvalidStateTransition, "")
	}

	collaborator.Status = status
	collaborator.AcceptedAt = acceptedAt
	s.invalidate(ctx, timetableID)
	return collaborator, nil
}

func (s *CollaborationService) loadTimetable(ctx context.Context, timetableID string) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return timetable, nil
}

func (s *CollaborationService) invalidate(ctx context.Context, timetableID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("timetable:%s:*", timetableID)); err != nil {
		s.logger.Warn("collaboration cache invalidation failed", zap.String("timetable_id", timetableID), zap.Error(err))
	}
}
