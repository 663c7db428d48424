package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/service"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/response"
)

type collaborationService interface {
	Invite(ctx context.Context, timetableID string, req service.InviteCollaboratorRequest, inviterID string) (*models.TimetableCollaborator, error)
	Accept(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error)
	Reject(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error)
	Remove(ctx context.Context, timetableID, targetUserID, requesterID string) error
}

// CollaboratorHandler manages collaboration invitation endpoints. Invitation
// events surfaced here are what the notification dispatcher upstream reacts
// to; this API performs no outbound calls itself.
type CollaboratorHandler struct {
	service collaborationService
}

// NewCollaboratorHandler constructs handler.
func NewCollaboratorHandler(svc collaborationService) *CollaboratorHandler {
	return &CollaboratorHandler{service: svc}
}

// Invite godoc
// @Summary Invite a collaborator (owner only)
// @Tags Collaborators
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body service.InviteCollaboratorRequest true "Invitation payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Duplicate invitation"
// @Router /timetables/{id}/collaborators [post]
func (h *CollaboratorHandler) Invite(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.InviteCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	collaborator, err := h.service.Invite(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, collaborator)
}

// Accept godoc
// @Summary Accept a pending invitation
// @Tags Collaborators
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Invitation not pending"
// @Router /timetables/{id}/invitation/accept [post]
func (h *CollaboratorHandler) Accept(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	collaborator, err := h.service.Accept(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collaborator)
}

// Reject godoc
// @Summary Reject a pending invitation
// @Tags Collaborators
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Invitation not pending"
// @Router /timetables/{id}/invitation/reject [post]
func (h *CollaboratorHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	collaborator, err := h.service.Reject(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, collaborator)
}

// Remove godoc
// @Summary Revoke a collaborator's access, or leave a shared timetable
// @Tags Collaborators
// @Param id path string true "Timetable ID"
// @Param userId path string true "Collaborator user ID"
// @Success 204
// @Router /timetables/{id}/collaborators/{userId} [delete]
func (h *CollaboratorHandler) Remove(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Remove(c.Request.Context(), c.Param("id"), c.Param("userId"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
