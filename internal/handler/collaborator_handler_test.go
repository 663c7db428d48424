package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/service"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type collaborationServiceMock struct {
	inviteResp *models.TimetableCollaborator
	inviteErr  error
	acceptResp *models.TimetableCollaborator
	acceptErr  error
	rejectResp *models.TimetableCollaborator
	rejectErr  error
	removeErr  error
	lastTT     string
	lastTarget string
	lastUser   string
}

func (m *collaborationServiceMock) Invite(ctx context.Context, timetableID string, req service.InviteCollaboratorRequest, inviterID string) (*models.TimetableCollaborator, error) {
	m.lastTT = timetableID
	m.lastUser = inviterID
	return m.inviteResp, m.inviteErr
}

func (m *collaborationServiceMock) Accept(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error) {
	m.lastTT = timetableID
	m.lastUser = userID
	return m.acceptResp, m.acceptErr
}

func (m *collaborationServiceMock) Reject(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error) {
	m.lastTT = timetableID
	m.lastUser = userID
	return m.rejectResp, m.rejectErr
}

func (m *collaborationServiceMock) Remove(ctx context.Context, timetableID, targetUserID, requesterID string) error {
	m.lastTT = timetableID
	m.lastTarget = targetUserID
	m.lastUser = requesterID
	return m.removeErr
}

func TestCollaboratorHandlerInvite(t *testing.T) {
	mockSvc := &collaborationServiceMock{inviteResp: &models.TimetableCollaborator{
		ID: "collab-1", Status: models.InvitationPending, Role: models.RoleViewer,
	}}
	handler := NewCollaboratorHandler(mockSvc)

	payload, _ := json.Marshal(service.InviteCollaboratorRequest{UserID: "friend-1", Role: "VIEWER"})
	c, w := testContext(t, http.MethodPost, "/timetables/tt-1/collaborators", payload)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Invite(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tt-1", mockSvc.lastTT)
	assert.Equal(t, "user-1", mockSvc.lastUser)
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
}

func TestCollaboratorHandlerInviteDuplicate(t *testing.T) {
	mockSvc := &collaborationServiceMock{inviteErr: appErrors.ErrDuplicateInvitation}
	handler := NewCollaboratorHandler(mockSvc)

	payload, _ := json.Marshal(service.InviteCollaboratorRequest{UserID: "friend-1", Role: "VIEWER"})
	c, w := testContext(t, http.MethodPost, "/timetables/tt-1/collaborators", payload)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Invite(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_INVITATION")
}

func TestCollaboratorHandlerAccept(t *testing.T) {
	mockSvc := &collaborationServiceMock{acceptResp: &models.TimetableCollaborator{
		ID: "collab-1", Status: models.InvitationAccepted,
	}}
	handler := NewCollaboratorHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/timetables/tt-1/invitation/accept", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Accept(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastUser)
	assert.Contains(t, w.Body.String(), `"status":"ACCEPTED"`)
}

func TestCollaboratorHandlerRejectNotPending(t *testing.T) {
	mockSvc := &collaborationServiceMock{rejectErr: appErrors.ErrInvalidStateTransition}
	handler := NewCollaboratorHandler(mockSvc)

	c, w := testContext(t, http.MethodPost, "/timetables/tt-1/invitation/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Reject(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCollaboratorHandlerRemove(t *testing.T) {
	mockSvc := &collaborationServiceMock{}
	handler := NewCollaboratorHandler(mockSvc)

	c, w := testContext(t, http.MethodDelete, "/timetables/tt-1/collaborators/friend-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}, {Key: "userId", Value: "friend-1"}}

	handler.Remove(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "friend-1", mockSvc.lastTarget)
	assert.Equal(t, "user-1", mockSvc.lastUser)
}
