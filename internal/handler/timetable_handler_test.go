package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/timetable-api/internal/middleware"
	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/service"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

type timetableServiceMock struct {
	createResp *models.Timetable
	createErr  error
	listResp   *models.TimetableSummary
	listErr    error
	getResp    *models.TimetableDetail
	getErr     error
	updateResp *models.Timetable
	updateErr  error
	deleteErr  error
	lastID     string
	lastUser   string
}

func (m *timetableServiceMock) Create(ctx context.Context, req service.CreateTimetableRequest, userID string) (*models.Timetable, error) {
	m.lastUser = userID
	return m.createResp, m.createErr
}

func (m *timetableServiceMock) List(ctx context.Context, userID string) (*models.TimetableSummary, error) {
	m.lastUser = userID
	return m.listResp, m.listErr
}

func (m *timetableServiceMock) Get(ctx context.Context, id, userID string) (*models.TimetableDetail, error) {
	m.lastID = id
	m.lastUser = userID
	return m.getResp, m.getErr
}

func (m *timetableServiceMock) Update(ctx context.Context, id string, req service.UpdateTimetableRequest, userID string) (*models.Timetable, error) {
	m.lastID = id
	return m.updateResp, m.updateErr
}

func (m *timetableServiceMock) Delete(ctx context.Context, id, userID string) error {
	m.lastID = id
	return m.deleteErr
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1"})
	return c, w
}

func TestTimetableHandlerCreate(t *testing.T) {
	mockSvc := &timetableServiceMock{createResp: &models.Timetable{ID: "tt-1", Name: "Fall Semester"}}
	handler := NewTimetableHandler(mockSvc)

	payload, _ := json.Marshal(service.CreateTimetableRequest{Name: "Fall Semester"})
	c, w := testContext(t, http.MethodPost, "/timetables", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastUser)
	assert.Contains(t, w.Body.String(), `"id":"tt-1"`)
}

func TestTimetableHandlerCreateInvalidBody(t *testing.T) {
	handler := NewTimetableHandler(&timetableServiceMock{})

	c, w := testContext(t, http.MethodPost, "/timetables", []byte(`{"name":`))
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerCreateMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTimetableHandler(&timetableServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetables", bytes.NewReader(nil))
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimetableHandlerGet(t *testing.T) {
	mockSvc := &timetableServiceMock{getResp: &models.TimetableDetail{
		Timetable: models.Timetable{ID: "tt-1"},
		Role:      models.RoleOwner,
	}}
	handler := NewTimetableHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/timetables/tt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tt-1", mockSvc.lastID)
	assert.Contains(t, w.Body.String(), `"role":"OWNER"`)
}

func TestTimetableHandlerGetForbidden(t *testing.T) {
	mockSvc := &timetableServiceMock{getErr: appErrors.ErrForbidden}
	handler := NewTimetableHandler(mockSvc)

	c, w := testContext(t, http.MethodGet, "/timetables/tt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTimetableHandlerDelete(t *testing.T) {
	mockSvc := &timetableServiceMock{}
	handler := NewTimetableHandler(mockSvc)

	c, w := testContext(t, http.MethodDelete, "/timetables/tt-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tt-1", mockSvc.lastID)
}
