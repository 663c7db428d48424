package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

func newExportService(t *testing.T) *ExportService {
	t.Helper()
	timetables := ownedTimetables()
	calendar := NewCalendarService(weeklySessions(), timetables, collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())
	return NewExportService(timetables, calendar, zap.NewNop())
}

func TestExportServiceCSV(t *testing.T) {
	service := newExportService(t)

	result, err := service.Export(context.Background(), "tt-1", "owner-1", "csv", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "fall-semester.csv", result.Filename)

	content := string(result.Content)
	assert.Contains(t, content, "Day,Start,End,Title,Location")
	assert.Contains(t, content, "Monday,09:00,10:00,Linear Algebra")
	assert.Contains(t, content, "Wednesday,13:00,14:30,Algorithms")
	// Sorted by day then start time.
	assert.Less(t, strings.Index(content, "Linear Algebra"), strings.Index(content, "Algorithms"))
}

func TestExportServiceCSVSkipsCorruptDay(t *testing.T) {
	sessions := &sessionRepoStub{existing: []models.ClassSession{
		{ID: "session-1", TimetableID: "tt-1", Title: "Linear Algebra", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", Recurring: true},
		{ID: "session-bad", TimetableID: "tt-1", Title: "Ghost Lecture", DayOfWeek: -1, StartTime: "09:00", EndTime: "10:00", Recurring: true},
	}}
	timetables := ownedTimetables()
	calendar := NewCalendarService(sessions, timetables, collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())
	service := NewExportService(timetables, calendar, zap.NewNop())

	result, err := service.Export(context.Background(), "tt-1", "owner-1", "csv", time.Now())
	require.NoError(t, err)

	content := string(result.Content)
	assert.Contains(t, content, "Monday,09:00,10:00,Linear Algebra")
	assert.NotContains(t, content, "Ghost Lecture")
}

func TestExportServicePDF(t *testing.T) {
	service := newExportService(t)

	result, err := service.Export(context.Background(), "tt-1", "owner-1", "pdf", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "fall-semester.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceICS(t *testing.T) {
	service := newExportService(t)

	anchor := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)
	result, err := service.Export(context.Background(), "tt-1", "owner-1", "ics", anchor)
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", result.ContentType)
	assert.Equal(t, "fall-semester.ics", result.Filename)

	content := string(result.Content)
	assert.Contains(t, content, "BEGIN:VCALENDAR")
	assert.Contains(t, content, "SUMMARY:Linear Algebra")
	assert.Contains(t, content, "END:VCALENDAR")
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	service := newExportService(t)

	_, err := service.Export(context.Background(), "tt-1", "owner-1", "xlsx", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceNoAccess(t *testing.T) {
	service := newExportService(t)

	_, err := service.Export(context.Background(), "tt-1", "stranger-1", "csv", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
