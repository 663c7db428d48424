package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

func weeklySessions() *sessionRepoStub {
	return &sessionRepoStub{existing: []models.ClassSession{
		{ID: "session-1", TimetableID: "tt-1", Title: "Linear Algebra", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", Recurring: true},
		{ID: "session-2", TimetableID: "tt-1", Title: "Algorithms", DayOfWeek: 3, StartTime: "13:00", EndTime: "14:30", Recurring: true},
	}}
}

func TestCalendarServiceListConflicts(t *testing.T) {
	sessions := &sessionRepoStub{existing: []models.ClassSession{
		{ID: "session-1", Title: "Linear Algebra", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{ID: "session-2", Title: "Algorithms", DayOfWeek: 1, StartTime: "09:30", EndTime: "11:00"},
		{ID: "session-3", Title: "Databases", DayOfWeek: 2, StartTime: "09:30", EndTime: "11:00"},
	}}
	service := NewCalendarService(sessions, ownedTimetables(), collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())

	conflicts, err := service.ListConflicts(context.Background(), "tt-1", "owner-1")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, 1, conflicts[0].DayOfWeek)
}

func TestCalendarServiceListConflictsNoAccess(t *testing.T) {
	service := NewCalendarService(weeklySessions(), ownedTimetables(), collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())

	_, err := service.ListConflicts(context.Background(), "tt-1", "stranger-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceOccurrencesExpandsWindow(t *testing.T) {
	service := NewCalendarService(weeklySessions(), ownedTimetables(), collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())

	anchor := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)
	window := OccurrenceWindow{Anchor: anchor, WeeksBefore: 1, WeeksAfter: 2}
	occurrences, err := service.Occurrences(context.Background(), "tt-1", "owner-1", window)
	require.NoError(t, err)

	// Two sessions over a four week window.
	require.Len(t, occurrences, 8)
	for _, occ := range occurrences {
		if occ.SessionID == "session-1" {
			assert.Equal(t, time.Monday, occ.Start.Weekday())
			assert.Equal(t, time.Hour, occ.End.Sub(occ.Start))
		}
	}
}

func TestCalendarServiceOccurrencesDeterministic(t *testing.T) {
	service := NewCalendarService(weeklySessions(), ownedTimetables(), collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())

	anchor := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)
	window := OccurrenceWindow{Anchor: anchor, WeeksBefore: 0, WeeksAfter: 3}
	first, err := service.Occurrences(context.Background(), "tt-1", "owner-1", window)
	require.NoError(t, err)
	second, err := service.Occurrences(context.Background(), "tt-1", "owner-1", window)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalendarServiceOccurrencesNegativeWindow(t *testing.T) {
	service := NewCalendarService(weeklySessions(), ownedTimetables(), collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())

	window := OccurrenceWindow{Anchor: time.Now(), WeeksBefore: -1, WeeksAfter: 2}
	_, err := service.Occurrences(context.Background(), "tt-1", "owner-1", window)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceDefaultWindow(t *testing.T) {
	service := NewCalendarService(weeklySessions(), ownedTimetables(), collaboratorFinderStub{}, nil, 2, 16, zap.NewNop())

	anchor := time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC)
	window := service.DefaultWindow(anchor)
	assert.Equal(t, anchor, window.Anchor)
	assert.Equal(t, 2, window.WeeksBefore)
	assert.Equal(t, 16, window.WeeksAfter)
}
