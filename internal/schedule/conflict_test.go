package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/timetable-api/internal/models"
)

func session(id, title string, day int, start, end string) models.ClassSession {
	return models.ClassSession{
		ID:          id,
		TimetableID: "tt-1",
		Title:       title,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
	}
}

func TestFindConflictsReportsSameDayOverlaps(t *testing.T) {
	sessions := []models.ClassSession{
		session("s1", "DSA Lecture", 1, "09:00", "11:00"),
		session("s2", "Tutorial", 1, "10:00", "12:00"),
		session("s3", "Lab", 2, "10:00", "12:00"),
	}

	pairs := FindConflicts(sessions)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].DayOfWeek)
	assert.Equal(t, "s1", pairs[0].First.SessionID)
	assert.Equal(t, "s2", pairs[0].Second.SessionID)
}

func TestFindConflictsNeverCrossesDays(t *testing.T) {
	sessions := []models.ClassSession{
		session("s1", "A", 1, "09:00", "11:00"),
		session("s2", "B", 2, "09:00", "11:00"),
		session("s3", "C", 3, "09:00", "11:00"),
	}
	assert.Empty(t, FindConflicts(sessions))
}

func TestFindConflictsAdjacencyIsNotAConflict(t *testing.T) {
	sessions := []models.ClassSession{
		session("s1", "A", 4, "09:00", "10:00"),
		session("s2", "B", 4, "10:00", "11:00"),
	}
	assert.Empty(t, FindConflicts(sessions))
}

func TestFindConflictsMultiplePairsOnOneDay(t *testing.T) {
	sessions := []models.ClassSession{
		session("s1", "A", 1, "09:00", "12:00"),
		session("s2", "B", 1, "10:00", "11:00"),
		session("s3", "C", 1, "11:30", "13:00"),
	}
	pairs := FindConflicts(sessions)
	assert.Len(t, pairs, 2)
}

func TestFirstConflictExcludesOwnPriorState(t *testing.T) {
	existing := []models.ClassSession{
		session("s1", "DSA Lecture", 1, "09:00", "11:00"),
		session("s2", "Tutorial", 1, "13:00", "15:00"),
	}

	// s1 resized within its own original window: no clash with itself.
	candidate := session("s1", "DSA Lecture", 1, "09:00", "10:30")
	assert.Nil(t, FirstConflict(candidate, existing, "s1"))

	// Moving s1 onto s2's slot is rejected.
	moved := session("s1", "DSA Lecture", 1, "14:00", "16:00")
	conflict := FirstConflict(moved, existing, "s1")
	require.NotNil(t, conflict)
	assert.Equal(t, "s2", conflict.SessionID)
	assert.Equal(t, "Tutorial", conflict.Title)
}

func TestFirstConflictFiltersByDay(t *testing.T) {
	existing := []models.ClassSession{
		session("s1", "A", 1, "09:00", "11:00"),
	}
	candidate := session("s9", "B", 2, "09:00", "11:00")
	assert.Nil(t, FirstConflict(candidate, existing, ""))
}
