package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/timetable-api/internal/models"
)

func mondaySession() models.ClassSession {
	return session("s1", "DSA Lecture", 1, "09:00", "11:00")
}

func TestMaterializeOccurrencesCountAndTimes(t *testing.T) {
	// Wednesday 2024-09-04; next Monday is 2024-09-09.
	anchor := time.Date(2024, 9, 4, 15, 30, 0, 0, time.UTC)

	occurrences, err := MaterializeOccurrences(mondaySession(), anchor, 2, 16)
	require.NoError(t, err)
	require.Len(t, occurrences, 19)

	first := occurrences[0]
	assert.Equal(t, time.Date(2024, 8, 26, 9, 0, 0, 0, time.UTC), first.Start)
	assert.Equal(t, time.Date(2024, 8, 26, 11, 0, 0, 0, time.UTC), first.End)

	for i, occ := range occurrences {
		assert.Equal(t, time.Monday, occ.Start.Weekday(), "occurrence %d", i)
		assert.Equal(t, 2*time.Hour, occ.End.Sub(occ.Start))
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, occ.Start.Sub(occurrences[i-1].Start))
		}
	}
}

func TestMaterializeOccurrencesAnchorOnSameWeekday(t *testing.T) {
	// Anchor is itself a Monday: the zero-offset occurrence lands on it.
	anchor := time.Date(2024, 9, 9, 0, 0, 0, 0, time.UTC)

	occurrences, err := MaterializeOccurrences(mondaySession(), anchor, 0, 0)
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, time.Date(2024, 9, 9, 9, 0, 0, 0, time.UTC), occurrences[0].Start)
}

func TestMaterializeOccurrencesDeterministic(t *testing.T) {
	anchor := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)

	a, err := MaterializeOccurrences(mondaySession(), anchor, 2, 16)
	require.NoError(t, err)
	b, err := MaterializeOccurrences(mondaySession(), anchor, 2, 16)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMaterializeOccurrencesRejectsNegativeWindow(t *testing.T) {
	anchor := time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC)
	_, err := MaterializeOccurrences(mondaySession(), anchor, -1, 4)
	assert.Error(t, err)
}

func TestMaterializeOccurrencesRejectsBadTimes(t *testing.T) {
	bad := mondaySession()
	bad.StartTime = "nine"
	_, err := MaterializeOccurrences(bad, time.Now(), 2, 16)
	assert.Error(t, err)
}
