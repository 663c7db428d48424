// Package schedule holds the pure scheduling core: pairwise conflict
// detection over a timetable's weekly rules and expansion of those rules into
// dated occurrences. Nothing here touches persistence.
package schedule

import (
	"sort"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/timerange"
)

// FindConflicts computes every unordered pair of distinct sessions that share
// a day-of-week and overlap in time. Sessions with unparseable times are
// skipped; persisted rows are validated on write so this only guards legacy
// data. Intended for read-path warning banners, O(n^2) per day.
func FindConflicts(sessions []models.ClassSession) []models.ConflictPair {
	byDay := make(map[int][]models.ClassSession)
	for _, s := range sessions {
		byDay[s.DayOfWeek] = append(byDay[s.DayOfWeek], s)
	}

	days := make([]int, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Ints(days)

	var pairs []models.ConflictPair
	for _, day := range days {
		daySessions := byDay[day]
		for i := 0; i < len(daySessions); i++ {
			for j := i + 1; j < len(daySessions); j++ {
				if sessionsOverlap(daySessions[i], daySessions[j]) {
					pairs = append(pairs, models.ConflictPair{
						DayOfWeek: day,
						First:     toSessionConflict(daySessions[i]),
						Second:    toSessionConflict(daySessions[j]),
					})
				}
			}
		}
	}
	return pairs
}

// FirstConflict tests a single candidate against existing sessions and
// returns the first clash, or nil. Only sessions on the candidate's day are
// compared, and excludeID removes the candidate's own prior state when
// validating a move or resize.
func FirstConflict(candidate models.ClassSession, existing []models.ClassSession, excludeID string) *models.SessionConflict {
	for _, s := range existing {
		if s.ID == excludeID {
			continue
		}
		if s.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if sessionsOverlap(candidate, s) {
			conflict := toSessionConflict(s)
			return &conflict
		}
	}
	return nil
}

func sessionsOverlap(a, b models.ClassSession) bool {
	startA, err := timerange.Parse(a.StartTime)
	if err != nil {
		return false
	}
	endA, err := timerange.Parse(a.EndTime)
	if err != nil {
		return false
	}
	startB, err := timerange.Parse(b.StartTime)
	if err != nil {
		return false
	}
	endB, err := timerange.Parse(b.EndTime)
	if err != nil {
		return false
	}
	return timerange.Overlaps(startA, endA, startB, endB)
}

func toSessionConflict(s models.ClassSession) models.SessionConflict {
	return models.SessionConflict{
		SessionID: s.ID,
		Title:     s.Title,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}
