package schedule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/timerange"
)

// MaterializeOccurrences expands a weekly-recurring session into dated
// occurrences around an anchor date. The window runs weeksBefore cycles back
// and weeksAfter cycles forward from the next occurrence of the session's
// weekday on-or-after the anchor, yielding weeksBefore+weeksAfter+1
// occurrences. The expansion is deterministic: the same arguments always
// produce the same sequence.
//
// Occurrences are a display projection only. Conflict detection operates on
// the weekly rule itself, since instances of the same rule would trivially
// overlap each other week after week.
func MaterializeOccurrences(session models.ClassSession, anchor time.Time, weeksBefore, weeksAfter int) ([]models.CalendarOccurrence, error) {
	if weeksBefore < 0 || weeksAfter < 0 {
		return nil, fmt.Errorf("occurrence window must be non-negative, got %d/%d", weeksBefore, weeksAfter)
	}
	start, err := timerange.Parse(session.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := timerange.Parse(session.EndTime)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(end-start) * time.Minute

	anchorDay := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	daysAhead := (session.DayOfWeek - int(anchorDay.Weekday()) + 7) % 7
	nextOccurrence := anchorDay.AddDate(0, 0, daysAhead)
	firstDate := nextOccurrence.AddDate(0, 0, -7*weeksBefore)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:  rrule.WEEKLY,
		Count: weeksBefore + weeksAfter + 1,
		Dtstart: time.Date(firstDate.Year(), firstDate.Month(), firstDate.Day(),
			start.Hour(), start.Minute(), 0, 0, anchor.Location()),
	})
	if err != nil {
		return nil, fmt.Errorf("build weekly rule: %w", err)
	}

	starts := rule.All()
	occurrences := make([]models.CalendarOccurrence, 0, len(starts))
	for _, s := range starts {
		occurrences = append(occurrences, models.CalendarOccurrence{
			SessionID: session.ID,
			Title:     session.Title,
			CourseID:  session.CourseID,
			Location:  session.Location,
			Start:     s,
			End:       s.Add(duration),
		})
	}
	return occurrences, nil
}
