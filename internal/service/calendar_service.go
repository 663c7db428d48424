package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/schedule"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
)

// OccurrenceWindow bounds a materialization request around its anchor date.
type OccurrenceWindow struct {
	Anchor      time.Time
	WeeksBefore int
	WeeksAfter  int
}

// CalendarService serves the read-side projections of a timetable: conflict
// warnings over the weekly rules and dated occurrences for display windows.
type CalendarService struct {
	sessions      timetableSessionLister
	timetables    sessionTimetableFinder
	collaborators collaboratorFinder
	cache         *CacheService
	defaultBefore int
	defaultAfter  int
	logger        *zap.Logger
}

// NewCalendarService instantiates CalendarService.
func NewCalendarService(sessions timetableSessionLister, timetables sessionTimetableFinder, collaborators collaboratorFinder, cache *CacheService, defaultBefore, defaultAfter int, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultBefore < 0 {
		defaultBefore = 2
	}
	if defaultAfter < 0 {
		defaultAfter = 16
	}
	return &CalendarService{
		sessions:      sessions,
		timetables:    timetables,
		collaborators: collaborators,
		cache:         cache,
		defaultBefore: defaultBefore,
		defaultAfter:  defaultAfter,
		logger:        logger,
	}
}

// DefaultWindow returns the configured projection window around an anchor.
func (s *CalendarService) DefaultWindow(anchor time.Time) OccurrenceWindow {
	return OccurrenceWindow{Anchor: anchor, WeeksBefore: s.defaultBefore, WeeksAfter: s.defaultAfter}
}

// ListConflicts computes all pairwise conflicts in a timetable. These are
// warnings for display, never blocking errors: overlapping data that predates
// a rule change stays visible.
func (s *CalendarService) ListConflicts(ctx context.Context, timetableID, userID string) ([]models.ConflictPair, error) {
	sessions, err := s.readSessions(ctx, timetableID, userID)
	if err != nil {
		return nil, err
	}
	return schedule.FindConflicts(sessions), nil
}

// Occurrences expands every session of a timetable into dated instances for
// the given window. Same window, same result: the expansion is deterministic
// and cache-friendly.
func (s *CalendarService) Occurrences(ctx context.Context, timetableID, userID string, window OccurrenceWindow) ([]models.CalendarOccurrence, error) {
	if window.WeeksBefore < 0 || window.WeeksAfter < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "occurrence window must be non-negative")
	}

	cacheKey := fmt.Sprintf("timetable:%s:occurrences:%s:%d:%d",
		timetableID, window.Anchor.Format("2006-01-02"), window.WeeksBefore, window.WeeksAfter)
	var cached []models.CalendarOccurrence
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	sessions, err := s.readSessions(ctx, timetableID, userID)
	if err != nil {
		return nil, err
	}

	occurrences := make([]models.CalendarOccurrence, 0, len(sessions)*(window.WeeksBefore+window.WeeksAfter+1))
	for _, session := range sessions {
		expanded, err := schedule.MaterializeOccurrences(session, window.Anchor, window.WeeksBefore, window.WeeksAfter)
		if err != nil {
			s.logger.Warn("skipping unexpandable session",
				zap.String("session_id", session.ID), zap.Error(err))
			continue
		}
		occurrences = append(occurrences, expanded...)
	}

	_ = s.cache.Set(ctx, cacheKey, occurrences, 0)
	return occurrences, nil
}

// readSessions enforces read access before returning the timetable's sessions.
func (s *CalendarService) readSessions(ctx context.Context, timetableID, userID string) ([]models.ClassSession, error) {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	role, err := resolveRole(ctx, s.collaborators, timetable, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve role")
	}
	if !role.CanView() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this timetable")
	}

	sessions, err := s.sessions.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}
