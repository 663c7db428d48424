package models

import (
	"fmt"
	"time"
)

// ClassSession is one weekly-recurring time block tied to a course.
// DayOfWeek is 0-6 with 0 = Sunday; times are "HH:MM" wall clock, same-day only.
type ClassSession struct {
	ID          string    `db:"id" json:"id"`
	TimetableID string    `db:"timetable_id" json:"timetable_id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Recurring   bool      `db:"recurring" json:"recurring"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ConflictPair identifies two sessions in the same timetable that overlap on
// the same day.
type ConflictPair struct {
	DayOfWeek int             `json:"day_of_week"`
	First     SessionConflict `json:"first"`
	Second    SessionConflict `json:"second"`
}

// SessionConflict carries the identity and times of one conflicting session.
type SessionConflict struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ScheduleConflictError is returned when a session collides with an existing
// one on its day.
type ScheduleConflictError struct {
	Conflict SessionConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("session overlaps %q (%s-%s)", e.Conflict.Title, e.Conflict.StartTime, e.Conflict.EndTime)
}
