package models

import "time"

// CalendarOccurrence is one concrete dated instance of a recurring session,
// produced on demand for a display window. Never persisted.
type CalendarOccurrence struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	CourseID  string    `json:"course_id"`
	Location  *string   `json:"location,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}
