package models

import "time"

// Timetable is a named collection of recurring class sessions owned by one user.
type Timetable struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableDetail is the full read-path projection of a timetable: its
// sessions, collaborator roster, the caller's resolved role and any conflict
// warnings. Conflicts that predate a rule change stay visible here instead of
// being hidden or auto-corrected.
type TimetableDetail struct {
	Timetable
	Role          TimetableRole           `json:"role"`
	Sessions      []ClassSession          `json:"sessions"`
	Collaborators []TimetableCollaborator `json:"collaborators"`
	Conflicts     []ConflictPair          `json:"conflicts,omitempty"`
}

// TimetableSummary groups a user's timetables by ownership.
type TimetableSummary struct {
	Owned  []Timetable `json:"owned"`
	Shared []Timetable `json:"shared"`
}
