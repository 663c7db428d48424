package models

import "time"

// TimetableRole is the effective access level a user holds on a timetable.
type TimetableRole string

const (
	RoleOwner       TimetableRole = "OWNER"
	RoleContributor TimetableRole = "CONTRIBUTOR"
	RoleViewer      TimetableRole = "VIEWER"
	RoleNone        TimetableRole = "NONE"
)

// CanManageSessions reports whether the role may create, update or delete sessions.
func (r TimetableRole) CanManageSessions() bool {
	return r == RoleOwner || r == RoleContributor
}

// CanView reports whether the role grants read access to timetable contents.
func (r TimetableRole) CanView() bool {
	return r == RoleOwner || r == RoleContributor || r == RoleViewer
}

// InvitationStatus tracks the lifecycle of a collaboration invite.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
)

// TimetableCollaborator is a per-user access grant on a timetable.
// The owner never appears as a collaborator row.
type TimetableCollaborator struct {
	ID          string           `db:"id" json:"id"`
	TimetableID string           `db:"timetable_id" json:"timetable_id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Role        TimetableRole    `db:"role" json:"role"`
	Status      InvitationStatus `db:"status" json:"status"`
	InvitedAt   time.Time        `db:"invited_at" json:"invited_at"`
	AcceptedAt  *time.Time       `db:"accepted_at" json:"accepted_at,omitempty"`
}
