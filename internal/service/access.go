package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campushub/timetable-api/internal/models"
)

type collaboratorFinder interface {
	FindByTimetableAndUser(ctx context.Context, timetableID, userID string) (*models.TimetableCollaborator, error)
}

// resolveRole maps a (user, timetable) pair to the user's effective role.
// Only an ACCEPTED collaboration grants access; a PENDING invitee does not
// yet see timetable contents and a REJECTED one never will.
func resolveRole(ctx context.Context, finder collaboratorFinder, timetable *models.Timetable, userID string) (models.TimetableRole, error) {
	if timetable.OwnerID == userID {
		return models.RoleOwner, nil
	}

	collaborator, err := finder.FindByTimetableAndUser(ctx, timetable.ID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RoleNone, nil
		}
		return models.RoleNone, err
	}

	if collaborator.Status != models.InvitationAccepted {
		return models.RoleNone, nil
	}
	return collaborator.Role, nil
}
