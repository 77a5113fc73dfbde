package appointment

import (
	"context"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

type DeleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *DeleteAppointment {
	return &DeleteAppointment{
		repo:  repo,
		audit: audit,
	}
}

// Execute removes an appointment that is still open.
func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
) error {

	var title, status string
	err := uc.repo.Delete(ctx, appointmentID, func(ap *models.Appointment) error {
		if err := ensureOwner(ap, actorID); err != nil {
			return err
		}
		if err := ensureOpen(ap); err != nil {
			return err
		}
		title, status = ap.Title, ap.Status
		return nil
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(ctx, audit.Event{
		AppointmentID: appointmentID,
		ActorID:       actorID,
		Action:        audit.ActionAppointmentDeleted,
		Metadata: map[string]any{
			"title":  title,
			"status": status,
		},
	})

	return nil
}
