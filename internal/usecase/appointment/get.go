package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type GetAppointment struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewGetAppointment(repo domain.Repository, clock timezone.Clock) *GetAppointment {
	return &GetAppointment{repo: repo, clock: clock}
}

// Execute returns the appointment with its status derived at the current
// time. The stored record is not touched.
func (uc *GetAppointment) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
) (*models.Appointment, error) {

	ap, err := uc.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(ap, actorID); err != nil {
		return nil, err
	}

	view := derived(*ap, uc.clock.Now())
	return &view, nil
}
