package appointment

import (
	"context"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type UpdateAppointment struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
	clock    timezone.Clock
	policy   Policy
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
	clock timezone.Clock,
	policy Policy,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		clock:    clock,
		policy:   policy,
	}
}

// Execute replaces the editable fields. Invitees are merged by email so that
// recorded responses survive the edit, and the status is derived again.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
	in AppointmentInput,
) (*models.Appointment, error) {

	now := uc.clock.Now()

	parsed, err := parseInput(in, now, uc.policy)
	if err != nil {
		return nil, err
	}

	var before int
	ap, err := uc.repo.Update(ctx, appointmentID, func(ap *models.Appointment) error {
		if err := ensureOwner(ap, actorID); err != nil {
			return err
		}
		if err := ensureOpen(ap); err != nil {
			return err
		}

		before = len(ap.History)
		applyFields(ap, in, parsed)
		ap.Invitees = domain.MergeOnUpdate(ap.Invitees, parsed.invitees, now)
		domain.Refresh(ap, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(ctx, audit.Event{
		AppointmentID: ap.ID,
		ActorID:       actorID,
		Action:        audit.ActionAppointmentUpdated,
		Metadata:      map[string]any{"invitees": len(ap.Invitees)},
	})
	recordStatusChanges(ctx, uc.audit, uc.notifier, ap.ID, newEntries(ap, before))

	return ap, nil
}
