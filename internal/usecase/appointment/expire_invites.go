package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type ExpireInvitesResult struct {
	AppointmentID    string `json:"appointment_id"`
	InviteesResolved bool   `json:"invitees_resolved"`
	StatusChanged    bool   `json:"status_changed"`
	Status           string `json:"status"`
}

// ExpireInvites accepts unanswered invites once their window has elapsed
// and re-derives the status. Running it again is a no-op.
type ExpireInvites struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
	clock    timezone.Clock
}

func NewExpireInvites(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
	clock timezone.Clock,
) *ExpireInvites {
	return &ExpireInvites{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		clock:    clock,
	}
}

func (uc *ExpireInvites) Execute(
	ctx context.Context,
	appointmentID string,
) (*ExpireInvitesResult, error) {

	now := uc.clock.Now()

	var (
		before    int
		resolved  bool
		changed   bool
		unchanged string
	)
	ap, err := uc.repo.Update(ctx, appointmentID, func(ap *models.Appointment) error {
		before = len(ap.History)
		resolved = domain.ExpireInvites(ap, now)
		changed = domain.Refresh(ap, now) != nil

		if !resolved && !changed {
			unchanged = ap.Status
			return errUnchanged
		}
		return nil
	})

	switch {
	case errors.Is(err, errUnchanged):
		return &ExpireInvitesResult{AppointmentID: appointmentID, Status: unchanged}, nil
	case err != nil:
		return nil, err
	}

	if resolved {
		uc.audit.Dispatch(ctx, audit.Event{
			AppointmentID: ap.ID,
			ActorID:       domain.SystemActor,
			Action:        audit.ActionInvitesExpired,
			Metadata:      map[string]any{"stats": domain.Analyze(ap.Invitees)},
		})
	}
	recordStatusChanges(ctx, uc.audit, uc.notifier, ap.ID, newEntries(ap, before))

	return &ExpireInvitesResult{
		AppointmentID:    ap.ID,
		InviteesResolved: resolved,
		StatusChanged:    changed,
		Status:           ap.Status,
	}, nil
}
