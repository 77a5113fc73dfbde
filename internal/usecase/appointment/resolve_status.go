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

type ResolveStatusResult struct {
	Appointment *models.Appointment `json:"appointment"`
	Changed     bool                `json:"changed"`
	Reason      string              `json:"reason,omitempty"`
}

// ResolveStatus is the single entry point that derives the status of an
// appointment and persists it.
type ResolveStatus struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
	clock    timezone.Clock
}

func NewResolveStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
	clock timezone.Clock,
) *ResolveStatus {
	return &ResolveStatus{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		clock:    clock,
	}
}

func (uc *ResolveStatus) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
) (*ResolveStatusResult, error) {

	now := uc.clock.Now()

	var (
		before     int
		unchanged  models.Appointment
		resolution *domain.Resolution
	)
	ap, err := uc.repo.Update(ctx, appointmentID, func(ap *models.Appointment) error {
		if err := ensureOwner(ap, actorID); err != nil {
			return err
		}

		before = len(ap.History)
		resolution = domain.Refresh(ap, now)
		if resolution == nil {
			unchanged = *ap
			return errUnchanged
		}
		return nil
	})

	switch {
	case errors.Is(err, errUnchanged):
		return &ResolveStatusResult{Appointment: &unchanged}, nil
	case err != nil:
		return nil, err
	}

	recordStatusChanges(ctx, uc.audit, uc.notifier, ap.ID, newEntries(ap, before))

	return &ResolveStatusResult{
		Appointment: ap,
		Changed:     true,
		Reason:      resolution.Reason,
	}, nil
}
