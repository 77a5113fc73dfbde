package appointment

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type AvailableTransitions struct {
	AppointmentID string   `json:"appointment_id"`
	Current       string   `json:"current"`
	Available     []string `json:"available"`
}

// ======================================================
// TRANSITION
// ======================================================

type TransitionStatus struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
	clock    timezone.Clock
}

func NewTransitionStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
	clock timezone.Clock,
) *TransitionStatus {
	return &TransitionStatus{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		clock:    clock,
	}
}

// Execute applies an operator status change. The status is derived first so
// the allow-list is checked against the current state, not a stale cache.
func (uc *TransitionStatus) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
	target string,
	reason string,
) (*models.Appointment, error) {

	to, ok := domain.ParseStatus(strings.ToLower(strings.TrimSpace(target)))
	if !ok {
		return nil, httperr.Validation("status is not a known appointment status")
	}
	reason = strings.TrimSpace(reason)

	now := uc.clock.Now()

	var before int
	ap, err := uc.repo.Update(ctx, appointmentID, func(ap *models.Appointment) error {
		if err := ensureOwner(ap, actorID); err != nil {
			return err
		}

		before = len(ap.History)
		domain.Refresh(ap, now)
		return domain.Transition(ap, to, reason, actorID, now)
	})
	if err != nil {
		return nil, err
	}

	recordStatusChanges(ctx, uc.audit, uc.notifier, ap.ID, newEntries(ap, before))
	return ap, nil
}

// ======================================================
// LIST
// ======================================================

type ListTransitions struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewListTransitions(repo domain.Repository, clock timezone.Clock) *ListTransitions {
	return &ListTransitions{repo: repo, clock: clock}
}

func (uc *ListTransitions) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
) (*AvailableTransitions, error) {

	ap, err := uc.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(ap, actorID); err != nil {
		return nil, err
	}

	view := derived(*ap, uc.clock.Now())
	current := domain.Status(view.Status)

	available := []string{}
	for _, s := range domain.AvailableTransitions(current) {
		available = append(available, string(s))
	}

	return &AvailableTransitions{
		AppointmentID: view.ID,
		Current:       string(current),
		Available:     available,
	}, nil
}
