package appointment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

const deliveryFailedReason = "invite delivery failed, needs attention"

type SendInvitesResult struct {
	Appointment *models.Appointment `json:"appointment"`
	Queued      int                 `json:"queued"`
}

type SendInvites struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
	clock    timezone.Clock
}

func NewSendInvites(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
	clock timezone.Clock,
) *SendInvites {
	return &SendInvites{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		clock:    clock,
	}
}

// Execute opens the invite window and queues one invitation per pending
// invitee. Delivery runs after the commit; its outcome is folded into the
// status by a second transaction.
func (uc *SendInvites) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
) (*SendInvitesResult, error) {

	now := uc.clock.Now()
	ctx = logging.AppendCtx(ctx, slog.String("appointment_id", appointmentID))

	var before int
	ap, err := uc.repo.Update(ctx, appointmentID, func(ap *models.Appointment) error {
		if err := ensureOwner(ap, actorID); err != nil {
			return err
		}
		before = len(ap.History)
		return domain.MarkInvitesSent(ap, now)
	})
	if err != nil {
		return nil, err
	}

	recordStatusChanges(ctx, uc.audit, uc.notifier, ap.ID, newEntries(ap, before))

	snapshot := *ap
	sentAt := *ap.InviteSentAt
	targets := domain.PendingEmails(ap.Invitees, nil)

	queued := uc.notifier.Go(ctx, "send_invites", func(ctx context.Context) {
		report := uc.notifier.DeliverInvites(ctx, snapshot, targets, false)
		uc.finishDelivery(ctx, snapshot.ID, actorID, sentAt, report)
	})
	if !queued {
		// Nothing will be delivered; surface it the same way as a failed batch.
		report := notify.Report{}
		for _, inv := range targets {
			report.Failed = append(report.Failed, inv.Email)
		}
		uc.finishDelivery(ctx, snapshot.ID, actorID, sentAt, report)
	}

	return &SendInvitesResult{Appointment: ap, Queued: len(targets)}, nil
}

// finishDelivery re-derives the status once a batch is done. A batch where
// every delivery failed puts the appointment back under review with no
// response window open.
func (uc *SendInvites) finishDelivery(
	ctx context.Context,
	appointmentID string,
	actorID string,
	sentAt time.Time,
	report notify.Report,
) {

	now := uc.clock.Now()

	var before int
	ap, err := uc.repo.Update(ctx, appointmentID, func(ap *models.Appointment) error {
		if ap.InviteSentAt == nil || !sameInstant(*ap.InviteSentAt, sentAt) {
			return errUnchanged
		}

		before = len(ap.History)
		current := domain.Status(ap.Status)
		if report.AllFailed() && (current == domain.StatusSendingInvites || current == domain.StatusPending) {
			domain.WithdrawInvites(ap, deliveryFailedReason, now)
			return nil
		}

		if domain.Refresh(ap, now) == nil {
			return errUnchanged
		}
		return nil
	})

	switch {
	case errors.Is(err, errUnchanged):
		ap = nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to persist status after delivery",
			logging.ErrKey, err,
			logging.PriorityCritical(),
		)
		return
	}

	uc.audit.Dispatch(ctx, audit.Event{
		AppointmentID: appointmentID,
		ActorID:       actorID,
		Action:        audit.ActionInvitesSent,
		Metadata:      report,
	})

	if ap != nil {
		recordStatusChanges(ctx, uc.audit, uc.notifier, ap.ID, newEntries(ap, before))
	}
}
