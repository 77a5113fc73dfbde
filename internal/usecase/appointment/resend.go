package appointment

import (
	"context"
	"log/slog"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type ResendInvitesResult struct {
	AppointmentID string   `json:"appointment_id"`
	Queued        []string `json:"queued"`
}

type ResendInvites struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
	clock    timezone.Clock
}

func NewResendInvites(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
	clock timezone.Clock,
) *ResendInvites {
	return &ResendInvites{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		clock:    clock,
	}
}

// Execute re-delivers invitations to invitees that have not answered,
// optionally only to the given emails. The invite window is not extended.
func (uc *ResendInvites) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
	emails []string,
) (*ResendInvitesResult, error) {

	ap, err := uc.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(ap, actorID); err != nil {
		return nil, err
	}
	if err := ensureOpen(ap); err != nil {
		return nil, err
	}
	if ap.InviteSentAt == nil {
		return nil, httperr.InvalidState("invites have not been sent")
	}

	now := uc.clock.Now()
	if domain.InviteExpired(ap.InviteSentAt, now) {
		return nil, httperr.ErrBusiness(httperr.KindInvitesExpired, "invite window has elapsed, reopen the appointment first")
	}

	targets := domain.PendingEmails(ap.Invitees, emails)
	if len(targets) == 0 {
		return nil, httperr.ErrBusiness(httperr.KindNoPendingInvitees, "no pending invitees to resend to")
	}

	ctx = logging.AppendCtx(ctx, slog.String("appointment_id", ap.ID))
	snapshot := *ap

	uc.notifier.Go(ctx, "resend_invites", func(ctx context.Context) {
		report := uc.notifier.DeliverInvites(ctx, snapshot, targets, true)
		uc.audit.Dispatch(ctx, audit.Event{
			AppointmentID: snapshot.ID,
			ActorID:       actorID,
			Action:        audit.ActionInvitesResent,
			Metadata:      report,
		})
	})

	queued := make([]string, len(targets))
	for i, inv := range targets {
		queued[i] = inv.Email
	}

	return &ResendInvitesResult{AppointmentID: ap.ID, Queued: queued}, nil
}
