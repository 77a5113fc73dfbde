package appointment

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
	"github.com/BruksfildServices01/appointment-invites/internal/validators"
)

type RespondInput struct {
	AppointmentID string
	Email         string
	Decision      string
	Justification *string
}

type RespondResult struct {
	AppointmentID string         `json:"appointment_id"`
	Invitee       models.Invitee `json:"invitee"`
	Status        string         `json:"status"`
	Stats         domain.Stats   `json:"stats"`
}

type RespondToInvite struct {
	repo     domain.Repository
	audit    *audit.Dispatcher
	notifier *notify.Notifier
	clock    timezone.Clock
	policy   Policy
}

func NewRespondToInvite(
	repo domain.Repository,
	audit *audit.Dispatcher,
	notifier *notify.Notifier,
	clock timezone.Clock,
	policy Policy,
) *RespondToInvite {
	return &RespondToInvite{
		repo:     repo,
		audit:    audit,
		notifier: notifier,
		clock:    clock,
		policy:   policy,
	}
}

// Execute records one invitee's answer and re-derives the status in the same
// transaction. Notices to the invitee and the creator go out after commit.
func (uc *RespondToInvite) Execute(
	ctx context.Context,
	in RespondInput,
) (*RespondResult, error) {

	decision := strings.ToLower(strings.TrimSpace(in.Decision))
	justification := cleanJustification(decision, in.Justification)

	res := validators.ValidateResponse(decision, justification, uc.policy.RequireDeclineJustification)
	if err := res.Err(); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	ctx = logging.AppendCtx(ctx, slog.String("appointment_id", in.AppointmentID))

	var (
		before    int
		responded models.Invitee
	)
	ap, err := uc.repo.Update(ctx, in.AppointmentID, func(ap *models.Appointment) error {
		if ap.InviteSentAt == nil {
			return httperr.InvalidState("invites have not been sent")
		}
		if domain.InviteExpired(ap.InviteSentAt, now) {
			return httperr.ErrBusiness(httperr.KindExpiredInvite, "invite has expired")
		}
		if err := ensureOpen(ap); err != nil {
			return err
		}

		list, err := domain.Respond(ap.Invitees, in.Email, decision, justification, now)
		if err != nil {
			return err
		}

		before = len(ap.History)
		ap.Invitees = list
		responded, _, _ = domain.Find(list, in.Email)
		domain.Refresh(ap, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	snapshot := *ap
	uc.notifier.Go(ctx, "response_notices", func(ctx context.Context) {
		uc.notifier.SendResponseNotices(ctx, snapshot, responded)
	})

	uc.audit.Dispatch(ctx, audit.Event{
		AppointmentID: ap.ID,
		ActorID:       responded.Email,
		Action:        audit.ActionInviteResponded,
		Metadata: map[string]any{
			"email":    responded.Email,
			"decision": responded.Status,
		},
	})
	recordStatusChanges(ctx, uc.audit, uc.notifier, ap.ID, newEntries(ap, before))

	return &RespondResult{
		AppointmentID: ap.ID,
		Invitee:       responded,
		Status:        ap.Status,
		Stats:         domain.Analyze(ap.Invitees),
	}, nil
}

// cleanJustification keeps a trimmed justification for declines only.
func cleanJustification(decision string, justification *string) *string {
	if decision != domain.InviteeDeclined || justification == nil {
		return nil
	}
	j := strings.TrimSpace(*justification)
	if j == "" {
		return nil
	}
	return &j
}
