package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type CreateAppointmentInput struct {
	AppointmentInput

	ActorID         string
	ActorEmail      string
	SubmitForReview bool
}

type CreateAppointment struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	clock  timezone.Clock
	policy Policy
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	policy Policy,
) *CreateAppointment {
	return &CreateAppointment{
		repo:   repo,
		audit:  audit,
		clock:  clock,
		policy: policy,
	}
}

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	now := uc.clock.Now()

	parsed, err := parseInput(in.AppointmentInput, now, uc.policy)
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		ID:           uuid.NewString(),
		CreatorID:    in.ActorID,
		CreatorEmail: domain.NormalizeEmail(in.ActorEmail),
		Invitees:     parsed.invitees,
		History:      []models.StatusEntry{},
	}
	applyFields(ap, in.AppointmentInput, parsed)

	for i := range ap.Invitees {
		ap.Invitees[i].InvitedAt = now
	}

	domain.SetStatus(ap, domain.InitialStatus(in.SubmitForReview), "appointment created", in.ActorID, now)

	if err := uc.repo.Create(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(ctx, audit.Event{
		AppointmentID: ap.ID,
		ActorID:       in.ActorID,
		Action:        audit.ActionAppointmentCreated,
		Metadata: map[string]any{
			"status":   ap.Status,
			"invitees": len(ap.Invitees),
		},
	})

	return ap, nil
}
