package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/dto"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type ListAppointments struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewListAppointments(repo domain.Repository, clock timezone.Clock) *ListAppointments {
	return &ListAppointments{repo: repo, clock: clock}
}

// Execute lists the actor's appointments, latest start first. status filters
// on the stored status when set.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	actorID string,
	status string,
) ([]dto.AppointmentListDTO, error) {

	if status != "" {
		if _, ok := domain.ParseStatus(status); !ok {
			return nil, httperr.Validation("status is not a known appointment status")
		}
	}

	apps, err := uc.repo.ListByCreator(ctx, actorID, status)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	out := make([]dto.AppointmentListDTO, 0, len(apps))
	for _, ap := range apps {
		view := derived(ap, now)
		stats := domain.Analyze(view.Invitees)

		out = append(out, dto.AppointmentListDTO{
			ID:            view.ID,
			Title:         view.Title,
			Type:          view.Type,
			StartTime:     view.StartTime,
			EndTime:       view.EndTime,
			Status:        view.Status,
			InviteSentAt:  view.InviteSentAt,
			Invitees:      stats.Total,
			Pending:       stats.Pending,
			Accepted:      stats.Accepted,
			Declined:      stats.Declined,
			PriorityScore: domain.PriorityScore(domain.Status(view.Status), view.StartTime, stats.Total, now),
		})
	}

	return out, nil
}
