package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
)

type InviteStatus struct {
	AppointmentID string           `json:"appointment_id"`
	Status        string           `json:"status"`
	Stats         domain.Stats     `json:"stats"`
	InviteSentAt  *time.Time       `json:"invite_sent_at"`
	ExpiresAt     *time.Time       `json:"expires_at"`
	Expired       bool             `json:"expired"`
	PriorityScore int              `json:"priority_score"`
	Invitees      []models.Invitee `json:"invitees"`
}

// InviteeView is what an invitee sees through their response link.
type InviteeView struct {
	AppointmentID string         `json:"appointment_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Location      string         `json:"location"`
	Type          string         `json:"type"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Status        string         `json:"status"`
	Invitee       models.Invitee `json:"invitee"`
	ExpiresAt     *time.Time     `json:"expires_at"`
	Expired       bool           `json:"expired"`
}

type GetInviteStatus struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewGetInviteStatus(repo domain.Repository, clock timezone.Clock) *GetInviteStatus {
	return &GetInviteStatus{repo: repo, clock: clock}
}

// Execute reports the aggregate state of the invites. It never writes.
func (uc *GetInviteStatus) Execute(
	ctx context.Context,
	appointmentID string,
	actorID string,
) (*InviteStatus, error) {

	ap, err := uc.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(ap, actorID); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	view := derived(*ap, now)
	stats := domain.Analyze(view.Invitees)

	return &InviteStatus{
		AppointmentID: view.ID,
		Status:        view.Status,
		Stats:         stats,
		InviteSentAt:  view.InviteSentAt,
		ExpiresAt:     domain.ExpiresAt(view.InviteSentAt),
		Expired:       domain.InviteExpired(view.InviteSentAt, now),
		PriorityScore: domain.PriorityScore(domain.Status(view.Status), view.StartTime, stats.Total, now),
		Invitees:      view.Invitees,
	}, nil
}

// ForInvitee returns the appointment as seen by one invitee.
func (uc *GetInviteStatus) ForInvitee(
	ctx context.Context,
	appointmentID string,
	email string,
) (*InviteeView, error) {

	ap, err := uc.repo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	inv, _, ok := domain.Find(ap.Invitees, email)
	if !ok {
		return nil, httperr.ErrBusiness(httperr.KindInviteeNotFound, "invitee not found")
	}

	now := uc.clock.Now()
	view := derived(*ap, now)

	return &InviteeView{
		AppointmentID: view.ID,
		Title:         view.Title,
		Description:   view.Description,
		Location:      view.Location,
		Type:          view.Type,
		StartTime:     view.StartTime,
		EndTime:       view.EndTime,
		Status:        view.Status,
		Invitee:       inv,
		ExpiresAt:     domain.ExpiresAt(view.InviteSentAt),
		Expired:       domain.InviteExpired(view.InviteSentAt, now),
	}, nil
}
