// Package notify runs the best-effort side effects of appointment changes:
// invitation emails, response notices and status events.
package notify

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/BruksfildServices01/appointment-invites/internal/concurrent"
	"github.com/BruksfildServices01/appointment-invites/internal/dispatch"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/events"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/mail"
	"github.com/BruksfildServices01/appointment-invites/internal/invitetoken"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

type Delivery struct {
	Email      string `json:"email"`
	DeliveryID string `json:"delivery_id"`
}

// Report is the outcome of one invitation batch.
type Report struct {
	Delivered []Delivery `json:"delivered"`
	Failed    []string   `json:"failed"`
}

// AllFailed reports whether the batch had targets and none was delivered.
func (r Report) AllFailed() bool {
	return len(r.Delivered) == 0 && len(r.Failed) > 0
}

type Notifier struct {
	sender    mail.Sender
	renderer  *mail.Renderer
	tokens    *invitetoken.Issuer
	publisher events.Publisher
	jobs      *dispatch.Dispatcher
	pool      *concurrent.WorkerPool
	baseURL   string
}

func New(
	sender mail.Sender,
	renderer *mail.Renderer,
	tokens *invitetoken.Issuer,
	publisher events.Publisher,
	jobs *dispatch.Dispatcher,
	pool *concurrent.WorkerPool,
	baseURL string,
) *Notifier {
	return &Notifier{
		sender:    sender,
		renderer:  renderer,
		tokens:    tokens,
		publisher: publisher,
		jobs:      jobs,
		pool:      pool,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Go runs fn on the background dispatcher. The caller never waits for it.
func (n *Notifier) Go(ctx context.Context, name string, fn func(ctx context.Context)) bool {
	return n.jobs.Submit(ctx, name, fn)
}

// DeliverInvites sends one invitation per target. A failed delivery is
// logged and counted and never stops the rest of the batch.
func (n *Notifier) DeliverInvites(
	ctx context.Context,
	ap models.Appointment,
	targets []models.Invitee,
	reminder bool,
) Report {

	ctx = logging.AppendCtx(ctx, slog.String("appointment_id", ap.ID))

	jobs := make([]func(ctx context.Context) error, len(targets))
	ids := make([]string, len(targets))

	for i, inv := range targets {
		i, inv := i, inv
		jobs[i] = func(ctx context.Context) error {
			id, err := n.sendInvitation(ctx, ap, inv, reminder)
			ids[i] = id
			return err
		}
	}

	errs := n.pool.RunAll(ctx, jobs...)

	var report Report
	for i, err := range errs {
		email := targets[i].Email
		if err != nil {
			slog.ErrorContext(ctx, "invitation delivery failed", "recipient_email", email, logging.ErrKey, err)
			report.Failed = append(report.Failed, email)
			continue
		}
		report.Delivered = append(report.Delivered, Delivery{Email: email, DeliveryID: ids[i]})
	}

	slog.InfoContext(ctx, "invitation batch finished",
		"delivered", len(report.Delivered),
		"failed", len(report.Failed),
		"reminder", reminder,
	)
	return report
}

func (n *Notifier) sendInvitation(ctx context.Context, ap models.Appointment, inv models.Invitee, reminder bool) (string, error) {
	sentAt := *ap.InviteSentAt

	token, err := n.tokens.Sign(ap.ID, inv.Email, sentAt)
	if err != nil {
		return "", err
	}

	msg, err := n.renderer.Invitation(inv.Email, mail.InvitationData{
		InviteeName:  inv.Name,
		InviteeEmail: inv.Email,
		Title:        ap.Title,
		Description:  ap.Description,
		Location:     ap.Location,
		Type:         ap.Type,
		StartTime:    ap.StartTime,
		EndTime:      ap.EndTime,
		RespondURL:   n.RespondURL(token),
		ExpiresAt:    sentAt.Add(domain.InviteExpiry),
		Reminder:     reminder,
	})
	if err != nil {
		return "", err
	}

	return n.sender.Send(ctx, msg)
}

func (n *Notifier) RespondURL(token string) string {
	return n.baseURL + "/invites/respond?token=" + url.QueryEscape(token)
}

// SendResponseNotices confirms a response to the invitee and summarizes it
// for the creator. Failures are only logged.
func (n *Notifier) SendResponseNotices(ctx context.Context, ap models.Appointment, inv models.Invitee) {
	ctx = logging.AppendCtx(ctx, slog.String("appointment_id", ap.ID))

	justification := ""
	if inv.Justification != nil {
		justification = *inv.Justification
	}

	confirmation, err := n.renderer.ResponseConfirmation(inv.Email, mail.ResponseConfirmationData{
		InviteeName:   inv.Name,
		Title:         ap.Title,
		StartTime:     ap.StartTime,
		Decision:      inv.Status,
		Justification: justification,
	})
	if err == nil {
		_, err = n.sender.Send(ctx, confirmation)
	}
	if err != nil {
		slog.ErrorContext(ctx, "response confirmation failed", "recipient_email", inv.Email, logging.ErrKey, err)
	}

	if ap.CreatorEmail == "" {
		return
	}

	stats := domain.Analyze(ap.Invitees)
	summary, err := n.renderer.CreatorSummary(ap.CreatorEmail, mail.CreatorSummaryData{
		Title:         ap.Title,
		InviteeEmail:  inv.Email,
		Decision:      inv.Status,
		Justification: justification,
		Status:        ap.Status,
		Accepted:      stats.Accepted,
		Declined:      stats.Declined,
		Pending:       stats.Pending,
		Total:         stats.Total,
	})
	if err == nil {
		_, err = n.sender.Send(ctx, summary)
	}
	if err != nil {
		slog.ErrorContext(ctx, "creator summary failed", "recipient_email", ap.CreatorEmail, logging.ErrKey, err)
	}
}

// PublishStatusChanges emits one event per history entry.
func (n *Notifier) PublishStatusChanges(ctx context.Context, appointmentID string, entries []models.StatusEntry) {
	for _, e := range entries {
		err := n.publisher.PublishStatusChanged(ctx, events.StatusChanged{
			AppointmentID: appointmentID,
			From:          e.From,
			To:            e.To,
			Reason:        e.Reason,
			Actor:         e.Actor,
			At:            e.At,
		})
		if err != nil {
			slog.WarnContext(ctx, "status event not published", "appointment_id", appointmentID, "to", e.To, logging.ErrKey, err)
		}
	}
}
