package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/validators"
)

// errUnchanged rolls back a transaction that found nothing to write.
var errUnchanged = errors.New("appointment unchanged")

// Policy carries the configurable validation rules.
type Policy struct {
	RequireDeclineJustification bool
	VerifyEmailDomains          bool
}

// ======================================================
// INPUT
// ======================================================

type InviteeInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AppointmentInput struct {
	Title       string
	Description string
	Location    string
	Type        string
	Notes       string
	StartTime   string
	EndTime     string
	ProcessID   *string
	Invitees    []InviteeInput
}

type parsedInput struct {
	start    time.Time
	end      time.Time
	invitees []models.Invitee
}

// parseInput runs the validation guard over in and converts it.
func parseInput(in AppointmentInput, now time.Time, policy Policy) (parsedInput, error) {
	fields := validators.AppointmentFields{
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Type:        in.Type,
		Notes:       in.Notes,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}

	invitees := make([]validators.InviteeFields, len(in.Invitees))
	for i, inv := range in.Invitees {
		invitees[i] = validators.InviteeFields{Email: inv.Email, Name: inv.Name}
	}

	res := validators.Merge(
		validators.ValidateAppointment(fields, now),
		validators.ValidateInvitees(invitees),
	)
	if err := res.Err(); err != nil {
		return parsedInput{}, err
	}

	if policy.VerifyEmailDomains {
		var details []string
		for i, inv := range invitees {
			if !validators.IsEmailDomainValid(inv.Email) {
				details = append(details, fmt.Sprintf("invitees[%d].email domain does not accept mail", i))
			}
		}
		if len(details) > 0 {
			return parsedInput{}, httperr.Validation(details...)
		}
	}

	start, _ := validators.ParseTime(in.StartTime, now.Location())
	end, _ := validators.ParseTime(in.EndTime, now.Location())

	list := make([]models.Invitee, len(in.Invitees))
	for i, inv := range in.Invitees {
		list[i] = models.Invitee{Email: inv.Email, Name: inv.Name}
	}

	return parsedInput{start: start, end: end, invitees: domain.Normalize(list)}, nil
}

func applyFields(ap *models.Appointment, in AppointmentInput, p parsedInput) {
	ap.Title = strings.TrimSpace(in.Title)
	ap.Description = strings.TrimSpace(in.Description)
	ap.Location = strings.TrimSpace(in.Location)
	ap.Notes = strings.TrimSpace(in.Notes)
	ap.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if ap.Type == "" {
		ap.Type = "meeting"
	}
	ap.StartTime = p.start
	ap.EndTime = p.end
	ap.ProcessID = in.ProcessID
}

// ======================================================
// HELPERS
// ======================================================

func ensureOwner(ap *models.Appointment, actorID string) error {
	if ap.CreatorID != actorID {
		return httperr.Forbidden("only the creator can manage this appointment")
	}
	return nil
}

func ensureOpen(ap *models.Appointment) error {
	if domain.Status(ap.Status).IsTerminal() {
		return httperr.InvalidState("appointment is " + ap.Status)
	}
	return nil
}

// newEntries returns the history appended after the first before entries.
func newEntries(ap *models.Appointment, before int) []models.StatusEntry {
	if ap == nil || before >= len(ap.History) {
		return nil
	}
	out := make([]models.StatusEntry, len(ap.History)-before)
	copy(out, ap.History[before:])
	return out
}

// derived returns a copy of ap with its status re-derived at now. Nothing
// is persisted.
func derived(ap models.Appointment, now time.Time) models.Appointment {
	ap.History = append([]models.StatusEntry(nil), ap.History...)
	domain.Refresh(&ap, now)
	return ap
}

// recordStatusChanges audits and publishes committed status changes.
func recordStatusChanges(
	ctx context.Context,
	auditD *audit.Dispatcher,
	notifier *notify.Notifier,
	appointmentID string,
	entries []models.StatusEntry,
) {

	if len(entries) == 0 {
		return
	}

	for _, e := range entries {
		auditD.Dispatch(ctx, audit.Event{
			AppointmentID: appointmentID,
			ActorID:       e.Actor,
			Action:        audit.ActionStatusChanged,
			Metadata: map[string]any{
				"from":   e.From,
				"to":     e.To,
				"reason": e.Reason,
			},
		})
	}

	notifier.Go(ctx, "status_events", func(ctx context.Context) {
		notifier.PublishStatusChanges(ctx, appointmentID, entries)
	})
}

func sameInstant(a, b time.Time) bool {
	d := a.Sub(b)
	return d > -time.Millisecond && d < time.Millisecond
}
