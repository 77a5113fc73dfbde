package appointment

import (
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

// InviteExpiry is how long invitees have to answer before silence counts as
// acceptance.
const InviteExpiry = 24 * time.Hour

// Resolution is the derived status together with the rule that produced it.
type Resolution struct {
	Status Status
	Reason string
}

// InviteExpired reports whether the response window has elapsed at now.
func InviteExpired(inviteSentAt *time.Time, now time.Time) bool {
	if inviteSentAt == nil {
		return false
	}
	return now.Sub(*inviteSentAt) >= InviteExpiry
}

// ExpiresAt is the end of the response window, or nil before invites are sent.
func ExpiresAt(inviteSentAt *time.Time) *time.Time {
	if inviteSentAt == nil {
		return nil
	}
	t := inviteSentAt.Add(InviteExpiry)
	return &t
}

// Resolve derives the appointment status from its invitees and the clock.
// It never mutates invitees: expired pending entries are only counted as
// accepted.
func Resolve(invitees []models.Invitee, start time.Time, inviteSentAt *time.Time, now time.Time) Resolution {
	if len(invitees) == 0 {
		return Resolution{StatusScheduled, "no invitees to wait on"}
	}

	stats := Analyze(invitees)

	if start.Before(now) {
		return Resolution{StatusFinalized, "appointment time has passed"}
	}

	if InviteExpired(inviteSentAt, now) {
		accepted := stats.Accepted + stats.Pending
		switch {
		case accepted > 0:
			return Resolution{StatusScheduled, "invites expired, silence counts as acceptance"}
		case stats.AllDeclined:
			return Resolution{StatusCanceled, "all invitees declined"}
		default:
			return Resolution{StatusScheduled, "invites expired without responses"}
		}
	}

	if stats.AllResponded {
		switch {
		case stats.AllAccepted:
			return Resolution{StatusScheduled, "all invitees accepted"}
		case stats.AllDeclined:
			return Resolution{StatusCanceled, "all invitees declined"}
		case stats.MixedOutcome:
			return Resolution{StatusScheduled, "partial attendance confirmed"}
		}
	} else {
		return Resolution{StatusPending, "awaiting invitee responses"}
	}

	return Resolution{StatusScheduled, "automatic status update"}
}
