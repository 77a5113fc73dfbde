package appointment

import (
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

// SystemActor signs history entries written by automatic resolution.
const SystemActor = "system"

// ===============================
// Domain Actions
// ===============================

// SetStatus moves ap to status and appends one history entry. It reports
// false and writes nothing when the status is unchanged.
func SetStatus(ap *models.Appointment, to Status, reason, actor string, now time.Time) bool {
	from := Status(ap.Status)
	if from == to {
		return false
	}

	ap.Status = string(to)
	ap.History = append(ap.History, models.StatusEntry{
		At:     now,
		From:   string(from),
		To:     string(to),
		Reason: reason,
		Actor:  actor,
	})
	return true
}

// AutoResolvable reports whether automatic resolution may rewrite status.
// Terminal and operator-held statuses are left alone, except that a
// confirmed appointment still finalizes once it has started.
func AutoResolvable(status Status) bool {
	switch status {
	case StatusSendingInvites, StatusPending, StatusScheduled, StatusConfirmed:
		return true
	}
	return false
}

// SweepDueAt returns when the stored status of ap next needs an automatic
// change, and false when nothing is due at now. Invites in flight fall due
// when the response window ends; every auto-resolvable status falls due once
// the appointment starts.
func SweepDueAt(ap *models.Appointment, now time.Time) (time.Time, bool) {
	current := Status(ap.Status)
	if !AutoResolvable(current) {
		return time.Time{}, false
	}

	var (
		due   time.Time
		found bool
	)
	if current == StatusSendingInvites || current == StatusPending {
		if at := ExpiresAt(ap.InviteSentAt); at != nil && !at.After(now) {
			due, found = *at, true
		}
	}
	if ap.StartTime.Before(now) && (!found || ap.StartTime.Before(due)) {
		due, found = ap.StartTime, true
	}
	return due, found
}

// Refresh re-derives the cached status of ap in place and returns the
// resolution that was applied, or nil when nothing changed.
func Refresh(ap *models.Appointment, now time.Time) *Resolution {
	current := Status(ap.Status)
	if !AutoResolvable(current) {
		return nil
	}

	res := Resolve(ap.Invitees, ap.StartTime, ap.InviteSentAt, now)
	if current == StatusConfirmed && res.Status != StatusFinalized {
		return nil
	}

	if !SetStatus(ap, res.Status, ExplainTransition(current, res.Status), SystemActor, now) {
		return nil
	}
	return &res
}

// Transition applies an operator-driven status change.
func Transition(ap *models.Appointment, target Status, reason, actor string, now time.Time) error {
	if err := CanTransition(Status(ap.Status), target, reason, ap.StartTime, now); err != nil {
		return err
	}
	if reason == "" {
		reason = "manual status change"
	}
	SetStatus(ap, target, reason, actor, now)
	return nil
}

// MarkInvitesSent records the start of delivery.
func MarkInvitesSent(ap *models.Appointment, now time.Time) error {
	if err := CanSendInvites(ap, now); err != nil {
		return err
	}

	sentAt := now
	ap.InviteSentAt = &sentAt
	ap.Invitees = Normalize(ap.Invitees)
	for i := range ap.Invitees {
		if ap.Invitees[i].Status == InviteePending {
			ap.Invitees[i].InvitedAt = now
		}
	}

	SetStatus(ap, StatusSendingInvites, ExplainTransition(Status(ap.Status), StatusSendingInvites), SystemActor, now)
	return nil
}

// WithdrawInvites returns ap to review after a batch that reached nobody.
// The response window is cleared: invitees who never got an invitation must
// not be counted as silent, and the next send opens a fresh window.
func WithdrawInvites(ap *models.Appointment, reason string, now time.Time) {
	ap.InviteSentAt = nil
	SetStatus(ap, StatusUnderReview, reason, SystemActor, now)
}

// CanSendInvites checks state, timing and invitees before a send.
func CanSendInvites(ap *models.Appointment, now time.Time) error {
	current := Status(ap.Status)
	if current != StatusUnderReview && current != StatusScheduled {
		return httperr.InvalidState("invites can only be sent while under review or scheduled")
	}
	if !ap.StartTime.After(now) {
		return httperr.InvalidState("appointment has already started")
	}
	if len(Normalize(ap.Invitees)) == 0 {
		return httperr.ErrBusiness(httperr.KindNoInvitees, "appointment has no invitees")
	}
	return nil
}

// ExpireInvites accepts unanswered invites once the window has elapsed.
func ExpireInvites(ap *models.Appointment, now time.Time) bool {
	if Status(ap.Status).IsTerminal() || !InviteExpired(ap.InviteSentAt, now) {
		return false
	}
	updated, changed := ResolveExpiredAsAccepted(ap.Invitees, now)
	if changed {
		ap.Invitees = updated
	}
	return changed
}
