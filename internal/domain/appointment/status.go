package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusDraft          Status = "draft"
	StatusUnderReview    Status = "under_review"
	StatusSendingInvites Status = "sending_invites"
	StatusPending        Status = "pending"
	StatusScheduled      Status = "scheduled"
	StatusConfirmed      Status = "confirmed"
	StatusRescheduled    Status = "rescheduled"
	StatusCanceled       Status = "canceled"
	StatusFinalized      Status = "finalized"
)

var allStatuses = []Status{
	StatusDraft,
	StatusUnderReview,
	StatusSendingInvites,
	StatusPending,
	StatusScheduled,
	StatusConfirmed,
	StatusRescheduled,
	StatusCanceled,
	StatusFinalized,
}

func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range allStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Status) IsTerminal() bool {
	return s == StatusCanceled || s == StatusFinalized
}

// ===============================
// Manual transitions
// ===============================

// manualTransitions is the operator allow-list. A status without entries
// rejects every manual transition.
var manualTransitions = map[Status][]Status{
	StatusDraft:          {StatusUnderReview, StatusCanceled},
	StatusUnderReview:    {StatusScheduled, StatusCanceled, StatusDraft},
	StatusSendingInvites: {StatusUnderReview, StatusCanceled},
	StatusPending:        {StatusScheduled, StatusCanceled, StatusRescheduled},
	StatusScheduled:      {StatusConfirmed, StatusCanceled, StatusRescheduled, StatusFinalized},
	StatusConfirmed:      {StatusFinalized, StatusCanceled, StatusRescheduled},
	StatusRescheduled:    {StatusUnderReview, StatusScheduled, StatusCanceled},
}

const MaxReasonLength = 500

// AvailableTransitions returns a copy of the manual targets allowed from current.
func AvailableTransitions(current Status) []Status {
	targets := manualTransitions[current]
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}

func requiresReason(target Status) bool {
	return target == StatusCanceled || target == StatusRescheduled
}

// CanTransition validates a manual transition from current to target.
func CanTransition(current, target Status, reason string, start, now time.Time) error {
	allowed := false
	for _, t := range manualTransitions[current] {
		if t == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return httperr.ErrBusiness(
			httperr.KindInvalidTransition,
			fmt.Sprintf("cannot move appointment from %s to %s", current, target),
		)
	}

	reason = strings.TrimSpace(reason)
	if requiresReason(target) && reason == "" {
		return httperr.Validation(fmt.Sprintf("reason is required to set status %s", target))
	}
	if len([]rune(reason)) > MaxReasonLength {
		return httperr.Validation(fmt.Sprintf("reason must be at most %d characters", MaxReasonLength))
	}

	if target == StatusFinalized && start.After(now) {
		return httperr.ErrBusiness(
			httperr.KindPrematureFinalization,
			"appointment cannot be finalized before it starts",
		)
	}

	return nil
}

// InitialStatus is Draft, or UnderReview when the creator submits right away.
func InitialStatus(submitForReview bool) Status {
	if submitForReview {
		return StatusUnderReview
	}
	return StatusDraft
}
