package appointment

import "time"

var basePriority = map[Status]int{
	StatusPending:        80,
	StatusSendingInvites: 75,
	StatusUnderReview:    70,
	StatusRescheduled:    65,
	StatusScheduled:      60,
	StatusConfirmed:      50,
	StatusDraft:          40,
	StatusFinalized:      10,
	StatusCanceled:       5,
}

// PriorityScore ranks an appointment for operator triage, in [0,100].
func PriorityScore(status Status, start time.Time, inviteeCount int, now time.Time) int {
	score := basePriority[status]

	until := start.Sub(now)
	if until >= 0 {
		switch {
		case until <= 2*time.Hour:
			score += 20
		case until <= 24*time.Hour:
			score += 10
		case until <= 48*time.Hour:
			score += 5
		}
	}

	if inviteeCount > 5 {
		score += 10
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
