package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

// Invitee response states.
const (
	InviteePending  = "pending"
	InviteeAccepted = "accepted"
	InviteeDeclined = "declined"
)

const MaxInvitees = 10

// Stats is the aggregate view of an invitee list.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`

	AllAccepted  bool `json:"all_accepted"`
	AllDeclined  bool `json:"all_declined"`
	AllResponded bool `json:"all_responded"`
	MixedOutcome bool `json:"mixed_outcome"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize lower-cases and trims emails, drops entries without an email and
// defaults a missing status to pending.
func Normalize(list []models.Invitee) []models.Invitee {
	out := make([]models.Invitee, 0, len(list))
	for _, inv := range list {
		inv.Email = NormalizeEmail(inv.Email)
		if inv.Email == "" {
			continue
		}
		inv.Name = strings.TrimSpace(inv.Name)
		if inv.Status == "" {
			inv.Status = InviteePending
		}
		out = append(out, inv)
	}
	return out
}

// Find returns the invitee matching email and its index, or ok=false.
func Find(list []models.Invitee, email string) (models.Invitee, int, bool) {
	email = NormalizeEmail(email)
	if email == "" {
		return models.Invitee{}, -1, false
	}
	for i, inv := range list {
		if NormalizeEmail(inv.Email) == email {
			return inv, i, true
		}
	}
	return models.Invitee{}, -1, false
}

// Respond records a single response. The input list is never modified.
func Respond(
	list []models.Invitee,
	email string,
	newStatus string,
	justification *string,
	now time.Time,
) ([]models.Invitee, error) {

	if newStatus != InviteeAccepted && newStatus != InviteeDeclined {
		return nil, httperr.Validation("decision must be accepted or declined")
	}

	current, idx, ok := Find(list, email)
	if !ok {
		return nil, httperr.ErrBusiness(httperr.KindInviteeNotFound, "invitee not found")
	}
	if current.Status != InviteePending {
		return nil, httperr.AlreadyResponded(current.Status)
	}

	out := cloneList(list)

	respondedAt := now
	updated := current
	updated.Status = newStatus
	updated.RespondedAt = &respondedAt
	updated.Justification = nil
	if justification != nil {
		j := *justification
		updated.Justification = &j
	}
	out[idx] = updated

	return out, nil
}

// Analyze counts the list. An empty list is all-responded and neither
// all-accepted nor all-declined.
func Analyze(list []models.Invitee) Stats {
	s := Stats{Total: len(list)}
	for _, inv := range list {
		switch inv.Status {
		case InviteeAccepted:
			s.Accepted++
		case InviteeDeclined:
			s.Declined++
		default:
			s.Pending++
		}
	}

	s.AllResponded = s.Pending == 0
	s.AllAccepted = s.Total > 0 && s.Accepted == s.Total
	s.AllDeclined = s.Total > 0 && s.Declined == s.Total
	s.MixedOutcome = s.Accepted > 0 && s.Declined > 0 && s.AllResponded

	return s
}

// ResolveExpiredAsAccepted accepts every pending invitee on their behalf.
// changed is false when nothing was pending.
func ResolveExpiredAsAccepted(list []models.Invitee, now time.Time) ([]models.Invitee, bool) {
	out := cloneList(list)
	changed := false
	for i, inv := range out {
		if inv.Status != InviteePending && inv.Status != "" {
			continue
		}
		respondedAt := now
		inv.Status = InviteeAccepted
		inv.RespondedAt = &respondedAt
		inv.AutoResponse = true
		out[i] = inv
		changed = true
	}
	return out, changed
}

// MergeOnUpdate builds the list for an edited appointment. Entries already
// in old keep their response fields and take the incoming display name;
// new emails start pending. Emails only in old are dropped.
func MergeOnUpdate(old, incoming []models.Invitee, now time.Time) []models.Invitee {
	incoming = Normalize(incoming)
	out := make([]models.Invitee, 0, len(incoming))

	for _, in := range incoming {
		if prev, _, ok := Find(old, in.Email); ok {
			prev.Email = in.Email
			prev.Name = in.Name
			if prev.Status == "" {
				prev.Status = InviteePending
			}
			out = append(out, prev)
			continue
		}

		out = append(out, models.Invitee{
			Email:     in.Email,
			Name:      in.Name,
			Status:    InviteePending,
			InvitedAt: now,
		})
	}

	return out
}

// PendingEmails lists pending invitees, optionally restricted to filter.
func PendingEmails(list []models.Invitee, filter []string) []models.Invitee {
	var allow map[string]struct{}
	if len(filter) > 0 {
		allow = make(map[string]struct{}, len(filter))
		for _, e := range filter {
			allow[NormalizeEmail(e)] = struct{}{}
		}
	}

	var out []models.Invitee
	for _, inv := range list {
		if inv.Status != InviteePending {
			continue
		}
		if allow != nil {
			if _, ok := allow[NormalizeEmail(inv.Email)]; !ok {
				continue
			}
		}
		out = append(out, inv)
	}
	return out
}

func cloneList(list []models.Invitee) []models.Invitee {
	out := make([]models.Invitee, len(list))
	copy(out, list)
	return out
}
