package validators

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxInvitees          = 10
	MaxInviteeNameLength = 100
)

type InviteeFields struct {
	Email string
	Name  string
}

// ValidateInvitees checks the size of the list and each entry. Emails are
// compared case-insensitively.
func ValidateInvitees(list []InviteeFields) Result {
	var r Result

	if len(list) > MaxInvitees {
		r.addf("at most %d invitees are allowed", MaxInvitees)
	}

	seen := make(map[string]int, len(list))
	for i, inv := range list {
		email := strings.ToLower(strings.TrimSpace(inv.Email))
		switch {
		case email == "":
			r.addf("invitees[%d].email is required", i)
		case !IsEmail(email):
			r.addf("invitees[%d].email is not a valid email address", i)
		default:
			if first, dup := seen[email]; dup {
				r.addf("invitees[%d].email duplicates invitees[%d]", i, first)
			} else {
				seen[email] = i
			}
		}

		if utf8.RuneCountInString(strings.TrimSpace(inv.Name)) > MaxInviteeNameLength {
			r.addf("invitees[%d].name must be at most %d characters", i, MaxInviteeNameLength)
		}
	}

	return r.finish()
}
