package validators

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
	MaxLocationLength    = 500
	MaxNotesLength       = 1000
	MaxJustification     = 500

	// ClockSkew is how far in the past a start time may be and still count
	// as "now".
	ClockSkew = 60 * time.Second
)

var appointmentTypes = map[string]struct{}{
	"meeting":  {},
	"hearing":  {},
	"deadline": {},
	"other":    {},
}

type AppointmentFields struct {
	Title       string
	Description string
	Location    string
	Type        string
	Notes       string
	StartTime   string
	EndTime     string
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseTime accepts RFC 3339 or a local "date time" in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func ValidateAppointment(f AppointmentFields, now time.Time) Result {
	var r Result

	title := strings.TrimSpace(f.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		r.addf("title is required")
	case n < MinTitleLength || n > MaxTitleLength:
		r.addf("title must be between %d and %d characters", MinTitleLength, MaxTitleLength)
	}

	checkMax(&r, "description", f.Description, MaxDescriptionLength)
	checkMax(&r, "location", f.Location, MaxLocationLength)
	checkMax(&r, "notes", f.Notes, MaxNotesLength)

	if t := strings.ToLower(strings.TrimSpace(f.Type)); t != "" {
		if _, ok := appointmentTypes[t]; !ok {
			r.addf("type must be one of meeting, hearing, deadline, other")
		}
	}

	r.Errors = append(r.Errors, validateWindow(f.StartTime, f.EndTime, now)...)

	return r.finish()
}

func validateWindow(startRaw, endRaw string, now time.Time) []string {
	var r Result

	if strings.TrimSpace(startRaw) == "" {
		r.addf("start_time is required")
	}
	if strings.TrimSpace(endRaw) == "" {
		r.addf("end_time is required")
	}
	if len(r.Errors) > 0 {
		return r.Errors
	}

	start, err := ParseTime(startRaw, now.Location())
	if err != nil {
		r.addf("start_time is not a valid date-time")
	}
	end, err := ParseTime(endRaw, now.Location())
	if err != nil {
		r.addf("end_time is not a valid date-time")
	}
	if len(r.Errors) > 0 {
		return r.Errors
	}

	if !end.After(start) {
		r.addf("end_time must be after start_time")
	}
	if start.Before(now.Add(-ClockSkew)) {
		r.addf("start_time must not be in the past")
	}

	return r.Errors
}

// ValidateResponse checks an invitee's decision and its justification.
func ValidateResponse(decision string, justification *string, requireJustification bool) Result {
	var r Result

	switch decision {
	case "accepted":
	case "declined":
		if requireJustification && (justification == nil || strings.TrimSpace(*justification) == "") {
			r.addf("justification is required when declining")
		}
	default:
		r.addf("decision must be accepted or declined")
	}

	if justification != nil {
		checkMax(&r, "justification", *justification, MaxJustification)
	}

	return r.finish()
}

func checkMax(r *Result, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		r.addf("%s must be at most %d characters", field, limit)
	}
}
