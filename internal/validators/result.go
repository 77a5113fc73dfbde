package validators

import (
	"fmt"

	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
)

// Result is the outcome of a validation. Expected bad input is reported
// here, never as a panic.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r *Result) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r Result) finish() Result {
	r.Valid = len(r.Errors) == 0
	if r.Errors == nil {
		r.Errors = []string{}
	}
	return r
}

// Merge combines results, keeping the order of errors.
func Merge(results ...Result) Result {
	var out Result
	for _, r := range results {
		out.Errors = append(out.Errors, r.Errors...)
	}
	return out.finish()
}

// Err converts an invalid result into a validation error.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return httperr.Validation(r.Errors...)
}
