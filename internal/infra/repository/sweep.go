package repository

import (
	"sort"
	"time"
)

// sweepRow is the slice of an appointment row the sweep query reads.
type sweepRow struct {
	ID           string
	Status       string
	StartTime    time.Time
	InviteSentAt *time.Time
}

type sweepCandidate struct {
	id    string
	dueAt time.Time
}

// earliestDue orders candidates by due time, oldest first, and keeps at most
// limit ids. A limit of zero or less keeps all of them.
func earliestDue(due []sweepCandidate, limit int) []string {
	sort.Slice(due, func(i, j int) bool {
		if due[i].dueAt.Equal(due[j].dueAt) {
			return due[i].id < due[j].id
		}
		return due[i].dueAt.Before(due[j].dueAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	ids := make([]string, 0, len(due))
	for _, c := range due {
		ids = append(ids, c.id)
	}
	return ids
}
