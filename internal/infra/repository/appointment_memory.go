package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

var errDuplicateID = errors.New("duplicate appointment id")

// AppointmentMemoryRepository keeps appointments in process. A single mutex
// serializes every read-modify-write, standing in for row locks.
type AppointmentMemoryRepository struct {
	mu   sync.Mutex
	rows map[string]models.Appointment
	now  func() time.Time
}

func NewAppointmentMemoryRepository() *AppointmentMemoryRepository {
	return &AppointmentMemoryRepository{
		rows: make(map[string]models.Appointment),
		now:  time.Now,
	}
}

func (r *AppointmentMemoryRepository) Create(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ap.ID == "" {
		return httperr.Validation("id is required")
	}
	if _, exists := r.rows[ap.ID]; exists {
		return httperr.Internal("appointment store failure", errDuplicateID)
	}

	now := r.now()
	if ap.CreatedAt.IsZero() {
		ap.CreatedAt = now
	}
	ap.UpdatedAt = now

	r.rows[ap.ID] = cloneAppointment(*ap)
	return nil
}

func (r *AppointmentMemoryRepository) Get(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ap, ok := r.rows[id]
	if !ok {
		return nil, httperr.NotFound("appointment not found")
	}
	out := cloneAppointment(ap)
	return &out, nil
}

func (r *AppointmentMemoryRepository) Update(_ context.Context, id string, fn domain.MutateFunc) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[id]
	if !ok {
		return nil, httperr.NotFound("appointment not found")
	}

	working := cloneAppointment(current)
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = r.now()

	r.rows[id] = cloneAppointment(working)
	return &working, nil
}

func (r *AppointmentMemoryRepository) Delete(_ context.Context, id string, fn domain.MutateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[id]
	if !ok {
		return httperr.NotFound("appointment not found")
	}

	if fn != nil {
		working := cloneAppointment(current)
		if err := fn(&working); err != nil {
			return err
		}
	}

	delete(r.rows, id)
	return nil
}

func (r *AppointmentMemoryRepository) ListByCreator(_ context.Context, creatorID string, status string) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Appointment{}
	for _, ap := range r.rows {
		if ap.CreatorID != creatorID {
			continue
		}
		if status != "" && ap.Status != status {
			continue
		}
		out = append(out, cloneAppointment(ap))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

func (r *AppointmentMemoryRepository) ListSweepCandidates(_ context.Context, now time.Time, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []sweepCandidate
	for _, ap := range r.rows {
		if at, ok := domain.SweepDueAt(&ap, now); ok {
			due = append(due, sweepCandidate{id: ap.ID, dueAt: at})
		}
	}
	return earliestDue(due, limit), nil
}

// cloneAppointment copies every slice and pointer so callers never share
// state with the stored row.
func cloneAppointment(ap models.Appointment) models.Appointment {
	out := ap
	out.InviteSentAt = cloneTime(ap.InviteSentAt)
	if ap.ProcessID != nil {
		p := *ap.ProcessID
		out.ProcessID = &p
	}

	if ap.Invitees != nil {
		out.Invitees = make([]models.Invitee, len(ap.Invitees))
		for i, inv := range ap.Invitees {
			inv.RespondedAt = cloneTime(inv.RespondedAt)
			if inv.Justification != nil {
				j := *inv.Justification
				inv.Justification = &j
			}
			out.Invitees[i] = inv
		}
	}

	if ap.History != nil {
		out.History = make([]models.StatusEntry, len(ap.History))
		copy(out.History, ap.History)
	}

	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

var _ domain.Repository = (*AppointmentMemoryRepository)(nil)
