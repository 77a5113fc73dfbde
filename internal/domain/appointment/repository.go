package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

// MutateFunc changes an appointment inside a transaction. Returning an error
// rolls the whole transaction back.
type MutateFunc func(ap *models.Appointment) error

type Repository interface {
	Create(
		ctx context.Context,
		ap *models.Appointment,
	) error

	Get(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	// Update loads the row under a write lock, applies fn and saves the
	// result in one transaction. Concurrent updates to the same id are
	// serialized.
	Update(
		ctx context.Context,
		id string,
		fn MutateFunc,
	) (*models.Appointment, error)

	// Delete removes the row if fn accepts it, in one transaction.
	Delete(
		ctx context.Context,
		id string,
		fn MutateFunc,
	) error

	ListByCreator(
		ctx context.Context,
		creatorID string,
		status string,
	) ([]models.Appointment, error)

	// ListSweepCandidates returns ids of appointments with an automatic
	// status change due at now (see SweepDueAt), earliest due first.
	ListSweepCandidates(
		ctx context.Context,
		now time.Time,
		limit int,
	) ([]string, error)
}
