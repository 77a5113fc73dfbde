package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

// maxTxAttempts bounds retries of transactions aborted by the database for
// serialization failures or deadlocks.
const maxTxAttempts = 3

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *AppointmentGormRepository) Get(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, mapError(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListByCreator(
	ctx context.Context,
	creatorID string,
	status string,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).Where("creator_id = ?", creatorID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var apps []models.Appointment
	if err := q.Order("start_time DESC").Find(&apps).Error; err != nil {
		return nil, mapError(err)
	}
	return apps, nil
}

// ListSweepCandidates selects rows with an automatic change due: invites in
// flight whose window has ended, and auto-resolvable rows past their start.
// Each side is fetched in due order and merged, so settled rows never take a
// slot.
func (r *AppointmentGormRepository) ListSweepCandidates(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]string, error) {

	var expired []sweepRow
	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("id", "status", "start_time", "invite_sent_at").
		Where("status IN ?", inFlightStatuses()).
		Where("invite_sent_at <= ?", now.Add(-domain.InviteExpiry)).
		Order("invite_sent_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&expired).Error; err != nil {
		return nil, mapError(err)
	}

	var started []sweepRow
	q = r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("id", "status", "start_time", "invite_sent_at").
		Where("status IN ?", sweepStatuses()).
		Where("start_time < ?", now).
		Order("start_time ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&started).Error; err != nil {
		return nil, mapError(err)
	}

	seen := make(map[string]struct{}, len(expired)+len(started))
	due := make([]sweepCandidate, 0, len(expired)+len(started))
	for _, row := range append(expired, started...) {
		if _, dup := seen[row.ID]; dup {
			continue
		}
		seen[row.ID] = struct{}{}

		ap := models.Appointment{
			ID:           row.ID,
			Status:       row.Status,
			StartTime:    row.StartTime,
			InviteSentAt: row.InviteSentAt,
		}
		if at, ok := domain.SweepDueAt(&ap, now); ok {
			due = append(due, sweepCandidate{id: row.ID, dueAt: at})
		}
	}
	return earliestDue(due, limit), nil
}

// --------------------------------------------------
// Writes
// --------------------------------------------------

func (r *AppointmentGormRepository) Create(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Create(ap).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *AppointmentGormRepository) Update(
	ctx context.Context,
	id string,
	fn domain.MutateFunc,
) (*models.Appointment, error) {

	var updated models.Appointment

	err := r.inTx(ctx, func(tx *gorm.DB) error {
		ap, err := lockAppointment(tx, id)
		if err != nil {
			return err
		}

		if err := fn(ap); err != nil {
			return err
		}

		if err := tx.Save(ap).Error; err != nil {
			return err
		}

		updated = *ap
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *AppointmentGormRepository) Delete(
	ctx context.Context,
	id string,
	fn domain.MutateFunc,
) error {

	return r.inTx(ctx, func(tx *gorm.DB) error {
		ap, err := lockAppointment(tx, id)
		if err != nil {
			return err
		}

		if fn != nil {
			if err := fn(ap); err != nil {
				return err
			}
		}

		return tx.Delete(&models.Appointment{}, "id = ?", id).Error
	})
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func lockAppointment(tx *gorm.DB, id string) (*models.Appointment, error) {
	var ap models.Appointment
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

// inTx runs fn in a transaction and retries it when postgres aborts it with
// a serialization failure or a deadlock.
func (r *AppointmentGormRepository) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(fn)
		if err == nil || !retryable(err) {
			break
		}
		slog.WarnContext(ctx, "retrying appointment transaction", "attempt", attempt, "error", err)
	}
	return mapError(err)
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// mapError keeps business errors raised by callbacks and reports everything
// else as an internal failure.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var be httperr.BusinessError
	if errors.As(err, &be) {
		return be
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.NotFound("appointment not found")
	}
	return httperr.Internal("appointment store failure", err)
}

func inFlightStatuses() []string {
	return []string{
		string(domain.StatusSendingInvites),
		string(domain.StatusPending),
	}
}

func sweepStatuses() []string {
	return []string{
		string(domain.StatusSendingInvites),
		string(domain.StatusPending),
		string(domain.StatusScheduled),
		string(domain.StatusConfirmed),
	}
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
