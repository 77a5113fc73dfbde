package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "github.com/BruksfildServices01/appointment-invites/internal/db"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/httperr"
	"github.com/BruksfildServices01/appointment-invites/internal/models"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newSQLiteRepo(t *testing.T) *AppointmentGormRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "appointments.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(db))

	return NewAppointmentGormRepository(db)
}

func repositories(t *testing.T) map[string]domain.Repository {
	return map[string]domain.Repository{
		"memory": NewAppointmentMemoryRepository(),
		"gorm":   newSQLiteRepo(t),
	}
}

func fixture(id, creator string, status domain.Status, start time.Time) *models.Appointment {
	return &models.Appointment{
		ID:        id,
		Title:     "Weekly sync",
		Type:      "meeting",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    string(status),
		CreatorID: creator,
		Invitees: []models.Invitee{
			{Email: "a@x.com", Status: domain.InviteePending, InvitedAt: base},
		},
	}
}

func TestRepository_CreateGetUpdate(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, fixture("ap-1", "u-1", domain.StatusDraft, base.Add(48*time.Hour))))

			got, err := repo.Get(ctx, "ap-1")
			require.NoError(t, err)
			assert.Equal(t, "Weekly sync", got.Title)
			require.Len(t, got.Invitees, 1)
			assert.Equal(t, "a@x.com", got.Invitees[0].Email)

			updated, err := repo.Update(ctx, "ap-1", func(ap *models.Appointment) error {
				domain.SetStatus(ap, domain.StatusUnderReview, "ready", "u-1", base)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusUnderReview), updated.Status)

			got, err = repo.Get(ctx, "ap-1")
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusUnderReview), got.Status)
			require.Len(t, got.History, 1)
			assert.Equal(t, "ready", got.History[0].Reason)
		})
	}
}

func TestRepository_UpdateRollsBackOnError(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, fixture("ap-1", "u-1", domain.StatusDraft, base.Add(48*time.Hour))))

			_, err := repo.Update(ctx, "ap-1", func(ap *models.Appointment) error {
				ap.Title = "changed"
				return httperr.InvalidState("nope")
			})
			assert.True(t, httperr.IsBusiness(err, httperr.KindInvalidState))

			got, err := repo.Get(ctx, "ap-1")
			require.NoError(t, err)
			assert.Equal(t, "Weekly sync", got.Title)
		})
	}
}

func TestRepository_NotFound(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.Get(ctx, "missing")
			assert.True(t, httperr.IsBusiness(err, httperr.KindNotFound))

			_, err = repo.Update(ctx, "missing", func(*models.Appointment) error { return nil })
			assert.True(t, httperr.IsBusiness(err, httperr.KindNotFound))

			err = repo.Delete(ctx, "missing", nil)
			assert.True(t, httperr.IsBusiness(err, httperr.KindNotFound))
		})
	}
}

func TestRepository_Delete(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, fixture("ap-1", "u-1", domain.StatusDraft, base.Add(48*time.Hour))))

			err := repo.Delete(ctx, "ap-1", func(*models.Appointment) error {
				return httperr.Forbidden("not yours")
			})
			assert.True(t, httperr.IsBusiness(err, httperr.KindForbidden))

			require.NoError(t, repo.Delete(ctx, "ap-1", nil))
			_, err = repo.Get(ctx, "ap-1")
			assert.True(t, httperr.IsBusiness(err, httperr.KindNotFound))
		})
	}
}

func TestRepository_ListByCreator(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, fixture("ap-1", "u-1", domain.StatusDraft, base.Add(24*time.Hour))))
			require.NoError(t, repo.Create(ctx, fixture("ap-2", "u-1", domain.StatusPending, base.Add(72*time.Hour))))
			require.NoError(t, repo.Create(ctx, fixture("ap-3", "u-2", domain.StatusDraft, base.Add(48*time.Hour))))

			all, err := repo.ListByCreator(ctx, "u-1", "")
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "ap-2", all[0].ID, "latest start first")

			drafts, err := repo.ListByCreator(ctx, "u-1", string(domain.StatusDraft))
			require.NoError(t, err)
			require.Len(t, drafts, 1)
			assert.Equal(t, "ap-1", drafts[0].ID)
		})
	}
}

func TestRepository_ListSweepCandidates(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sent := base.Add(-25 * time.Hour)
			recent := base.Add(-time.Hour)

			pending := fixture("pending-sent", "u-1", domain.StatusPending, base.Add(48*time.Hour))
			pending.InviteSentAt = &sent
			require.NoError(t, repo.Create(ctx, pending))

			// started and expired at once, listed a single time
			startedPending := fixture("pending-started", "u-1", domain.StatusPending, base.Add(-3*time.Hour))
			startedPending.InviteSentAt = &sent
			require.NoError(t, repo.Create(ctx, startedPending))

			past := fixture("scheduled-past", "u-1", domain.StatusScheduled, base.Add(-2*time.Hour))
			require.NoError(t, repo.Create(ctx, past))

			open := fixture("pending-open", "u-1", domain.StatusPending, base.Add(48*time.Hour))
			open.InviteSentAt = &recent
			require.NoError(t, repo.Create(ctx, open))

			for _, id := range []string{"settled-1", "settled-2", "settled-3"} {
				settled := fixture(id, "u-1", domain.StatusScheduled, base.Add(24*time.Hour))
				settled.InviteSentAt = &sent
				settled.Invitees[0].Status = domain.InviteeAccepted
				require.NoError(t, repo.Create(ctx, settled))
			}

			require.NoError(t, repo.Create(ctx, fixture("draft-future", "u-1", domain.StatusDraft, base.Add(48*time.Hour))))
			require.NoError(t, repo.Create(ctx, fixture("canceled-past", "u-1", domain.StatusCanceled, base.Add(-2*time.Hour))))
			require.NoError(t, repo.Create(ctx, fixture("scheduled-future", "u-1", domain.StatusScheduled, base.Add(48*time.Hour))))

			ids, err := repo.ListSweepCandidates(ctx, base, 10)
			require.NoError(t, err)
			assert.Equal(t, []string{"pending-started", "scheduled-past", "pending-sent"}, ids)

			ids, err = repo.ListSweepCandidates(ctx, base, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"pending-started", "scheduled-past"}, ids)
		})
	}
}

func TestRepository_ListSweepCandidates_SettledRowsTakeNoSlots(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sent := base.Add(-25 * time.Hour)

			for i, id := range []string{"settled-a", "settled-b"} {
				settled := fixture(id, "u-1", domain.StatusScheduled, base.Add(time.Duration(24+i)*time.Hour))
				settled.InviteSentAt = &sent
				settled.Invitees[0].Status = domain.InviteeAccepted
				require.NoError(t, repo.Create(ctx, settled))
			}

			stale := fixture("stale", "u-1", domain.StatusPending, base.Add(72*time.Hour))
			stale.InviteSentAt = &sent
			require.NoError(t, repo.Create(ctx, stale))

			ids, err := repo.ListSweepCandidates(ctx, base, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"stale"}, ids)
		})
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewAppointmentMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, fixture("ap-1", "u-1", domain.StatusDraft, base)))

	got, err := repo.Get(ctx, "ap-1")
	require.NoError(t, err)
	got.Invitees[0].Status = domain.InviteeAccepted

	again, err := repo.Get(ctx, "ap-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InviteePending, again.Invitees[0].Status)
}

func TestMemoryRepository_SerializesResponses(t *testing.T) {
	repo := NewAppointmentMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, fixture("ap-1", "u-1", domain.StatusPending, base.Add(48*time.Hour))))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "ap-1", func(ap *models.Appointment) error {
				list, err := domain.Respond(ap.Invitees, "a@x.com", domain.InviteeAccepted, nil, base)
				if err != nil {
					return err
				}
				ap.Invitees = list
				return nil
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case httperr.IsBusiness(err, httperr.KindAlreadyResponded):
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, dups)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.True(t, httperr.IsBusiness(mapError(gorm.ErrRecordNotFound), httperr.KindNotFound))
	assert.True(t, httperr.IsBusiness(mapError(errors.New("conn reset")), httperr.KindInternal))
	assert.True(t, httperr.IsBusiness(mapError(httperr.Forbidden("x")), httperr.KindForbidden))
}
