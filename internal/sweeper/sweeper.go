// Package sweeper periodically expires invite windows and re-derives the
// status of appointments nobody has touched since.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/concurrent"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/lock"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
	"github.com/BruksfildServices01/appointment-invites/internal/usecase/appointment"
)

const lockKey = "appointment-invites:sweep"

// Candidates lists the ids a pass should look at.
type Candidates interface {
	ListSweepCandidates(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// Expirer applies expiry and status resolution to one appointment.
type Expirer interface {
	Execute(ctx context.Context, appointmentID string) (*appointment.ExpireInvitesResult, error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
}

// Summary describes one pass.
type Summary struct {
	Skipped  bool
	Scanned  int
	Expired  int
	Resolved int
	Failed   int
}

type Sweeper struct {
	cfg     Config
	repo    Candidates
	expirer Expirer
	locker  lock.Locker
	pool    *concurrent.WorkerPool
	clock   timezone.Clock
}

func New(
	cfg Config,
	repo Candidates,
	expirer Expirer,
	locker lock.Locker,
	pool *concurrent.WorkerPool,
	clock timezone.Clock,
) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	return &Sweeper{
		cfg:     cfg,
		repo:    repo,
		expirer: expirer,
		locker:  locker,
		pool:    pool,
		clock:   clock,
	}
}

// Start runs a pass every interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "sweeper started", "interval", s.cfg.Interval.String(), "batch_size", s.cfg.BatchSize)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "sweep failed", logging.ErrKey, err)
			}
		}
	}
}

// RunOnce performs a single pass. Another replica holding the lease makes
// the pass a no-op. Failures on single appointments are logged and counted;
// only a failure to list candidates is returned.
func (s *Sweeper) RunOnce(ctx context.Context) (Summary, error) {
	release, ok, err := s.locker.TryLock(ctx, lockKey, s.cfg.Interval)
	if err != nil {
		return Summary{}, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		slog.DebugContext(ctx, "sweep skipped, lease held elsewhere")
		return Summary{Skipped: true}, nil
	}
	defer release()

	ids, err := s.repo.ListSweepCandidates(ctx, s.clock.Now(), s.cfg.BatchSize)
	if err != nil {
		return Summary{}, fmt.Errorf("list sweep candidates: %w", err)
	}

	results := make([]*appointment.ExpireInvitesResult, len(ids))
	jobs := make([]func(context.Context) error, len(ids))
	for i, id := range ids {
		i, id := i, id
		jobs[i] = func(ctx context.Context) error {
			res, err := s.expirer.Execute(ctx, id)
			results[i] = res
			return err
		}
	}
	errs := s.pool.RunAll(ctx, jobs...)

	sum := Summary{Scanned: len(ids)}
	for i, err := range errs {
		if err != nil {
			sum.Failed++
			slog.ErrorContext(ctx, "sweep of appointment failed",
				"appointment_id", ids[i],
				logging.ErrKey, err,
			)
			continue
		}
		if r := results[i]; r != nil {
			if r.InviteesResolved {
				sum.Expired++
			}
			if r.StatusChanged {
				sum.Resolved++
			}
		}
	}

	if sum.Scanned > 0 {
		slog.InfoContext(ctx, "sweep finished",
			"scanned", sum.Scanned,
			"expired", sum.Expired,
			"resolved", sum.Resolved,
			"failed", sum.Failed,
		)
	}
	return sum, nil
}
