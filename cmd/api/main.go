package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/appointment-invites/internal/audit"
	"github.com/BruksfildServices01/appointment-invites/internal/concurrent"
	"github.com/BruksfildServices01/appointment-invites/internal/config"
	dbpkg "github.com/BruksfildServices01/appointment-invites/internal/db"
	"github.com/BruksfildServices01/appointment-invites/internal/dispatch"
	domain "github.com/BruksfildServices01/appointment-invites/internal/domain/appointment"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/events"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/lock"
	"github.com/BruksfildServices01/appointment-invites/internal/infra/mail"
	infraRepo "github.com/BruksfildServices01/appointment-invites/internal/infra/repository"
	"github.com/BruksfildServices01/appointment-invites/internal/invitetoken"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
	"github.com/BruksfildServices01/appointment-invites/internal/notify"
	"github.com/BruksfildServices01/appointment-invites/internal/routes"
	"github.com/BruksfildServices01/appointment-invites/internal/sweeper"
	"github.com/BruksfildServices01/appointment-invites/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/appointment-invites/internal/usecase/appointment"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logging.Setup()

	if err := run(); err != nil {
		slog.Error("service stopped with error", logging.ErrKey, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	clock := timezone.NewSystemClock(cfg.DefaultTimezone)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// STORE
	// ======================================================
	var (
		repo       domain.Repository
		auditStore audit.Store
	)
	switch cfg.StoreDriver {
	case "memory":
		slog.Warn("using in-memory store, data is lost on restart")
		repo = infraRepo.NewAppointmentMemoryRepository()
		auditStore = audit.NewMemoryStore()
	default:
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return err
		}
		defer closeDB(db)
		repo = infraRepo.NewAppointmentGormRepository(db)
		auditStore = audit.NewGormStore(db)
	}

	// ======================================================
	// OUTBOUND
	// ======================================================
	var sender mail.Sender = mail.NewNoOpSender()
	if cfg.SMTP.Enabled() {
		sender = mail.NewSMTPSender(cfg.SMTP)
	} else {
		slog.Warn("SMTP not configured, invitation emails are not delivered")
	}

	renderer, err := mail.NewRenderer()
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		nc, err := events.Connect(cfg.NatsURL)
		if err != nil {
			return err
		}
		defer drainNats(nc)
		publisher = events.NewNatsPublisher(nc)
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisURL != "" {
		rdb, err := lock.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer closeRedis(rdb)
		locker = lock.NewRedisLocker(rdb)
	}

	// ======================================================
	// BACKGROUND WORK
	// ======================================================
	jobs := dispatch.NewDispatcher(cfg.DispatchQueueSize, cfg.DispatchWorkers)
	defer jobs.Close()

	pool := concurrent.NewWorkerPool(cfg.DeliveryWorkers)
	tokens := invitetoken.NewIssuer(cfg.InviteTokenSecret, clock)
	notifier := notify.New(sender, renderer, tokens, publisher, jobs, pool, cfg.PublicBaseURL)

	auditLogger := audit.New(auditStore)
	auditDispatcher := audit.NewDispatcher(auditLogger, jobs)

	sweep := sweeper.New(
		sweeper.Config{Interval: cfg.SweepInterval, BatchSize: cfg.SweepBatchSize},
		repo,
		ucAppointment.NewExpireInvites(repo, auditDispatcher, notifier, clock),
		locker,
		pool,
		clock,
	)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		_ = sweep.Start(ctx)
	}()

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Dependencies{
		Repo:        repo,
		AuditLogger: auditLogger,
		Audit:       auditDispatcher,
		Notifier:    notifier,
		Tokens:      tokens,
		Clock:       clock,
		Policy: ucAppointment.Policy{
			RequireDeclineJustification: cfg.RequireDeclineJustification,
			VerifyEmailDomains:          cfg.VerifyEmailDomains,
		},
	}, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-sweepDone
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", logging.ErrKey, err)
	}

	<-sweepDone
	// deferred: drain dispatcher, then close nats, redis and the database
	return nil
}

func closeDB(db *gorm.DB) {
	if err := dbpkg.Close(db); err != nil {
		slog.Warn("database close failed", logging.ErrKey, err)
	}
}

func drainNats(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		slog.Warn("nats drain failed", logging.ErrKey, err)
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		slog.Warn("redis close failed", logging.ErrKey, err)
	}
}
