package audit

import (
	"context"
	"log/slog"

	"github.com/BruksfildServices01/appointment-invites/internal/dispatch"
	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

type Event struct {
	AppointmentID string
	ActorID       string
	Action        string
	Metadata      any
}

// Dispatcher writes audit events off the request path. A failed or dropped
// event never breaks the API.
type Dispatcher struct {
	logger *Logger
	jobs   *dispatch.Dispatcher
}

func NewDispatcher(logger *Logger, jobs *dispatch.Dispatcher) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		jobs:   jobs,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if d == nil {
		return
	}

	d.jobs.Submit(ctx, "audit:"+ev.Action, func(ctx context.Context) {
		if err := d.logger.Log(ctx, ev.AppointmentID, ev.ActorID, ev.Action, ev.Metadata); err != nil {
			slog.ErrorContext(ctx, "audit write failed",
				"action", ev.Action,
				"appointment_id", ev.AppointmentID,
				logging.ErrKey, err,
			)
		}
	})
}
