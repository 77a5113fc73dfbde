// Package events publishes appointment lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

const SubjectStatusChanged = "appointments.status_changed"

var ErrNotConnected = errors.New("nats connection is not available")

type StatusChanged struct {
	AppointmentID string    `json:"appointment_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Reason        string    `json:"reason"`
	Actor         string    `json:"actor"`
	At            time.Time `json:"at"`
}

type Publisher interface {
	PublishStatusChanged(ctx context.Context, ev StatusChanged) error
}

// INatsConn is the part of a NATS connection the publisher needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

type NatsPublisher struct {
	conn INatsConn
}

func NewNatsPublisher(conn INatsConn) *NatsPublisher {
	return &NatsPublisher{conn: conn}
}

func (p *NatsPublisher) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	return p.send(ctx, SubjectStatusChanged, ev)
}

func (p *NatsPublisher) send(ctx context.Context, subject string, payload any) error {
	if p.conn == nil || !p.conn.IsConnected() {
		slog.WarnContext(ctx, "skipping event, nats not connected", "subject", subject)
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event", logging.ErrKey, err, "subject", subject)
		return err
	}

	if err := p.conn.Publish(subject, data); err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// NoopPublisher drops events. It is used when NATS_URL is empty.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	slog.DebugContext(ctx, "events disabled, dropping status change", "appointment_id", ev.AppointmentID, "to", ev.To)
	return nil
}

var (
	_ Publisher = (*NatsPublisher)(nil)
	_ Publisher = NoopPublisher{}
)
