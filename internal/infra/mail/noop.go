package mail

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

// NoOpSender logs messages instead of sending them. It is used when SMTP is
// not configured.
type NoOpSender struct{}

func NewNoOpSender() *NoOpSender {
	return &NoOpSender{}
}

func (NoOpSender) Send(ctx context.Context, msg Message) (string, error) {
	ctx = logging.AppendCtx(ctx, slog.String("recipient_email", msg.To))
	slog.DebugContext(ctx, "email disabled, skipping message", "subject", msg.Subject)
	return "noop-" + uuid.NewString(), nil
}

var _ Sender = NoOpSender{}
