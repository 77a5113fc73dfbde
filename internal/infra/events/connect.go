package events

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("appointment-invites"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", logging.ErrKey, err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
}
