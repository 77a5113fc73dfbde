// Package logging sets up the JSON slog logger and carries per-request
// attributes (request, actor, appointment ids) on the context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ErrKey is the attribute key used for errors in every log line.
const ErrKey = "error"

type ctxKey struct{}

var fieldsKey ctxKey

// contextHandler adds the attributes stored with AppendCtx to each record.
type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(fields(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

func fields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(fieldsKey).([]slog.Attr)
	return attrs
}

// AppendCtx returns a child of parent whose log lines also carry attr.
// The parent's attributes are never modified.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	prev := fields(parent)
	next := make([]slog.Attr, len(prev), len(prev)+1)
	copy(next, prev)
	return context.WithValue(parent, fieldsKey, append(next, attr))
}

// Detach keeps the log attributes of ctx and drops its deadline and
// cancellation. Background jobs started by a request run with it.
func Detach(ctx context.Context) context.Context {
	out := context.Background()
	if attrs := fields(ctx); attrs != nil {
		out = context.WithValue(out, fieldsKey, attrs)
	}
	return out
}

// ParseLevel maps LOG_LEVEL values to a slog level; anything unknown is info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewContextHandler wraps h so records pick up attributes stored with
// AppendCtx.
func NewContextHandler(h slog.Handler) slog.Handler {
	return contextHandler{h}
}

// NewHandler writes JSON records to w.
func NewHandler(w io.Writer, level slog.Level, addSource bool) slog.Handler {
	return NewContextHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	}))
}

// Setup installs the process logger from LOG_LEVEL and LOG_ADD_SOURCE. It
// runs before config loading so .env problems are already logged as JSON.
func Setup() *slog.Logger {
	addSource, _ := strconv.ParseBool(os.Getenv("LOG_ADD_SOURCE"))
	level := ParseLevel(os.Getenv("LOG_LEVEL"))

	logger := slog.New(NewHandler(os.Stdout, level, addSource))
	slog.SetDefault(logger)

	logger.Debug("logger ready", "level", level.String(), "add_source", addSource)
	return logger
}

// PriorityCritical tags failures that lose data or leave an appointment in a
// wrong state, so alerts can select them.
func PriorityCritical() slog.Attr {
	return slog.String("priority", "critical")
}
