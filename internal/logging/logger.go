// Package logging configures log/slog for the server and the CLI.
//
// Loggers taken from a request context carry chi's request id, so every
// line written while converting one upload can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Options selects how log records are written.
type Options struct {
	Level  string // see ParseLevel
	Format string // "json" or "text" (default)

	// OmitTime drops the time attribute from every record.
	OmitTime bool
}

// Setup installs the server's default logger on stdout.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, Options{Level: level, Format: format}))
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if opts.OmitTime {
		handlerOpts.ReplaceAttr = dropTime
	}

	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// ParseLevel converts a level name to slog.Level. It accepts slog's own
// syntax ("debug", "INFO", "warn+2") plus "warning". Anything else is info.
func ParseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// FromContext returns the default logger, with request_id added when ctx
// comes from a request that passed chi's RequestID middleware.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}

// WithFields is FromContext plus args, e.g.
//
//	logger := logging.WithFields(ctx, "conversion_id", batch.ID)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
