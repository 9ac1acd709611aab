package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

type Options struct {
	Level        string
	Format       string
	LogstashAddr string
	Writer       io.Writer
}

// New builds the process logger. Console output is colorized text unless
// Format is "json". When LogstashAddr is set every record is also shipped as
// JSON to Logstash. The returned closer flushes that sink.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	level := ParseLevel(opts.Level)

	var console slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		console = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	} else {
		console = tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	}

	if strings.TrimSpace(opts.LogstashAddr) == "" {
		return slog.New(console), nopCloser{}, nil
	}
	sink, err := NewLogstashSink(opts.LogstashAddr)
	if err != nil {
		return nil, nil, err
	}
	shipped := slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level})
	return slog.New(fanout{console, shipped}), sink, nil
}

func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout hands each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
