// Package logging builds the slog.Logger gitlet commands run with: a terse
// console handler and an optional rotating log file.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/odvcencio/gitlet/pkg/repo"
)

const (
	defaultMaxSizeMB  = 1
	defaultMaxBackups = 2
	defaultMaxAgeDays = 30
)

// Options configures New.
type Options struct {
	// Console receives warnings and errors, and debug output when Verbose
	// is set. Nil disables console logging.
	Console io.Writer
	Verbose bool

	// File enables the rotating file sink when non-empty.
	File       string
	Level      slog.Level
	MaxSizeMB  int
	MaxBackups int
}

// Logger is a configured logger together with the file sink it owns.
type Logger struct {
	*slog.Logger
	file io.Closer
}

// Close flushes and closes the file sink, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// New builds a Logger from opts.
func New(opts Options) (*Logger, error) {
	var handlers []slog.Handler
	if opts.Console != nil {
		level := slog.LevelWarn
		if opts.Verbose {
			level = slog.LevelDebug
		}
		handlers = append(handlers, &consoleHandler{w: opts.Console, level: level})
	}

	l := &Logger{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		sink := rotatingFile(opts)
		l.file = sink
		handlers = append(handlers, slog.NewTextHandler(sink, &slog.HandlerOptions{
			Level: opts.Level,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format("2006-01-02 15:04:05.000"))
				}
				return a
			},
		}))
	}

	switch len(handlers) {
	case 0:
		l.Logger = slog.New(slog.DiscardHandler)
	case 1:
		l.Logger = slog.New(handlers[0])
	default:
		l.Logger = slog.New(&multiHandler{handlers: handlers})
	}
	return l, nil
}

// FromConfig maps the [log] section of a repository config onto Options.
// A relative file path is taken relative to gitletDir.
func FromConfig(cfg repo.LogConfig, gitletDir string) (Options, error) {
	opts := Options{
		File:       cfg.File,
		Level:      slog.LevelInfo,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	if opts.File != "" && !filepath.IsAbs(opts.File) {
		opts.File = filepath.Join(gitletDir, opts.File)
	}
	if cfg.Level != "" {
		lvl, err := ParseLevel(cfg.Level)
		if err != nil {
			return Options{}, err
		}
		opts.Level = lvl
	}
	return opts, nil
}

// ParseLevel accepts debug, info, warn, or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

func rotatingFile(opts Options) *lumberjack.Logger {
	sink := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
	}
	if opts.MaxSizeMB > 0 {
		sink.MaxSize = opts.MaxSizeMB
	}
	if opts.MaxBackups > 0 {
		sink.MaxBackups = opts.MaxBackups
	}
	return sink
}

// consoleHandler writes "level: message key=value ..." lines without
// timestamps.
type consoleHandler struct {
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, rec slog.Record) error {
	var b strings.Builder
	b.WriteString(strings.ToLower(rec.Level.String()))
	b.WriteString(": ")
	b.WriteString(rec.Message)
	writeAttr := func(a slog.Attr) bool {
		if a.Equal(slog.Attr{}) {
			return true
		}
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	rec.Attrs(writeAttr)
	b.WriteByte('\n')
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &consoleHandler{w: h.w, level: h.level, attrs: merged}
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// multiHandler fans records out to every handler enabled for them.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, rec.Level) {
			errs = append(errs, handler.Handle(ctx, rec.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}
