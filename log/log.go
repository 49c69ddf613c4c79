// Package log provides leveled structured logging for the ledger: a small
// wrapper around log/slog with a colorized terminal handler, so that
// operational events (rejections, backpressure, mined blocks, processor
// errors) are structured key=value records rather than ad-hoc fmt.Println.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level mirrors slog.Level but adds Trace and Crit rungs below and above
// the four stdlib levels.
type Level int

const (
	LevelTrace Level = -8
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
	LevelCrit  Level = 12
)

func (l Level) String() string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARN"
	case l < LevelCrit:
		return "ERROR"
	default:
		return "CRIT"
	}
}

// Logger is the interface every call site in this module logs through.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type logger struct {
	inner *slog.Logger
}

// NewLogger builds a Logger backed by the given slog.Handler.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) log(level Level, msg string, ctx []any) {
	l.inner.Log(context.Background(), slog.Level(level), msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any)  { l.log(LevelCrit, msg, ctx) }

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

// terminalHandler renders records as "LEVEL [time] msg key=val key=val",
// optionally colorizing the level tag when writing to a tty.
type terminalHandler struct {
	mu       sync.Mutex
	out      io.Writer
	useColor bool
	minLevel Level
	attrs    []slog.Attr
}

// NewTerminalHandler returns a slog.Handler that writes human-readable,
// optionally colorized records to out.
func NewTerminalHandler(out io.Writer, useColor bool) slog.Handler {
	return &terminalHandler{out: out, useColor: useColor, minLevel: LevelTrace}
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return Level(level) >= h.minLevel
}

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	level := Level(r.Level)
	tag := level.String()
	if h.useColor {
		tag = colorForLevel(level)(tag)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-5s [%s] %s", tag, r.Time.Format("01-02|15:04:05.000"), r.Message)

	attrs := append([]slog.Attr{}, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	for _, a := range attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
	}
	b.WriteByte('\n')

	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := &terminalHandler{out: h.out, useColor: h.useColor, minLevel: h.minLevel}
	n.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return n
}

func (h *terminalHandler) WithGroup(_ string) slog.Handler {
	return h
}

func colorForLevel(l Level) func(string, ...any) string {
	switch {
	case l < LevelDebug:
		return color.New(color.FgHiBlack).SprintfFunc()
	case l < LevelInfo:
		return color.New(color.FgBlue).SprintfFunc()
	case l < LevelWarn:
		return color.New(color.FgGreen).SprintfFunc()
	case l < LevelError:
		return color.New(color.FgYellow).SprintfFunc()
	case l < LevelCrit:
		return color.New(color.FgRed).SprintfFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintfFunc()
	}
}

// JSONHandler returns a machine-readable slog.Handler, for hosts that ship
// logs to a collector rather than a terminal.
func JSONHandler(out io.Writer) slog.Handler {
	return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.Level(LevelDebug)})
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = newDefault()
)

func newDefault() Logger {
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	out := io.Writer(os.Stderr)
	if useColor {
		out = colorable.NewColorable(os.Stderr)
	}
	return NewLogger(NewTerminalHandler(out, useColor))
}

// SetDefault replaces the package-level default logger used by Trace/Debug/
// Info/Warn/Error/Crit.
func SetDefault(l Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

func Trace(msg string, ctx ...any) { Default().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Default().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Default().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Default().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Default().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Default().Crit(msg, ctx...) }
