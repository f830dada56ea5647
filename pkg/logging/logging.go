// Package logging holds the structured logger shared by every retained
// package. By default nothing is logged.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
)

// LevelTrace is below [slog.LevelDebug] and is used for per-element
// reconciliation decisions (retain, rebuild, spawn, destroy).
const LevelTrace = slog.LevelDebug - 4

// nopHandler discards every record. Enabled returns false so callers skip
// attribute formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Nop returns a logger that discards all output.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(Nop())
}

// SetLogger configures the package-level logger. Pass nil to restore the
// silent default. Safe for concurrent use.
//
// Levels used:
//   - [LevelTrace]: individual reconciliation decisions
//   - [slog.LevelDebug]: update loop progress
//   - [slog.LevelInfo]: runner and debug server lifecycle
//   - [slog.LevelWarn]: dropped callbacks, slow frames
//   - [slog.LevelError]: reported build errors and panics
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = Nop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package-level logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel converts a level name ("trace", "debug", "info", "warn",
// "error") into a [slog.Level].
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off", "none":
		return slog.LevelError + 4, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ReplaceLevel is a [slog.HandlerOptions.ReplaceAttr] function that prints
// [LevelTrace] as "TRACE" instead of "DEBUG-4".
func ReplaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}
