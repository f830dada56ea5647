package errors

import (
	"github.com/go-drift/retained/pkg/logging"
)

// LogHandler is an ErrorHandler that writes through the shared slog logger.
type LogHandler struct {
	// Verbose includes stack traces.
	Verbose bool
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	args := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	logging.Logger().Error("retained error", args...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	args := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	logging.Logger().Error("retained panic", args...)
}

// HandleBuildError logs a BuildError.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	args := []any{"widget", err.Widget, "element", err.Element, "err", err.Error()}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	logging.Logger().Error("build failed", args...)
}
