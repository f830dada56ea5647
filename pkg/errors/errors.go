// Package errors provides the structured error taxonomy used by the
// reconciliation engine.
//
// Invariant violations and build failures are fatal: the engine reports them
// to the global [ErrorHandler] and then panics with the structured value, so
// embedders can recover and inspect it with errors.As.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvariant indicates broken internal bookkeeping.
	KindInvariant
	// KindBuild indicates a build function failure.
	KindBuild
	// KindCallback indicates a callback dispatch failure.
	KindCallback
	// KindConfig indicates an invalid configuration.
	KindConfig
	// KindLayout indicates a layout or paint failure.
	KindLayout
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvariant:
		return "invariant"
	case KindBuild:
		return "build"
	case KindCallback:
		return "callback"
	case KindConfig:
		return "config"
	case KindLayout:
		return "layout"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Error is a general structured error.
type Error struct {
	// Op is the operation that failed (e.g., "engine.Update").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvariantError reports that the engine's own bookkeeping is broken.
// It is always raised with panic.
type InvariantError struct {
	// Op is the operation that detected the violation.
	Op string
	// Message describes the violated invariant.
	Message string
	// StackTrace contains the call stack at the time of the violation.
	StackTrace string
}

func (e *InvariantError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Message)
	}
	return "invariant violated: " + e.Message
}

// Invariantf panics with an [InvariantError] after reporting it.
func Invariantf(op, format string, args ...any) {
	err := &InvariantError{
		Op:         op,
		Message:    fmt.Sprintf(format, args...),
		StackTrace: CaptureStack(),
	}
	Report(&Error{Op: op, Kind: KindInvariant, Err: err, StackTrace: err.StackTrace})
	panic(err)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.Runner").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BuildError represents a failure during a build function.
type BuildError struct {
	// Widget is the type name of the widget that failed.
	Widget string
	// Element is the element kind (StatelessElement, StatefulElement, etc.).
	Element string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Build(): %v", e.Widget, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Build(): %v", e.Widget, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Build()", e.Widget)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// CallbackError reports a callback invoked with an argument of the wrong
// type.
type CallbackError struct {
	// Callback identifies the callback (element and index).
	Callback string
	// Want is the argument type the callback was registered with.
	Want string
	// Got is the argument type that was delivered.
	Got string
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("callback %s expects %s, got %s", e.Callback, e.Want, e.Got)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a build function fails.
	HandleBuildError(err *BuildError)
}
