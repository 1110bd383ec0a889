package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// annotatedError includes more context than a plain error that is useful for troubleshooting.
type annotatedError struct {
	// msg describes what was being attempted when the error happened.
	msg string
	// cause is the wrapped error, nil for errors created with New.
	cause error
	// pc is the program counter for the location of the error provided by runtime.Callers.
	pc uintptr
	// attrs are added to the log event to provide more context for the error.
	attrs []slog.Attr
}

func newAnnotated(msg string, cause error, attrs []slog.Attr) *annotatedError {
	var pcs [1]uintptr
	// Skip runtime.Callers, newAnnotated, and the exported constructor.
	runtime.Callers(3, pcs[:]) //nolint:mnd // see above
	return &annotatedError{
		msg:   msg,
		cause: cause,
		pc:    pcs[0],
		attrs: attrs,
	}
}

// New creates an error annotated with the caller's source location and the given attributes.
func New(msg string, attrs ...slog.Attr) error {
	return newAnnotated(msg, nil, attrs)
}

// Wrap annotates err with a message describing what was attempted, the caller's source location and attributes.
//
// Wrap returns nil if err is nil.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return newAnnotated(msg, err, attrs)
}

// NewSentinel creates a plain error without other context that can be used as sentinel error that can be
// detected with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Error implements error interface.
func (err *annotatedError) Error() string {
	if err.cause == nil {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.msg, err.cause.Error())
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (err *annotatedError) Unwrap() error {
	return err.cause
}

func (err *annotatedError) source() string {
	frames := runtime.CallersFrames([]uintptr{err.pc})
	frame, _ := frames.Next()
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}

// LogValue formats the error for useful logging.
func (err *annotatedError) LogValue() slog.Value {
	attrs := append([]slog.Attr{slog.String("source", err.source())}, err.attrs...)
	return slog.GroupValue(attrs...)
}

// SlogError creates a slog attribute for the error.
//
// The attribute contains the full error message, the source location where the outermost annotation was made and the
// attributes of every annotated error in the chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	attrs := []slog.Attr{slog.String("message", err.Error())}
	sourceAdded := false
	for e := err; e != nil; e = errors.Unwrap(e) {
		var annotated *annotatedError
		if !errors.As(e, &annotated) {
			break
		}
		if !sourceAdded {
			attrs = append(attrs, slog.String("source", annotated.source()))
			sourceAdded = true
		}
		attrs = append(attrs, annotated.attrs...)
		e = annotated
	}
	return slog.Attr{Key: "error", Value: slog.GroupValue(attrs...)}
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap exposes stdlib errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}
