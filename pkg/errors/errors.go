// Package errors provides structured error handling for the star layout engine.
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
	// KindValidation indicates a caller contract violation, such as an
	// invalid star weight or inverted min/max bounds.
	KindValidation
	// KindRegistration indicates an invalid provider registration request.
	KindRegistration
	// KindConvergence indicates a measurement cycle that failed to settle
	// within its step budget.
	KindConvergence
	// KindConfig indicates a malformed scenario or configuration file.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRegistration:
		return "registration"
	case KindConvergence:
		return "convergence"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// LayoutError represents a structured error raised by the layout engine.
type LayoutError struct {
	// Op is the operation that failed (e.g., "star.NewEntry").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Subject names the offending value, if applicable (a provider type,
	// a scenario path, an entry index).
	Subject string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

// New returns a LayoutError for op wrapping err.
func New(op string, kind ErrorKind, err error) *LayoutError {
	return &LayoutError{Op: op, Kind: kind, Err: err}
}

func (e *LayoutError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s [%s] subject=%s: %v", e.Op, e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "starsizing.Coordinator.Flush").
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

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ErrorHandler receives errors reported by the layout engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *LayoutError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
