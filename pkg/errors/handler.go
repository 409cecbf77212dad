package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

type handlerSlot struct {
	h ErrorHandler
}

// current holds the process-wide handler. It starts as a quiet LogHandler.
var current atomic.Pointer[handlerSlot]

func init() {
	current.Store(&handlerSlot{h: &LogHandler{}})
}

// SetHandler installs h as the process-wide handler and returns the one it
// replaces. Nil restores a quiet LogHandler.
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = &LogHandler{}
	}
	return current.Swap(&handlerSlot{h: h}).h
}

// Handler returns the process-wide handler.
func Handler() ErrorHandler {
	return current.Load().h
}

// Report passes err to the process-wide handler, stamping the time if unset.
func Report(err *LayoutError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic passes a recovered panic to the process-wide handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	Handler().HandlePanic(err)
}

// Recover must be deferred directly. A panic in the deferring function is
// reported and, when errp is non-nil, returned through it as a *PanicError:
//
//	func run() (err error) {
//		defer errors.Recover("starlayout.run", &err)
//		...
//	}
func Recover(op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	pe := &PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
	ReportPanic(pe)
	if errp != nil {
		*errp = pe
	}
}

// CaptureStack formats the caller's stack, one function and position per
// frame. Frames inside this package's recovery path are left out.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteByte('\n')
		if !more {
			break
		}
	}
	return sb.String()
}
