package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

var errSample = stderrors.New("sample cause")

func TestLayoutErrorString(t *testing.T) {
	err := New("star.NewEntry", KindValidation, errSample)
	got := err.Error()
	want := "star.NewEntry [validation]: sample cause"
	if got != want {
		t.Errorf("LayoutError.Error() = %q, want %q", got, want)
	}
}

func TestLayoutErrorWithSubject(t *testing.T) {
	err := &LayoutError{
		Op:      "starsizing.Coordinator.Register",
		Kind:    KindRegistration,
		Subject: "*widgets.StarPanel",
		Err:     errSample,
	}
	want := "subject=*widgets.StarPanel"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestLayoutErrorUnwrap(t *testing.T) {
	var err error = New("op", KindConfig, errSample)
	if !stderrors.Is(err, errSample) {
		t.Error("errors.Is should see the wrapped cause")
	}
	var le *LayoutError
	if !stderrors.As(err, &le) || le.Kind != KindConfig {
		t.Errorf("errors.As failed or wrong kind: %v", le)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindValidation, "validation"},
		{KindRegistration, "registration"},
		{KindConvergence, "convergence"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
	err.Op = "starsizing.Coordinator.Flush"
	if got, want := err.Error(), "panic in starsizing.Coordinator.Flush: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *LayoutError
	prev := SetHandler(&testHandler{onError: func(err *LayoutError) { captured = err }})
	defer SetHandler(prev)

	Report(New("test.op", KindConvergence, errSample))

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportNil(t *testing.T) {
	called := false
	prev := SetHandler(&testHandler{
		onError: func(*LayoutError) { called = true },
		onPanic: func(*PanicError) { called = true },
	})
	defer SetHandler(prev)

	Report(nil)
	ReportPanic(nil)
	if called {
		t.Error("nil reports should not reach the handler")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	prev := SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(prev)

	run := func() (err error) {
		defer Recover("test.recover", &err)
		panic("intentional test panic")
	}
	err := run()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" || captured.Op != "test.recover" {
		t.Errorf("captured = %+v", captured)
	}
	if captured.StackTrace == "" {
		t.Error("expected a stack trace")
	}
	var pe *PanicError
	if !stderrors.As(err, &pe) || pe != captured {
		t.Errorf("returned error = %v, want the reported panic", err)
	}
}

func TestRecoverNoPanic(t *testing.T) {
	called := false
	prev := SetHandler(&testHandler{onPanic: func(*PanicError) { called = true }})
	defer SetHandler(prev)

	run := func() (err error) {
		defer Recover("test.quiet", &err)
		return errSample
	}
	if err := run(); err != errSample {
		t.Errorf("err = %v, want %v", err, errSample)
	}
	if called {
		t.Error("handler should not run without a panic")
	}

	// A nil errp only reports.
	func() {
		defer Recover("test.nil", nil)
		panic(errSample)
	}()
	if !called {
		t.Error("expected the panic to be reported")
	}
}

func TestPanicErrorUnwrap(t *testing.T) {
	if err := (&PanicError{Value: errSample}); !stderrors.Is(err, errSample) {
		t.Error("errors.Is should see an error panic value")
	}
	if err := (&PanicError{Value: 42}); err.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandler(t *testing.T) {
	h := &testHandler{}
	prev := SetHandler(h)
	defer SetHandler(prev)

	if Handler() != h {
		t.Errorf("Handler() = %T, want the installed handler", Handler())
	}
	if old := SetHandler(nil); old != h {
		t.Errorf("SetHandler returned %T, want the replaced handler", old)
	}
	if _, ok := Handler().(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should install a LogHandler, got %T", Handler())
	}
}

func TestLogHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Verbose: true, Out: &buf}
	h.HandleError(&LayoutError{
		Op:         "star.Allocate",
		Kind:       KindValidation,
		Subject:    "entry[2]",
		Err:        errSample,
		StackTrace: "frame",
	})
	out := buf.String()
	for _, want := range []string{"star.Allocate", "[validation]", "subject=entry[2]", "sample cause", "Stack trace:"} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output %q missing %q", out, want)
		}
	}

	buf.Reset()
	h.HandlePanic(&PanicError{Op: "op", Value: "boom"})
	if !strings.Contains(buf.String(), "[starlayout panic] op: boom") {
		t.Errorf("unexpected panic output %q", buf.String())
	}
}

type testHandler struct {
	onError func(*LayoutError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *LayoutError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
