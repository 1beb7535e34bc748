package errs

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarnFormatsLineAndName(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Line: 42}
	r.Warn("foo", "bad thing: %d", 7)

	got := buf.String()
	if !strings.HasPrefix(got, "   42 foo      ") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "bad thing: 7") {
		t.Fatalf("missing message: %q", got)
	}
	if _, w := r.Counts(); w != 1 {
		t.Fatalf("warnCount = %d, want 1", w)
	}
}

func TestErrorPanicsAfterMaxErrors(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, MaxErrors: 2}

	defer func() {
		rec := recover()
		if rec == nil {
			t.Fatal("expected panic after reaching MaxErrors")
		}
		if _, ok := rec.(TooManyErrors); !ok {
			t.Fatalf("unexpected panic value: %v", rec)
		}
	}()

	r.Error("", "first")
	r.Error("", "second")
	t.Fatal("unreachable")
}

func TestFatalPanicsImmediately(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf}

	defer func() {
		rec := recover()
		f, ok := rec.(Fatal)
		if !ok {
			t.Fatalf("unexpected panic value: %v", rec)
		}
		if f.Msg != "boom" {
			t.Fatalf("Fatal.Msg = %q, want boom", f.Msg)
		}
	}()

	r.Fatal("", "boom")
	t.Fatal("unreachable")
}
