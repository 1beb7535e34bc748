package asm

import (
	"bytes"
	"testing"
)

func TestLabelInstrComment(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Label("L0001,")
	w.Instr("TAD %s", "0020")
	w.Comment("a comment")
	w.Endline()

	want := "L0001,\tTAD 0020\t/ a comment\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestInstrWithoutLabelStartsAtFInstr(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Instr("NOP")
	w.Endline()

	want := "\tNOP\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestSkipPrefixesBlank(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Skip()
	w.Instr("TAD 0020")
	w.Endline()

	want := "\t TAD 0020\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestBlankDoesNotRepeat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Blank()
	w.Blank()

	if buf.String() != "" {
		t.Fatalf("got %q, want empty (blank-on-blank is a no-op)", buf.String())
	}

	w.Label("X,")
	w.Blank()
	w.Blank()

	want := "X,\n\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestLongLabelWrapsInstrToNewLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Label("AVERYLONGLABEL,")
	w.Instr("TAD 0020")
	w.Endline()

	want := "AVERYLONGLABEL,\n\tTAD 0020\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestEmitcMasksTo12Bits(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Emitc(-1)
	w.Endline()

	want := "\t7777\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestAdvanceZeroIsNoop(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Advance(0)

	if buf.String() != "" {
		t.Fatalf("Advance(0) should emit nothing, got %q", buf.String())
	}
}
