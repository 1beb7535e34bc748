// Package asm implements the three-column PAL-8 assembly pretty printer:
// label (column 0), instruction (column 8), comment (column 24), advanced
// with tab stops and wrapped onto a new line when a field is overrun.
package asm

import (
	"fmt"
	"io"
)

// Field boundaries, in columns.
const (
	FBegin   = 0
	FLabel   = FBegin
	FInstr   = 8
	FComment = 24
)

// NameFmt is the format used to print a name in a comment.
const NameFmt = "%.8s"

// Writer accumulates PAL-8 text in the three-column layout. It replaces
// the original's file-scope column/isskip statics, letting multiple
// independent compilations use distinct writers.
type Writer struct {
	Out    io.Writer
	column int
	isSkip bool
}

// NewWriter returns a Writer emitting to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{Out: out}
}

// field advances to the indicated column by emitting tabs, starting a new
// line first if the current column already overshoots target.
func (w *Writer) field(target int) {
	if w.column > target || w.column == target && target > 0 {
		fmt.Fprint(w.Out, "\n")
		w.column = 0
	}

	w.column &^= 7

	for w.column < target {
		fmt.Fprint(w.Out, "\t")
		w.column += 8
	}
}

// Label writes a label field.
func (w *Writer) Label(format string, args ...any) {
	w.field(FLabel)
	n, _ := fmt.Fprintf(w.Out, format, args...)
	w.column += n
}

// Instr writes an instruction field. If Skip was called since the last
// Instr, the instruction is prefixed with a blank to mark it as
// conditionally executed.
func (w *Writer) Instr(format string, args ...any) {
	w.field(FInstr)

	if w.isSkip {
		fmt.Fprint(w.Out, " ")
	}

	n, _ := fmt.Fprintf(w.Out, format, args...)
	w.column += n
	if w.isSkip {
		w.column++
	}
	w.isSkip = false
}

// Comment writes a comment field, prefixing it with "/ ".
func (w *Writer) Comment(format string, args ...any) {
	w.field(FComment)

	fmt.Fprint(w.Out, "/ ")
	n, _ := fmt.Fprintf(w.Out, format, args...)
	w.column += n + 2
}

// CommentName writes a name as a comment, unless name is empty.
func (w *Writer) CommentName(name string) {
	if name != "" {
		w.Comment(NameFmt, name)
	}
}

// Endline finishes the current line.
func (w *Writer) Endline() {
	w.field(FBegin)
}

// Blank emits a blank line, unless one was just emitted.
func (w *Writer) Blank() {
	if w.column == 0 {
		return
	}

	w.field(FBegin)
	fmt.Fprint(w.Out, "\n")
}

// Emitc emits the octal representation of c, masked to 12 bits.
func (w *Writer) Emitc(c int) {
	w.Instr("%04o", c&07777)
}

// Advance emits a request to advance by n words, if n is positive.
func (w *Writer) Advance(n int) {
	if n > 0 {
		w.Instr("*.+%04o", n)
	}
}

// Skip marks the next instruction as conditionally executed.
func (w *Writer) Skip() {
	w.isSkip = true
}
