// Package compiler bundles the per-compilation context: the diagnostic
// reporter, the assembly writer, the two name tables, the data area, the
// frame manager, and the instruction selector, wired together the way
// spec.md's Design Notes call for instead of as file-scope globals.
package compiler

import (
	"io"

	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/codegen"
	"github.com/clausecker/pdp8c/internal/data"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/frame"
	"github.com/clausecker/pdp8c/internal/isel"
	"github.com/clausecker/pdp8c/internal/symtab"
	"github.com/clausecker/pdp8c/internal/value"
)

// runtimeNames are the canonical standard-library entry points every
// compilation wires up at the end, regardless of whether the program
// actually defined them.
var runtimeNames = [4]string{"EXIT", "GETCHAR", "PUTCHAR", "SENSE"}

// Compiler is a single compilation's worth of state. Front ends create one
// per translation unit (spec.md's "a single compilation occupies the whole
// module" becomes an instance instead of a set of package globals).
type Compiler struct {
	Errs  *errs.Reporter
	Asm   *asm.Writer
	Defs  *symtab.Definitions
	Decls *symtab.Declarations
	Data  *data.Area
	Frame *frame.Manager
	Isel  *isel.Machine
	Gen   *codegen.Generator
}

// New returns a Compiler writing PAL-8 text to out and reporting
// diagnostics through r.
func New(out io.Writer, r *errs.Reporter) *Compiler {
	if r == nil {
		r = &errs.Reporter{}
	}

	w := asm.NewWriter(out)
	defs := symtab.NewDefinitions(r, w)
	decls := symtab.NewDeclarations(r)
	d := data.NewArea(r)
	fr := frame.NewManager(r, w, d, defs)
	m := isel.NewMachine(r, fr)
	gen := codegen.New(r, fr, m)

	return &Compiler{
		Errs:  r,
		Asm:   w,
		Defs:  defs,
		Decls: decls,
		Data:  d,
		Frame: fr,
		Isel:  m,
		Gen:   gen,
	}
}

// Finish emits the end-of-compilation sequence: the data area, the
// standard-library symbol mapping, and the final END/$ markers.
//
// main is the expr naming the program's entry point (usually obtained via
// Defs.Define("main")).
func (c *Compiler) Finish(main *value.Expr) {
	c.Data.DumpData(c.Asm)

	c.Asm.Label("MAIN=")
	c.Frame.Emitl(main)

	for _, name := range runtimeNames {
		sym := c.Defs.Define(name)
		c.Asm.Label("L%04o=%.6s", value.Val(sym.Value), name)
		sym.Value &^= value.LMask
	}

	c.Asm.Label("END,")
	c.Asm.Endline()
	c.Asm.Instr("$")
}
