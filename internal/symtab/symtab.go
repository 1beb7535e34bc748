// Package symtab implements the two name tables used during code
// generation: a global, append-only table of definitions (function and
// global-variable names, each assigned a label) and a stack-disciplined
// table of declarations (local variables, scoped with begin/end markers).
package symtab

import (
	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/value"
)

// Capacity limits, ported from the original's param.h.
const (
	DefnSiz = 0400 // definition table size
	DeclSiz = 0040 // declaration table size
)

// Definitions is the global, append-only table of top-level names. Each
// name is assigned a fresh label the first time it is seen.
type Definitions struct {
	errs    *errs.Reporter
	asm     *asm.Writer
	defns   []value.Expr
	labelNo int
}

// NewDefinitions returns an empty definition table reporting through r and
// printing labels through w.
func NewDefinitions(r *errs.Reporter, w *asm.Writer) *Definitions {
	return &Definitions{errs: r, asm: w, defns: make([]value.Expr, 0, DefnSiz)}
}

// Define returns the expr associated with name, creating and assigning it
// a fresh label on first use.
func (d *Definitions) Define(name string) *value.Expr {
	for i := range d.defns {
		if d.defns[i].Name == name {
			return &d.defns[i]
		}
	}

	if len(d.defns) >= DefnSiz {
		d.errs.Fatal(name, "defn table full")
	}

	d.defns = append(d.defns, value.Expr{Name: name})
	e := &d.defns[len(d.defns)-1]
	d.NewLabel(e)
	return e
}

// NewLabel assigns e a fresh, as-yet-unplaced label.
func (d *Definitions) NewLabel(e *value.Expr) {
	e.Value = value.LLabel | uint16(d.labelNo)
	d.labelNo++
	if d.labelNo > 07777 {
		d.errs.Fatal(e.Name, "too many labels")
	}
}

// placeLabel places e's label in the assembly stream, suffixed with
// suffix (',' for an in-stream label, '=' for a symbolic equate). It is an
// error to place an already-placed label, and fatal to place a non-label.
//
// A freshly minted label (NewLabel) carries class LLabel; placement clears
// the lvalue bit, leaving class RLabel, so a second placement attempt is
// caught by the class check below. This differs from an inconsistency in
// the retrieved original sources, where an earlier draft's RUND/LUND
// "unplaced" classes do not exist in the final storage-class enum; see
// DESIGN.md for the resulting simplification.
func (d *Definitions) placeLabel(e *value.Expr, suffix byte) {
	if value.Class(e.Value) == value.RLabel {
		d.errs.Error(e.Name, "will not place label again")
		return
	}

	if value.Class(e.Value) != value.LLabel {
		d.errs.Fatal(e.Name, "not a label")
	}

	d.asm.Label("L%04o%c", value.Val(e.Value), suffix)
	e.Value &^= value.LMask
}

// PutLabel places e as an in-stream label ("L0001,").
func (d *Definitions) PutLabel(e *value.Expr) {
	d.placeLabel(e, ',')
}

// SetLabel places e as a symbolic equate ("L0001=").
func (d *Definitions) SetLabel(e *value.Expr) {
	d.placeLabel(e, '=')
}

// Declarations is the stack-disciplined table of local names, reset at
// each lexical scope boundary via BeginScope/EndScope.
type Declarations struct {
	errs  *errs.Reporter
	decls []value.Expr
}

// NewDeclarations returns an empty declaration table reporting through r.
func NewDeclarations(r *errs.Reporter) *Declarations {
	return &Declarations{errs: r, decls: make([]value.Expr, 0, DeclSiz)}
}

// Lookup returns the innermost declaration of name, or nil if none exists.
func (d *Declarations) Lookup(name string) *value.Expr {
	for i := len(d.decls) - 1; i >= 0; i-- {
		if d.decls[i].Name == name {
			return &d.decls[i]
		}
	}
	return nil
}

// Declare appends e to the declaration table, returning a pointer to the
// stored copy. Redeclaring a name already visible in the current scope is
// accepted silently; the new declaration simply shadows the old one in
// subsequent Lookup calls (see DESIGN.md, Open Question 1).
func (d *Declarations) Declare(e *value.Expr) *value.Expr {
	if len(d.decls) >= DeclSiz {
		d.errs.Fatal(e.Name, "decl table full")
	}

	d.decls = append(d.decls, *e)
	return &d.decls[len(d.decls)-1]
}

// BeginScope returns a marker for the current top of the declaration
// table, to be passed to a matching EndScope.
func (d *Declarations) BeginScope() int {
	return len(d.decls)
}

// EndScope discards all declarations made since the matching BeginScope.
func (d *Declarations) EndScope(scope int) {
	if scope < 0 || scope > len(d.decls) {
		d.errs.Fatal("", "invalid scope")
	}

	d.decls = d.decls[:scope]
}
