// Package data implements the compiler's constant data area: a
// deduplicating pool of 12-bit words, dumped as a single DATA block at
// the end of compilation.
package data

import (
	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/value"
)

// DataSiz is the maximum number of words the data area can hold.
const DataSiz = 01000

// Area is the constant data pool for a single compilation.
type Area struct {
	errs  *errs.Reporter
	words []uint16
}

// NewArea returns an empty data area reporting through r.
func NewArea(r *errs.Reporter) *Area {
	return &Area{errs: r}
}

// ToData appends c, masked to 12 bits, to the data area unconditionally.
func (a *Area) ToData(c int) {
	if len(a.words) >= DataSiz {
		a.errs.Fatal("", "data area full")
	}
	a.words = append(a.words, uint16(c&07777))
}

// NewData returns an expr referring to the next free data-area slot,
// without reserving it: the caller is expected to fill the slot via
// ToData immediately after.
func (a *Area) NewData(e *value.Expr) {
	e.Value = value.LData | uint16(len(a.words))
}

// Literal returns (via e) an expr referring to a data-area slot holding
// the constant c, allocating one if an existing slot does not already
// hold that value.
func (a *Area) Literal(e *value.Expr, c int) {
	c &= 07777
	for i, w := range a.words {
		if int(w) == c {
			e.Value = value.LData | uint16(i)
			return
		}
	}

	idx := len(a.words)
	a.ToData(c)
	e.Value = value.LData | uint16(idx)
}

// DumpData writes the data area as a single DATA block, or nothing if the
// area is empty.
func (a *Area) DumpData(w *asm.Writer) {
	if len(a.words) == 0 {
		return
	}

	w.Label("DATA,")
	for _, word := range a.words {
		w.Emitc(int(word))
	}
	w.Blank()
}
