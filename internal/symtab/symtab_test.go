package symtab

import (
	"bytes"
	"testing"

	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/value"
	"github.com/stretchr/testify/require"
)

func newDefs(t *testing.T) (*Definitions, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	w := asm.NewWriter(&out)
	r := &errs.Reporter{}
	return NewDefinitions(r, w), &out
}

func TestDefineIsIdempotent(t *testing.T) {
	defs, _ := newDefs(t)

	a := defs.Define("foo")
	b := defs.Define("foo")
	require.Same(t, a, b, "Define should return the same expr for a repeated name")

	c := defs.Define("bar")
	require.NotEqual(t, a.Value, c.Value, "distinct names must get distinct labels")
}

func TestPutLabelPrintsAndMarksPlaced(t *testing.T) {
	defs, out := newDefs(t)

	e := defs.Define("main")
	labelNo := value.Val(e.Value)
	defs.PutLabel(e)

	require.Contains(t, out.String(), "L")
	require.Equal(t, value.RLabel, value.Class(e.Value))
	require.Equal(t, labelNo, value.Val(e.Value))
}

func TestPutLabelTwiceIsAnError(t *testing.T) {
	var out bytes.Buffer
	w := asm.NewWriter(&out)
	r := &errs.Reporter{MaxErrors: 100}
	defs := NewDefinitions(r, w)

	e := defs.Define("main")
	defs.PutLabel(e)
	defs.PutLabel(e)

	errCount, _ := r.Counts()
	require.Equal(t, 1, errCount)
}

func TestDeclarationsScopeDiscipline(t *testing.T) {
	r := &errs.Reporter{}
	decls := NewDeclarations(r)

	outer := decls.BeginScope()
	decls.Declare(&value.Expr{Name: "x", Value: value.RAuto | 1})

	inner := decls.BeginScope()
	decls.Declare(&value.Expr{Name: "x", Value: value.RAuto | 2})
	require.NotNil(t, decls.Lookup("x"))
	require.Equal(t, uint16(value.RAuto|2), decls.Lookup("x").Value, "innermost declaration shadows outer ones")

	decls.EndScope(inner)
	require.Equal(t, uint16(value.RAuto|1), decls.Lookup("x").Value, "shadowing declaration is gone after EndScope")

	decls.EndScope(outer)
	require.Nil(t, decls.Lookup("x"))
}

func TestLookupMissingReturnsNil(t *testing.T) {
	decls := NewDeclarations(&errs.Reporter{})
	require.Nil(t, decls.Lookup("nope"))
}
