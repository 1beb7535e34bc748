package data

import (
	"bytes"
	"testing"

	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/value"
	"github.com/stretchr/testify/require"
)

func TestLiteralDeduplicates(t *testing.T) {
	a := NewArea(&errs.Reporter{})

	var e1, e2 value.Expr
	a.Literal(&e1, 42)
	a.Literal(&e2, 42)

	require.Equal(t, e1.Value, e2.Value, "identical constants should share a data-area slot")
}

func TestLiteralDistinctValuesGetDistinctSlots(t *testing.T) {
	a := NewArea(&errs.Reporter{})

	var e1, e2 value.Expr
	a.Literal(&e1, 1)
	a.Literal(&e2, 2)

	require.NotEqual(t, e1.Value, e2.Value)
}

func TestDumpDataSkipsWhenEmpty(t *testing.T) {
	a := NewArea(&errs.Reporter{})
	var out bytes.Buffer
	w := asm.NewWriter(&out)

	a.DumpData(w)

	require.Empty(t, out.String())
}

func TestDumpDataEmitsLabelAndWords(t *testing.T) {
	a := NewArea(&errs.Reporter{})
	var out bytes.Buffer
	w := asm.NewWriter(&out)

	var e value.Expr
	a.Literal(&e, 0123)
	a.DumpData(w)

	got := out.String()
	require.Contains(t, got, "DATA,")
	require.Contains(t, got, "0123")
}

func TestLiteralMasksTo12Bits(t *testing.T) {
	a := NewArea(&errs.Reporter{})

	var e value.Expr
	a.Literal(&e, -1)
	require.Equal(t, a.words[value.Val(e.Value)], uint16(07777))
}
