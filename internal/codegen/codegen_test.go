package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/data"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/frame"
	"github.com/clausecker/pdp8c/internal/isel"
	"github.com/clausecker/pdp8c/internal/symtab"
	"github.com/clausecker/pdp8c/internal/value"
	"github.com/stretchr/testify/require"
)

func newGenerator(t *testing.T) (*Generator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := &errs.Reporter{Out: &buf, MaxErrors: 1000}
	w := asm.NewWriter(&buf)
	d := data.NewArea(r)
	defs := symtab.NewDefinitions(r, w)
	fr := frame.NewManager(r, w, d, defs)
	m := isel.NewMachine(r, fr)
	return New(r, fr, m), &buf
}

func TestLdConstThenCatchupEmitsLoad(t *testing.T) {
	g, buf := newGenerator(t)

	g.LdConst(5)
	g.Catchup()

	require.NotEmpty(t, buf.String())
}

func TestPushPopRoundTrip(t *testing.T) {
	g, buf := newGenerator(t)

	g.LdConst(3)

	var slot value.Expr
	g.ForcePush(&slot)
	require.Equal(t, value.RStack, value.Class(slot.Value))

	g.LdConst(4)
	g.Pop(&slot)
	g.Catchup()

	require.Equal(t, value.Expired, slot.Value)
	require.NotEmpty(t, buf.String())
}

func TestPushElidesSaveWhenAcAlreadyHoldsNonStackValue(t *testing.T) {
	g, _ := newGenerator(t)

	v := value.Expr{Value: value.RValue | 020}
	g.Tad(&v)

	var slot value.Expr
	g.Push(&slot)

	require.Equal(t, v.Value, slot.Value)
}

func TestRetFlushesAndJumps(t *testing.T) {
	g, buf := newGenerator(t)

	fn := value.Expr{Name: "f"}
	g.frame.NewFrame(&fn)

	g.Ret()
	require.Contains(t, buf.String(), "JMP")
}

func TestJmsMarksAcRandom(t *testing.T) {
	g, _ := newGenerator(t)

	fn := value.Expr{Value: value.RLabel | 3, Name: "foo"}
	g.Jms(&fn)
	require.Equal(t, value.Random, g.isel.AcState.Value)
}

// TestLdConstTwiceEmitsOneClaIac exercises the scenario that motivates
// lda's short-circuit: loading the same constant twice in a row must
// not repeat the CLA IAC sequence the second time around.
func TestLdConstTwiceEmitsOneClaIac(t *testing.T) {
	g, buf := newGenerator(t)

	g.LdConst(1)
	g.LdConst(1)
	g.Catchup()

	require.Equal(t, 1, strings.Count(buf.String(), "CLA"))
}

func TestAndAllOnesIsNoop(t *testing.T) {
	g, buf := newGenerator(t)

	e := value.Expr{Value: value.RConst | 07777}
	g.And(&e)
	g.Catchup()

	require.Empty(t, buf.String())
}

func TestAndZeroBecomesCla(t *testing.T) {
	g, buf := newGenerator(t)

	g.LdConst(5)
	g.Catchup()
	buf.Reset()

	e := value.Expr{Value: value.RConst | 0}
	g.And(&e)
	g.Catchup()

	require.Contains(t, buf.String(), "CLA")
}

func TestTadZeroIsNoop(t *testing.T) {
	g, buf := newGenerator(t)

	e := value.Expr{Value: value.RConst | 0}
	g.Tad(&e)
	g.Catchup()

	require.Empty(t, buf.String())
}
