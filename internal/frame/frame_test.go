package frame

import (
	"bytes"
	"testing"

	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/data"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/symtab"
	"github.com/clausecker/pdp8c/internal/value"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r := &errs.Reporter{Out: &buf, MaxErrors: 1000}
	w := asm.NewWriter(&buf)
	d := data.NewArea(r)
	defs := symtab.NewDefinitions(r, w)
	return NewManager(r, w, d, defs), &buf
}

func TestSpillPassesThroughZeroPageValues(t *testing.T) {
	m, _ := newManager(t)

	e := value.Expr{Value: value.RValue | 020}
	got := m.Spill(&e)
	require.Equal(t, e, got)
}

func TestSpillSmallConstantBecomesDirect(t *testing.T) {
	m, _ := newManager(t)

	e := value.Expr{Value: value.LConst | 5}
	got := m.Spill(&e)
	require.Equal(t, value.RValue, value.Class(got.Value))
	require.Equal(t, uint16(5), value.Val(got.Value))
}

func TestSpillDeduplicatesRepeatedValues(t *testing.T) {
	m, _ := newManager(t)

	e1 := value.Expr{Value: value.RConst | 0777}
	e2 := value.Expr{Value: value.RConst | 0777}

	got1 := m.Spill(&e1)
	got2 := m.Spill(&e2)

	require.Equal(t, got1, got2)
	require.Equal(t, 1, m.nFrame)
}

func TestPushPopLIFO(t *testing.T) {
	m, _ := newManager(t)

	s0 := m.EmitPush()
	s1 := m.EmitPush()
	require.NotEqual(t, s0, s1)
	require.Equal(t, 2, m.stackSize)

	m.EmitPop(&s1)
	require.Equal(t, value.Expired, s1.Value)
	m.EmitPop(&s0)
	require.Equal(t, -1, m.tos)
}

func TestEmitPopOffTopOfStackIsFatal(t *testing.T) {
	m, _ := newManager(t)

	s0 := m.EmitPush()
	_ = m.EmitPush()

	defer func() {
		r := recover()
		require.IsType(t, errs.Fatal{}, r)
	}()

	m.EmitPop(&s0)
}

func TestEmitPopOfNonStackValueIsNoop(t *testing.T) {
	m, _ := newManager(t)

	e := value.Expr{Value: value.RValue | 020}
	m.EmitPop(&e)
	require.Equal(t, value.RValue|uint16(020), e.Value)
}

func TestEmitOprNopProducesNop(t *testing.T) {
	m, buf := newManager(t)
	m.EmitOpr(07000)
	require.Contains(t, buf.String(), "NOP")
}

func TestEmitOprClaIac(t *testing.T) {
	m, buf := newManager(t)
	m.EmitOpr(07201) // CLA IAC
	require.Contains(t, buf.String(), "CLA")
	require.Contains(t, buf.String(), "IAC")
}

func TestEmitOprInvalidCombinationWarns(t *testing.T) {
	m, _ := newManager(t)
	m.EmitOpr(07014) // RAR and RAL both set: invalid
	_, warnings := m.errs.Counts()
	require.Equal(t, 1, warnings)
}
