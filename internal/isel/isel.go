package isel

import (
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/value"
)

// Bits of acState.known.
const (
	lKnown = 1 << 0 // L is known to hold the value in lac
	lAny   = 1 << 1 // we don't care what value L holds
	acKnown = 1 << 2 // AC is known to hold the value in lac
)

// acState is the content of the L:AC register together with what we know
// about it.
type acState struct {
	lac   uint16
	known uint8
}

// MaxDefer bounds the number of instructions the optimizer will hold back
// before being forced to flush them.
const MaxDefer = 10

type deferredInsn struct {
	op Opcode
	e  value.Expr
}

// skipState tracks whether we are immediately after a conditional-skip
// instruction, and if so, what we know about whether it skips.
type skipState int

const (
	normal   skipState = iota // not following a skip instruction
	doSkip                    // following a skip found to perform a skip
	skipable                  // following a skip that may or may not skip
	skipFwd                   // forward condition to the next skip instruction
)

// Emitter is implemented by the layer that actually prints instructions
// (internal/frame.Manager.EmitIsn in this repository).
type Emitter interface {
	EmitIsn(op Opcode, e *value.Expr)
}

// Machine is the instruction-selection state machine for a single
// compilation. It replaces the original's file-scope have/want/deferred/
// skipstate statics.
type Machine struct {
	errs *errs.Reporter
	emit Emitter

	have, want acState
	deferred   [MaxDefer]deferredInsn
	ndefer     int
	skipstate  skipState

	// AcState is the expr currently believed to be loaded into AC, or
	// Random if unknown. The high-level op layer (internal/codegen)
	// reads and writes this directly, mirroring the original's global
	// acstate variable.
	AcState value.Expr
}

var (
	zeroExpr    = value.Expr{Value: value.RConst | 0}
	randomExpr  = value.Expr{Value: value.Random}
	invalidExpr = value.Expr{Value: value.Invalid}
)

// NewMachine returns a freshly reset instruction-selection state machine
// emitting through emit and reporting through r.
func NewMachine(r *errs.Reporter, emit Emitter) *Machine {
	m := &Machine{errs: r, emit: emit}
	m.Reset()
	return m
}

// Reset discards all deferred state and returns the machine to its
// initial state: AC is assumed to hold zero, L is unknown.
func (m *Machine) Reset() {
	m.AcState = zeroExpr
	m.ndefer = 0
	m.want = acState{lac: 0, known: lAny | acKnown}
	m.have = m.want
	m.skipstate = normal
}

// AcRandom marks the AC as holding an unknown value, after flushing any
// deferred instructions.
func (m *Machine) AcRandom() {
	m.AcState = randomExpr
	m.want.known = lAny
	m.undefer()
}

// LAny tells the optimizer that the value of L no longer matters,
// allowing it to pick whichever reconvergence is cheapest.
func (m *Machine) LAny() {
	m.want.known |= lAny
	if m.skipstate == normal {
		m.fold()
	}
}

// peelopr extracts one microinstruction from *op, in a fixed priority
// order, clearing it from *op. It returns Nop once no more bits remain.
func peelopr(op *int) Opcode {
	opr1tab := []int{int(Cla), int(Cll), int(Cma), int(Cml), int(Iac), int(Rtr | Rtl), 0}
	opr2tab := []int{int(Sma), int(Sza), int(Snl), int(Skp), int(Cla), 0}

	tab := opr1tab
	if *op&00400 != 0 {
		tab = opr2tab
	}

	for _, bits := range tab {
		if bits == 0 {
			break
		}
		uop := *op & bits
		if uop&00377 != 0 {
			*op = *op&^bits | *op&07400
			return Opcode(uop)
		}
	}

	return Nop
}

// undefer emits every deferred instruction in order and resets the
// deferred list, committing have to want.
func (m *Machine) undefer() {
	for i := 0; i < m.ndefer; i++ {
		m.emit.EmitIsn(m.deferred[i].op, &m.deferred[i].e)
	}
	m.ndefer = 0
	m.have = m.want
}

// defer pushes op/e onto the list of deferred instructions, flushing
// first if the list is full (which should never happen in practice).
func (m *Machine) defer_(op Opcode, e *value.Expr) {
	if m.ndefer == MaxDefer {
		m.errs.Warn("", "defer stack overflow")
		m.undefer()
	}

	ee := invalidExpr
	if e != nil {
		ee = *e
	}
	m.deferred[m.ndefer] = deferredInsn{op: op, e: ee}
	m.ndefer++
}
