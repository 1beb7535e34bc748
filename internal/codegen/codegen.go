// Package codegen implements the high-level code-generation operations a
// front end drives directly: arithmetic and logic ops, control transfer,
// and the evaluation-stack push/pop pair, all layered on top of the
// instruction-selection state machine and the frame manager.
package codegen

import (
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/frame"
	"github.com/clausecker/pdp8c/internal/isel"
	"github.com/clausecker/pdp8c/internal/value"
)

// Generator ties together the optimizer (Machine) and the frame/emit
// backend (Manager) for one function body's worth of code.
//
// dirty tracks whether the most recent Push assigned AC to a stack slot
// without emitting the deposit yet; writeback issues that deposit at the
// points the front end needs the real machine and the simulated one to
// agree.
type Generator struct {
	errs  *errs.Reporter
	frame *frame.Manager
	isel  *isel.Machine

	dirty bool
}

// New returns a code generator reporting through r, spilling and emitting
// through fr, and folding instructions through m.
func New(r *errs.Reporter, fr *frame.Manager, m *isel.Machine) *Generator {
	return &Generator{errs: r, frame: fr, isel: m}
}

// writeback re-synchronizes AC with the stack slot a deferred Push wrote
// it to: it deposits the deferred AC contents, then reloads them, so
// that the instruction selector's simulated AcState matches what the
// slot actually holds once the deferred window is finally flushed.
func (g *Generator) writeback() {
	if !g.dirty {
		return
	}

	e := g.isel.AcState
	g.isel.Select(isel.Dca, &e)
	g.dirty = false
	g.isel.Select(isel.Tad, &e)
}

// And computes AC <- AC & e. Operands are passed through unspilled: the
// instruction selector needs to see raw constants to fold them, and
// only the emitter (frame.Manager.EmitIsn) spills an operand, at the
// point it is actually about to be written into an instruction.
func (g *Generator) And(e *value.Expr) {
	if e.Value == value.RConst|07777 {
		// ANDing with all ones is the identity.
		return
	}

	g.writeback()

	if e.Value == value.RConst|0 {
		g.Opr(int(isel.Cla))
		return
	}

	g.isel.Select(isel.And, e)
}

// Tad computes AC <- AC + e (two's complement, affecting L on overflow).
func (g *Generator) Tad(e *value.Expr) {
	if e.Value == value.RConst|0 {
		// adding zero changes nothing.
		return
	}

	g.writeback()
	g.isel.Select(isel.Tad, e)
}

// Isz increments e and skips the following instruction if the result is 0.
func (g *Generator) Isz(e *value.Expr) {
	g.writeback()
	g.isel.Select(isel.Isz, e)
}

// Dca deposits AC into e and clears AC.
func (g *Generator) Dca(e *value.Expr) {
	g.writeback()
	g.isel.Select(isel.Dca, e)
}

// Jms calls the subroutine named by e. A call always leaves AC and L in an
// unknown state, since the callee is opaque to the optimizer.
func (g *Generator) Jms(e *value.Expr) {
	g.Catchup()
	g.isel.Select(isel.Jms, e)
	g.isel.AcRandom()
}

// Jmp transfers control unconditionally to e.
func (g *Generator) Jmp(e *value.Expr) {
	g.writeback()
	g.isel.Select(isel.Jmp, e)
}

// Opr emits a microcoded group-1/group-2 instruction built from op's bits.
func (g *Generator) Opr(op int) {
	if isel.Opcode(op) != isel.Nop && isel.Opcode(op) != isel.Nop|isel.Opr2 {
		g.writeback()
	}
	g.isel.Select(isel.Opcode(op), nil)
}

// Lda loads e into AC, eliding the load entirely if AC is already known
// to hold e's value.
func (g *Generator) Lda(e *value.Expr) {
	if g.isel.AcState.Value == e.Value {
		return
	}

	g.Opr(int(isel.Cla))
	g.isel.Select(isel.Tad, e)
	g.isel.LAny()
}

// LdConst loads a compile-time-known constant into AC.
func (g *Generator) LdConst(c int) {
	e := value.Expr{Value: value.RConst | uint16(c)&07777}
	g.Lda(&e)
}

// AcClear forces AC to a known value of 0, marks L as don't-care, and
// discards any still-deferred instructions along with them.
func (g *Generator) AcClear() {
	g.dirty = false
	g.isel.Reset()
}

// AcRandom marks AC's value as unknown, e.g. after a call whose return
// value the caller doesn't care about. Used before emitting raw text the
// optimizer can't reason about, so any pending deposit must reach the
// stack slot first.
func (g *Generator) AcRandom() {
	g.writeback()
	g.isel.AcRandom()
}

// Catchup flushes the deferred instruction window and reconverges L's
// value, used at points the front end needs the real machine state to
// match the simulated one (labels, end of statement, function return).
func (g *Generator) Catchup() {
	g.writeback()
	g.isel.Catchup()
}

// Push saves AC to a new evaluation-stack slot and writes an expr naming
// it into e, so that AC is free to hold a second operand. If AC is
// already known to hold some value other than a stack slot, the save is
// elided entirely: e is set to describe that value directly, and the
// caller can use it in place of a fresh slot.
func (g *Generator) Push(e *value.Expr) {
	if g.isel.AcState.Value != value.Random && !value.OnStack(g.isel.AcState.Value) {
		*e = g.isel.AcState
		return
	}

	g.writeback()
	*e = g.frame.EmitPush()
	g.isel.AcState = *e
	g.dirty = true
	g.isel.LAny()
}

// ForcePush is like Push, but always emits the save even if AC is
// already known to equal a non-stack location (used when the pushed
// value must live at a stable address across a call).
func (g *Generator) ForcePush(e *value.Expr) {
	g.AcRandom()
	g.Push(e)
}

// Pop releases the stack slot e names. If AC is still known to hold
// exactly that slot's value, the pending writeback is dropped instead of
// flushed, since whatever reads e next will get the right value anyway.
func (g *Generator) Pop(e *value.Expr) {
	if g.isel.AcState.Value == e.Value {
		g.dirty = false
	}
	g.frame.EmitPop(e)
}

// Ret transfers control to the function's epilogue.
func (g *Generator) Ret() {
	g.Jmp(g.frame.RetLabel())
}
