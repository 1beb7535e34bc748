// Package frame implements the call-frame and register-spill manager: it
// allocates zero-page scratch registers for values the optimizer can't
// keep in the simulated AC, tracks the evaluation stack, and emits
// function prologues/epilogues.
package frame

import (
	"fmt"
	"strings"

	"github.com/clausecker/pdp8c/internal/asm"
	"github.com/clausecker/pdp8c/internal/data"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/isel"
	"github.com/clausecker/pdp8c/internal/symtab"
	"github.com/clausecker/pdp8c/internal/value"
)

// Zero-page layout, ported from param.h.
const (
	NZeroPage  = 00200
	MinScratch = 00030
	NScratch   = NZeroPage - MinScratch
)

// Manager owns the per-function frame state: the frame/param/stack/auto/
// return labels, the scratch-register template, and the evaluation stack.
type Manager struct {
	errs *errs.Reporter
	asm  *asm.Writer
	data *data.Area
	defs *symtab.Definitions

	frameLabel value.Expr
	paramLabel value.Expr
	stackLabel value.Expr
	autoLabel  value.Expr
	retLabel   value.Expr

	stackSize int
	tos       int // -1 when the stack is empty

	nParam, nAuto, nFrame int
	frameTmpl             [NScratch]uint16
}

// NewManager returns a frame manager writing through w, spilling
// constants into d, registering labels with defs, and reporting errors
// through r.
func NewManager(r *errs.Reporter, w *asm.Writer, d *data.Area, defs *symtab.Definitions) *Manager {
	return &Manager{errs: r, asm: w, data: d, defs: defs, tos: -1}
}

// Spill allocates a zero-page frame register for e and returns it. If e
// already names a zero-page location (RValue/LValue/RStack/LStack), it is
// returned unchanged; a small-enough LConst is returned as the RValue
// naming the same zero-page cell.
func (m *Manager) Spill(e *value.Expr) value.Expr {
	v := e.Value

	switch value.Class(v) {
	case value.RValue, value.LValue, value.RStack, value.LStack:
		return *e

	case value.LConst:
		if value.Val(v) < NZeroPage {
			return value.Expr{Value: value.RValue | value.Val(v), Name: e.Name}
		}
	}

	payload := v &^ value.LMask
	i := -1
	for idx := 0; idx < m.nFrame; idx++ {
		if m.frameTmpl[idx] == payload {
			i = idx
			break
		}
	}

	if i < 0 {
		if m.nFrame >= NScratch {
			m.errs.Fatal("", "frame overflow")
		}
		i = m.nFrame
		m.frameTmpl[m.nFrame] = payload
		m.nFrame++
	}

	return value.Expr{Value: uint16(MinScratch+i) | value.RValue | v&value.LMask}
}

// lstr formats the address of e as needed by Emitl. e must be LConst,
// RValue, LLabel, LData, RStack, LAuto, or LParam.
func (m *Manager) lstr(e *value.Expr) string {
	v := e.Value

	switch value.Class(v) {
	case value.LConst, value.RValue:
		return fmt.Sprintf("%04o", value.Val(v))

	case value.LLabel:
		return fmt.Sprintf("L%04o", value.Val(v))

	case value.LData:
		return fmt.Sprintf("DATA+%04o", value.Val(v))

	case value.RStack:
		return fmt.Sprintf("L%04o+%03o", value.Val(m.stackLabel.Value), value.Val(v))

	case value.LAuto:
		return fmt.Sprintf("L%04o+%03o", value.Val(m.autoLabel.Value), value.Val(v))

	case value.LParam:
		return fmt.Sprintf("L%04o+%03o", value.Val(m.paramLabel.Value), value.Val(v))

	default:
		m.errs.Fatal(e.Name, "invalid arg to lstr: %06o", v)
		return ""
	}
}

// Emitl emits the address of e as an instruction operand (used for
// function-pointer style references, not indirection).
func (m *Manager) Emitl(e *value.Expr) {
	switch value.Class(e.Value) {
	case value.RConst, value.RLabel, value.RData, value.RAuto, value.RParam:
		var spilled value.Expr
		m.data.Literal(&spilled, int(e.Value))
		e = &spilled
	}

	m.asm.Instr("%s", m.lstr(e))
}

// Emitr emits the value of e by printing the address string of its
// corresponding lvalue. Nothing is spilled into the data area.
func (m *Manager) Emitr(e *value.Expr) {
	switch value.Class(e.Value) {
	case value.RConst, value.RLabel, value.RData, value.RAuto, value.RParam:
		le := value.R2LVal(e)
		m.asm.Instr("%s", m.lstr(&le))
	default:
		m.errs.Fatal(e.Name, "invalid arg to Emitr: %06o", e.Value)
	}
}

// arg turns e into a string suitable as a PDP-8 instruction operand,
// spilling it to a zero-page register first if needed.
func (m *Manager) arg(e *value.Expr) string {
	sp := m.Spill(e)
	if value.IsLVal(sp.Value) {
		rv := value.L2RVal(&sp)
		return "I " + m.lstr(&rv)
	}
	return m.lstr(&sp)
}

// opr1 builds the mnemonic text for a group-1 microcoded instruction.
// Returns ("", false) if op has an unsupported combination of bits.
func opr1(op int) (string, bool) {
	var b strings.Builder

	glk := op&int(isel.Cla|isel.Cma|isel.Rar|isel.Ral|isel.Bsw) == int(isel.Glk)

	switch op & (int(isel.Cla) | int(isel.Cma)) {
	case int(isel.Cla):
		if glk {
			b.WriteString("GLK ")
		} else {
			b.WriteString("CLA ")
		}
	case int(isel.Cma):
		b.WriteString("CMA ")
	case int(isel.Sta):
		b.WriteString("STA ")
	}

	switch op & (int(isel.Cll) | int(isel.Cml)) {
	case int(isel.Cll):
		b.WriteString("CLL ")
	case int(isel.Cml):
		b.WriteString("CML ")
	case int(isel.Stl):
		b.WriteString("STL ")
	}

	if op&int(isel.Iac) == int(isel.Iac) {
		b.WriteString("IAC ")
	}

	if op&(int(isel.Ral)|int(isel.Rar)) == (int(isel.Ral) | int(isel.Rar)) {
		return "", false
	}

	rots := [8]string{"", "BSW ", "RAL ", "RTL ", "RAR ", "RTR ", "", ""}
	if !glk {
		b.WriteString(rots[op>>1&7])
	}

	return b.String(), true
}

// opr2 builds the mnemonic text for a group-2 microcoded instruction.
func opr2(op int) (string, bool) {
	mnemo := [2][3]string{
		{"SNL ", "SZA ", "SMA "},
		{"SZL ", "SNA ", "SPA "},
	}
	skp := 0
	if op&int(isel.Skp) == int(isel.Skp) {
		skp = 1
	}

	var b strings.Builder
	for i := 0; i < 3; i++ {
		if op&(00020<<i) != 0 {
			b.WriteString(mnemo[skp][i])
		}
	}

	if op&(int(isel.Spa)|int(isel.Sna)|int(isel.Szl)) == int(isel.Skp) {
		b.Reset()
		b.WriteString("SKP ")
	}

	if op&int(isel.Cla) == int(isel.Cla) {
		b.WriteString("CLA ")
	}

	return b.String(), true
}

// EmitPush allocates a new stack slot and returns an RStack expr naming
// the value now living there. It grows the frame's high-water mark
// (stackSize) if needed and reports a recoverable error on overflow.
func (m *Manager) EmitPush() value.Expr {
	m.tos++
	if m.tos >= m.stackSize {
		m.stackSize = m.tos + 1
		if m.stackSize > NScratch {
			m.errs.Error("", "stack overflow")
		}
	}
	return value.Expr{Value: value.RStack | uint16(m.tos)}
}

// EmitPop releases the stack slot e refers to and marks it Expired. It
// is a no-op if e isn't on the stack at all. Popping anything but the
// current top of stack is a compiler-internal bug, not a recoverable
// condition, since stack discipline is strictly LIFO.
func (m *Manager) EmitPop(e *value.Expr) {
	if !value.OnStack(e.Value) {
		return
	}

	if int(value.Val(e.Value)) != m.tos {
		m.errs.Fatal("", "can only pop top of stack")
	}
	m.tos--

	e.Value = value.Expired
}

// RetLabel returns the function's return label, so the high-level op
// layer can jump to it the same way it jumps anywhere else.
func (m *Manager) RetLabel() *value.Expr {
	return &m.retLabel
}

// NewFrame resets per-function state and emits the function's prologue.
func (m *Manager) NewFrame(fun *value.Expr) {
	m.defs.NewLabel(&m.frameLabel)
	m.defs.NewLabel(&m.paramLabel)
	m.defs.NewLabel(&m.stackLabel)
	m.defs.NewLabel(&m.autoLabel)
	m.defs.NewLabel(&m.retLabel)

	m.tos = -1
	m.stackSize = 0
	m.nParam = 0
	m.nAuto = 0
	m.nFrame = 0

	m.asm.Instr("0")
	m.asm.CommentName(fun.Name)
	m.asm.Instr("ENTER")
	m.Emitl(&m.frameLabel)
}

// NewParam allocates a new incoming-parameter slot and returns an LParam
// expr naming it.
func (m *Manager) NewParam() value.Expr {
	e := value.Expr{Value: value.LParam | uint16(m.nParam)}
	m.nParam++
	return e
}

// NewAuto allocates a new local-variable slot and returns an LAuto expr
// naming it.
func (m *Manager) NewAuto() value.Expr {
	e := value.Expr{Value: value.LAuto | uint16(m.nAuto)}
	m.nAuto++
	return e
}

// EndFrame emits the function's epilogue: the return label, the frame
// template (saved registers, spilled constants, incoming parameters, and
// local-variable storage).
func (m *Manager) EndFrame(fun *value.Expr) {
	m.defs.PutLabel(&m.retLabel)
	m.asm.Instr("LEAVE")
	m.Emitl(fun)
	m.asm.Blank()

	nSave := m.nFrame

	m.defs.SetLabel(&m.stackLabel)
	m.asm.Emitc(m.nFrame + MinScratch)

	m.defs.PutLabel(&m.frameLabel)

	m.asm.Emitc(-nSave)
	m.asm.Comment("SAVE REGISTERS")
	m.asm.Advance(nSave)

	if m.nParam > 0 {
		m.asm.Emitc(-m.nParam)
		m.asm.Comment("LOAD ARGUMENTS")
		m.defs.PutLabel(&m.paramLabel)
		m.asm.Advance(m.nParam)
	}

	m.asm.Emitc(-m.nFrame)
	m.asm.Comment("LOAD TEMPLATES")
	for i := 0; i < m.nFrame; i++ {
		tmpl := value.Expr{Value: m.frameTmpl[i]}
		m.Emitr(&tmpl)
	}

	if m.nAuto > 0 {
		m.defs.PutLabel(&m.autoLabel)
		m.asm.Advance(m.nAuto)
	}
}

// EmitIsn implements isel.Emitter: it renders a single selected
// instruction to the assembly stream.
func (m *Manager) EmitIsn(isn isel.Opcode, e *value.Expr) {
	switch isn & 07000 {
	case isel.Iot:
		m.errs.Fatal("", "IOT instructions are not supported")
		return

	case isel.Opr:
		m.EmitOpr(int(isn))
		return
	}

	mnemo := [8]string{"AND", "TAD", "ISZ", "DCA", "JMS", "JMP", "", ""}
	op := mnemo[isn>>9&7]

	isSkip := isn&07000 == isel.Isz

	if e != nil {
		m.asm.Instr("%s %s", op, m.arg(e))
		m.asm.CommentName(e.Name)
	} else {
		m.asm.Instr("%s", op)
	}

	if isSkip {
		m.asm.Skip()
	}
}

// EmitOpr emits the given OPR instruction's mnemonic text.
func (m *Manager) EmitOpr(op int) {
	op &= 07777

	var buf string
	succeeded := true

	switch {
	case op&int(isel.Opr1) != int(isel.Opr1):
		succeeded = false
	case op&00400 == 0:
		buf, succeeded = opr1(op)
	case op&00007 == 0:
		buf, succeeded = opr2(op)
	default:
		succeeded = false
	}

	if succeeded {
		buf = strings.TrimRight(buf, " ")
		if buf == "" {
			buf = "NOP"
		}
	} else {
		buf = fmt.Sprintf("%04o", op)
		m.errs.Warn(buf, "invalid OPR instruction")
	}

	m.asm.Instr("%s", buf)

	if succeeded && op&(int(isel.Sma)|int(isel.Sza)|int(isel.Snl)) > int(isel.Opr2) {
		m.asm.Skip()
	}
}
