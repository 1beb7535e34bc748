// Package isel implements the L:AC instruction-selection state machine:
// a deferred-execution peephole optimizer that simulates the accumulator
// and link bit symbolically, batching up to MaxDefer instructions and
// reconverging them into a minimal instruction sequence whenever their
// combined effect becomes observable.
package isel

// Opcode identifies a PDP-8 instruction (the 3 high bits of the word) or
// one of the pseudo-instructions used internally by the optimizer.
type Opcode uint16

// Real PDP-8 opcodes.
const (
	And Opcode = 00000 // bitwise and
	Tad Opcode = 01000 // two's complement add
	Isz Opcode = 02000 // increment and skip if zero
	Dca Opcode = 03000 // deposit and clear AC
	Jms Opcode = 04000 // jump subroutine
	Jmp Opcode = 05000 // jump
	Iot Opcode = 06000 // IO transfer (not supported)
	Opr Opcode = 07000 // operate (microcoded instructions)
)

// Pseudo-instructions, for internal bookkeeping only; never emitted.
const (
	Lda Opcode = 006000 // load AC, set L to an undefined value
	Cup Opcode = 010000 // catch up
	Rst Opcode = 011000 // discard deferred state, clear AC
	Rnd Opcode = 012000 // mark AC state as unknown
	Liv Opcode = 013000 // set L to an indeterminate value
)

// Microcoded (OPR) instructions. As on a real PDP-8, group 1 and group 2
// micro-instructions may not be mixed except for CLA; group 3, OSR, and
// HLT are not supported.
const (
	Opr1 = Opr | 00000
	Cla  = Opr1 | 00200 // clear AC
	Cll  = Opr1 | 00100 // clear L
	Cma  = Opr1 | 00040 // complement AC
	Cml  = Opr1 | 00020 // complement L
	Rar  = Opr1 | 00010 // rotate AC right
	Ral  = Opr1 | 00004 // rotate AC left
	Bsw  = Opr1 | 00002 // byte swap / rotate twice
	Iac  = Opr1 | 00001 // increment AC

	Nop = Opr1 | 00000 // no operation
	Rtr = Rar | Bsw     // rotate twice right
	Rtl = Ral | Bsw     // rotate twice left
	Sta = Cla | Cma     // set AC
	Stl = Cll | Cml     // set L
	Cia = Cma | Iac     // complement and increment AC (negate AC)
	Glk = Cla | Ral     // get link

	Opr2 = Opr | 00400
	Sma  = Opr2 | 00100 // skip on minus AC
	Sza  = Opr2 | 00040 // skip on zero AC
	Snl  = Opr2 | 00020 // skip on nonzero L
	Skp  = Opr2 | 00010 // reverse skip condition

	Spa = Skp | Sma // skip on positive AC
	Sna = Skp | Sza // skip on nonzero AC
	Szl = Skp | Snl // skip on zero L

	Osr = Opr2 | 00004 // or switch register (not supported)
	Hlt = Opr2 | 00002 // halt (not supported)

	Opr3 = Opr2 | 00001 // group 3 (not supported)
)
