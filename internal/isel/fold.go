package isel

import "github.com/clausecker/pdp8c/internal/value"

// Each row is {lac, firstInstr, secondInstr}; secondInstr is 0 if the
// sequence is only one instruction long. A 0 firstInstr row terminates
// the table.
type seqRow [3]int

var seq1preservel = []seqRow{
	{00000, int(Cla), 0},
	{00001, int(Cla | Iac), 0},
	{07777, int(Sta), 0},
	{00000, 0, 0},
}

var seq1clearl = []seqRow{
	{00000, int(Cla | Cll), 0},
	{00001, int(Cla | Cll | Iac), 0},
	{00002, int(Cla | Stl | Rtl), 0},
	{00003, int(Cla | Stl | Iac | Ral), 0},
	{00004, int(Cla | Cll | Iac | Rtl), 0},
	{00006, int(Cla | Stl | Iac | Rtl), 0},
	{02000, int(Cla | Stl | Rtr), 0},
	{04000, int(Cla | Stl | Rar), 0},
	{06000, int(Cla | Stl | Iac | Rtr), 0},
	{07777, int(Sta | Cll), 0},
	{00000, 0, 0},
}

var seq1setl = []seqRow{
	{00000, int(Cla | Stl), 0},
	{00001, int(Cla | Stl | Iac), 0},
	{04000, int(Cla | Stl | Iac | Rar), 0},
	{03777, int(Sta | Cll | Rar), 0},
	{05777, int(Sta | Cll | Rtr), 0},
	{07775, int(Sta | Cll | Rtl), 0},
	{07776, int(Sta | Cll | Ral), 0},
	{07777, int(Sta | Stl), 0},
	{00000, 0, 0},
}

var seq2preservel = []seqRow{
	{00002, int(Cla | Iac), int(Iac)},
	{00003, int(Cla | Iac | Rar), int(Iac | Ral)},
	{00004, int(Cla | Rtr), int(Iac | Rtl)},
	{00006, int(Cla | Rtr), int(Stl | Iac | Rtl)},
	{02000, int(Cla | Rtl), int(Stl | Rtr)},
	{03777, int(Sta | Ral), int(Cll | Rar)},
	{04000, int(Cla | Ral), int(Stl | Rar)},
	{06000, int(Cla | Rtl), int(Stl | Iac | Rtr)},
	{05777, int(Sta | Rtl), int(Cll | Rtr)},
	{07775, int(Sta | Rtr), int(Cll | Rtl)},
	{07776, int(Sta | Rar), int(Cll | Ral)},
	{00000, 0, 0},
}

// No curated 2-instruction sequence exists for clearl/setl; these mirror
// the original's dummyseq aliases, which findseq always treats as empty.
var seq2clearl = []seqRow{{0, 0, 0}}
var seq2setl = []seqRow{{0, 0, 0}}

// findseq looks for a sequence producing lac in L:AC, defers it, and
// reports whether it found one.
func (m *Machine) findseq(seq []seqRow, lac int) bool {
	for _, row := range seq {
		if row[1] == 0 {
			break
		}
		if row[0] == lac {
			m.defer_(Opcode(row[1]), nil)
			if row[2] != 0 {
				m.defer_(Opcode(row[2]), nil)
			}
			return true
		}
	}
	return false
}

// fold assumes the deferred instructions only compute constants, and
// reconverges have into want using at most two instructions, choosing
// among ten strategies from cheapest (a no-op) to most general
// (CLA+TAD).
//
// Invariant: if acKnown or lKnown are set in have, they are also set in
// want.
func (m *Machine) fold() {
	var preservel, flipl, clearl, setl bool

	m.ndefer = 0

	wantac := int(m.want.lac) & 07777
	haveac := int(m.have.lac) & 07777
	acknown := m.have.known&acKnown != 0

	switch {
	case m.want.known&lAny != 0:
		preservel, flipl, clearl, setl = true, true, true, true
	case m.want.known&lKnown != 0:
		if m.want.lac&010000 != 0 {
			setl = true
		} else {
			clearl = true
		}

		if m.have.known&lKnown != 0 {
			if m.have.lac&010000 == m.want.lac&010000 {
				preservel = true
			} else {
				flipl = true
			}
		}
	default:
		preservel = true
	}

	// AC already set up?
	if m.want.known&acKnown == 0 || acknown && wantac == haveac {
		if !preservel {
			op := Cll
			if m.want.lac&010000 != 0 {
				op = Stl
			}
			m.defer_(op, nil)
		}
		return
	}

	// strategies 1-3: 1-instruction OPR sequences
	if clearl && m.findseq(seq1clearl, wantac) {
		m.want.known |= lKnown
		m.want.lac &^= 010000
		return
	}
	if setl && m.findseq(seq1setl, wantac) {
		m.want.known |= lKnown
		m.want.lac |= 010000
		return
	}
	if !setl && !clearl && preservel && m.findseq(seq1preservel, wantac) {
		return
	}

	// strategies 4-6: 2-instruction OPR sequences
	if clearl && m.findseq(seq2clearl, wantac) {
		m.want.known |= lKnown
		m.want.lac &^= 010000
		return
	}
	if setl && m.findseq(seq2setl, wantac) {
		m.want.known |= lKnown
		m.want.lac |= 010000
		return
	}
	if !setl && !clearl && preservel && m.findseq(seq2preservel, wantac) {
		return
	}

	// strategies 7-9: 1-instruction TAD/AND sequences
	if acknown && preservel && haveac <= wantac {
		e := value.Expr{Value: value.RConst | uint16(wantac-haveac)&07777}
		m.defer_(Tad, &e)
		m.want.lac = uint16(wantac) | m.have.lac&010000
		return
	}
	if acknown && flipl && haveac > wantac {
		e := value.Expr{Value: value.RConst | uint16(wantac-haveac)&07777}
		m.defer_(Tad, &e)
		m.want.lac = uint16(wantac) | ^m.have.lac&010000
		return
	}
	if acknown && preservel && (^haveac&wantac)&07777 == 0 {
		e := value.Expr{Value: value.RConst | uint16(wantac)}
		m.defer_(And, &e)
		m.want.lac = uint16(wantac) | m.have.lac&010000
		return
	}

	// strategy 10: just do whatever is needed
	switch {
	case clearl:
		m.defer_(Cla|Cll, nil)
	case setl:
		m.defer_(Cla|Stl, nil)
	default:
		m.defer_(Cla, nil)
	}

	e := value.Expr{Value: value.RConst | uint16(wantac)}
	m.defer_(Tad, &e)
}
