package isel

import "github.com/clausecker/pdp8c/internal/value"

// Select is the top-level entry point: it simulates op's effect on the
// L:AC register, deferring it when profitable and emitting when not,
// dispatching on the current skip-sequence state.
func (m *Machine) Select(op Opcode, e *value.Expr) {
	switch m.skipstate {
	case doSkip:
		// discard the skip and the current instruction if possible
		if m.ndefer != 0 {
			m.ndefer--
			m.skipstate = normal
			return
		}

		// if the skip instruction has already been emitted, treat op
		// like a skippable instruction.
		m.skipsel(op, e)

	case skipable:
		m.skipsel(op, e)

	case skipFwd:
		// discard SZA|CLA / SNA|CLA if possible
		if m.ndefer < 2 {
			m.skipstate = normal
			m.normalsel(op, e)
			return
		}

		switch op {
		case Sza | Cla:
			if m.ndefer < 1 {
				m.skipstate = normal
				m.normalsel(op, e)
				return
			}

		case Sna | Cla:
			// can only toggle if a skip instruction was deferred
			if m.ndefer < 2 || m.deferred[m.ndefer-2].op&Opr2 != Opr2 {
				m.skipstate = normal
				m.normalsel(op, e)
				return
			}

			// toggle skip condition
			m.deferred[m.ndefer-2].op ^= 00010

		default:
			m.skipstate = normal
			m.normalsel(op, e)
			return
		}

		// record the effect of CLA
		m.AcState = zeroExpr
		m.want.known |= acKnown
		m.want.lac &^= 07777

		// discard (CLA) IAC and the current skip
		m.ndefer--

	case normal:
		m.normalsel(op, e)
	}
}

// Undefer flushes any deferred instructions immediately.
func (m *Machine) Undefer() {
	m.undefer()
}

// Catchup makes the actual machine state equal the simulated state by
// flushing the deferred list and reconverging L's value if possible.
func (m *Machine) Catchup() {
	m.LAny()
	m.undefer()
}
