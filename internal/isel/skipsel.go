package isel

import "github.com/clausecker/pdp8c/internal/value"

// skipsel selects instructions while skipstate is skipable: the
// optimizer emits op unchanged (it cannot defer across a skip whose
// outcome isn't yet known) but still tries to record op's effect on
// want for use once the skip is resolved.
func (m *Machine) skipsel(op Opcode, e *value.Expr) {
	affectsLac := false
	acIsClear := m.want.known&acKnown != 0 && m.want.lac&07777 == 0

	// Is this a skip + IAC sequence? If so, forward the condition.
	if Opcode(int(op)&^00200) == Iac && (acIsClear || op&00200 != 0) {
		m.skipstate = skipFwd
		m.AcState = randomExpr
		m.want.known = 0
		m.defer_(op, e)
		return
	}

	m.skipstate = normal

	switch op & 07000 {
	case Tad, And:
		affectsLac = true

	case Isz:
		m.skipstate = skipable

	case Dca:
		if !acIsClear {
			affectsLac = true
		}

	case Jmp:

	case Opr:
		o := int(op)
	loop:
		for {
			switch peelopr(&o) {
			case Nop:
				break loop

			case Bsw, Cla:
				if !acIsClear {
					affectsLac = true
				}

			case Cll:
				if m.want.known&lAny == 0 && (m.want.known&lKnown == 0 || m.want.lac&010000 != 0) {
					affectsLac = true
				}

			case Cml:
				if m.want.known&lAny == 0 {
					affectsLac = true
				}

			case Rar, Ral, Rtr, Rtl, Iac, Cma:
				affectsLac = true

			case Sma, Sza, Snl, Skp:
				affectsLac = true
				m.skipstate = skipable

			default:
				m.errs.Fatal("", "unrecognised OPR instruction: %04o", o&07777)
			}
		}
	}

	if affectsLac {
		m.AcState = randomExpr
		m.want.known = 0
	}

	m.undefer()
	m.emit.EmitIsn(op, e)
}
