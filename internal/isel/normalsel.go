package isel

import "github.com/clausecker/pdp8c/internal/value"

// normalsel selects instructions while not immediately following a
// conditional skip. It simulates op's effect on want, deferring it when
// possible and folding the deferred list back down to a minimal sequence,
// or emitting immediately when the optimizer cannot reason about the
// effect.
func (m *Machine) normalsel(op Opcode, e *value.Expr) {
	// mustEmit: bit 1 set means op's effects cannot be entirely
	// computed by the optimizer and everything deferred plus op itself
	// must be emitted now. Bit 2 set means AcState must become random
	// afterwards.
	mustEmit := 0

	v := uint16(value.Invalid)
	if e != nil {
		v = e.Value
	}

	switch op & 07000 {
	case And:
		if m.want.known&acKnown != 0 && value.IsConst(v) {
			m.want.lac &= 010000 | value.Val(v)
		} else {
			mustEmit |= 3
			m.want.known &^= acKnown
		}

	case Tad:
		handled := false
		if m.want.known&acKnown != 0 {
			if value.IsConst(v) {
				lKnownBefore := m.want.known&lKnown == 0
				lAnyBefore := m.want.known&lAny == 0
				m.want.lac = 017777 & (m.want.lac + value.Val(v))

				if lKnownBefore && lAnyBefore &&
					int(m.want.lac&07777)+int(value.Val(v)) > 07777 {
					mustEmit |= 1
				}

				handled = true
			} else if m.want.lac&007777 == 0 {
				m.want.known &^= acKnown
				mustEmit |= 1
				m.AcState = *e
				handled = true
			}
		}

		if !handled {
			// general case: nothing can be assumed
			m.want.known &^= lKnown | acKnown
			mustEmit |= 3
		}

	case Isz:
		m.skipstate = skipable
		mustEmit |= 1
		if m.AcState.Value == v {
			mustEmit |= 2
		}

	case Dca:
		mustEmit |= 1
		m.want.lac &= 010000
		m.want.known |= acKnown

	case Jmp:
		mustEmit |= 1

	case Jms:
		// a call is opaque to the optimizer: it must be emitted exactly
		// where it occurs, and AC/L become unknown afterwards.
		mustEmit |= 3
		m.want.known &^= lKnown | acKnown

	case Opr:
		mustEmit |= m.normalselOpr(op, e)
	}

	if mustEmit&1 != 0 {
		m.undefer()
		m.emit.EmitIsn(op, e)
	} else if m.skipstate == normal {
		m.defer_(op, e)
		m.fold()
	} else {
		m.defer_(op, e)
	}

	if m.want.known&acKnown != 0 {
		m.AcState = value.Expr{Value: value.RConst | m.want.lac&007777}
	} else if mustEmit&2 != 0 {
		m.AcState = randomExpr
	}
}

// normalselOpr handles the OPR case of normalsel: it peels micro-
// instructions off op one at a time, simulating their effect on a trial
// state, and decides whether the whole instruction turned out to be a
// no-op (in which case nothing needs to be deferred or emitted at all).
// It returns the mustEmit bits accumulated while peeling.
func (m *Machine) normalselOpr(op Opcode, e *value.Expr) int {
	mustEmit := 0
	will := m.want
	o := int(op)

loop:
	for {
		switch peelopr(&o) {
		case Cla:
			will.lac &^= 007777
			will.known |= acKnown

		case Cll:
			will.lac &^= 010000
			will.known |= lKnown
			will.known &^= lAny

		case Cma:
			if will.known&acKnown != 0 {
				will.lac ^= 007777
			} else {
				mustEmit |= 3
			}

		case Cml:
			if will.known&(lKnown|lAny) == 0 {
				mustEmit |= 1
			} else {
				will.lac ^= 010000
			}

		case Rar:
			if will.known&acKnown != 0 && will.known&lKnown != 0 {
				will.lac = will.lac>>1 | will.lac<<12&010000
				will.known &^= lAny
			} else {
				will.known = 0
				mustEmit |= 3
			}

		case Rtr:
			if will.known&acKnown != 0 && will.known&lKnown != 0 {
				will.lac = will.lac>>2 | will.lac<<11&014000
				will.known &^= lAny
			} else {
				will.known = 0
				mustEmit |= 3
			}

		case Ral:
			if will.known&acKnown != 0 && will.known&lKnown != 0 {
				will.lac = will.lac<<1&017776 | will.lac>>12
				will.known &^= lAny
			} else {
				will.known = 0
				mustEmit |= 3
			}

		case Rtl:
			if will.known&acKnown != 0 && will.known&lKnown != 0 {
				will.lac = will.lac<<2&017774 | will.lac>>11
				will.known &^= lAny
			} else {
				will.known = 0
				mustEmit |= 3
			}

		case Bsw:
			if will.known&acKnown != 0 {
				will.lac = will.lac&010000 | will.lac<<6&007700 | will.lac>>6&000077
			} else {
				will.known = 0
				mustEmit |= 3
			}

		case Iac:
			if will.known&acKnown != 0 {
				if will.known&lKnown == 0 && will.lac&07777 == 07777 {
					mustEmit |= 1
				}
				will.lac = (will.lac + 1) & 017777
			} else {
				mustEmit |= 3
			}

		case Sma:
			if m.skipstate == doSkip {
				break
			}
			if will.known&acKnown == 0 {
				m.skipstate = skipable
			} else if will.lac&004000 != 0 {
				m.skipstate = doSkip
			}

		case Sza:
			if m.skipstate == doSkip {
				break
			}
			if will.known&acKnown == 0 {
				m.skipstate = skipable
			} else if will.lac&007777 == 0 {
				m.skipstate = doSkip
			}

		case Snl:
			if m.skipstate == doSkip {
				break
			}
			if will.known&lKnown == 0 {
				m.skipstate = skipable
			} else if will.lac&010000 != 0 {
				m.skipstate = doSkip
			}

		case Skp:
			switch m.skipstate {
			case normal:
				m.skipstate = doSkip
			case skipable:
			case doSkip:
				m.skipstate = normal
			}

		case Nop:
			break loop

		default:
			m.errs.Fatal("", "unrecognised OPR instruction: %04o", int(op)&07777)
		}
	}

	if mustEmit == 0 && m.skipstate == normal &&
		m.want.known&(lKnown|acKnown) == will.known&(lKnown|acKnown) &&
		(will.known&lKnown == 0 || m.want.lac&010000 == will.lac&010000) &&
		(will.known&acKnown == 0 || m.want.lac&007777 == will.lac&007777) {
		return mustEmit
	}

	m.want = will
	return mustEmit
}
