package cpu

import "github.com/mrosa/dmgcore/internal/bit"

// Variant selects the console whose register reset vectors the core
// should boot with, threaded explicitly from the boot sequence rather
// than a process-wide mutable global.
type Variant uint8

const (
	VariantDMG Variant = iota
	VariantPocket
	VariantColor
	VariantSuperGB
)

// flag bit positions within F, matching the upper nibble layout.
const (
	zeroFlag      uint8 = 1 << 7
	subFlag       uint8 = 1 << 6
	halfCarryFlag uint8 = 1 << 5
	carryFlag     uint8 = 1 << 4
)

// Registers holds the eight 8-bit registers and the two 16-bit
// registers of the Sharp LR35902. AF, BC, DE and HL are exposed as
// paired accessors rather than a distinct struct type, since every
// opcode handler addresses the 8-bit halves directly.
type Registers struct {
	a, f uint8
	b, c uint8
	d, e uint8
	h, l uint8

	pc, sp uint16
}

// NewRegisters builds the register file with the reset vectors for the
// given console variant, per the documented DMG/Pocket/Color/SGB boot
// values.
func NewRegisters(v Variant) Registers {
	r := Registers{
		b: 0x00, c: 0x13,
		d: 0x00, e: 0xD8,
		f: 0xB0,
		h: 0x01, l: 0x4D,
		pc: 0x0100,
		sp: 0xFFFE,
	}
	switch v {
	case VariantPocket:
		r.a = 0xFF
	case VariantColor:
		r.a = 0x11
	case VariantSuperGB:
		r.a = 0x01
	default:
		r.a = 0x01
	}
	return r
}

// Snapshot is the debug-only textual register state used by golden-trace
// tests: register { a, b, c, d, e, f, h, l, pc, sp }.
type Snapshot struct {
	A, B, C, D, E, F uint8
	H, L              uint8
	PC, SP            uint16
}

// FromSnapshot reconstructs a register file from a textual snapshot.
func FromSnapshot(s Snapshot) Registers {
	return Registers{
		a: s.A, f: s.F & 0xF0,
		b: s.B, c: s.C,
		d: s.D, e: s.E,
		h: s.H, l: s.L,
		pc: s.PC, sp: s.SP,
	}
}

// Snapshot captures the current register state for comparison in tests.
func (r *Registers) Snapshot() Snapshot {
	return Snapshot{
		A: r.a, B: r.b, C: r.c, D: r.d, E: r.e, F: r.f, H: r.h, L: r.l,
		PC: r.pc, SP: r.sp,
	}
}

func (r *Registers) AF() uint16 { return bit.Combine(r.a, r.f) }
func (r *Registers) BC() uint16 { return bit.Combine(r.b, r.c) }
func (r *Registers) DE() uint16 { return bit.Combine(r.d, r.e) }
func (r *Registers) HL() uint16 { return bit.Combine(r.h, r.l) }

// SetAF writes both halves of AF, masking F's low nibble to zero.
func (r *Registers) SetAF(v uint16) {
	r.a = bit.High(v)
	r.f = bit.Low(v) & 0xF0
}

func (r *Registers) SetBC(v uint16) { r.b, r.c = bit.High(v), bit.Low(v) }
func (r *Registers) SetDE(v uint16) { r.d, r.e = bit.High(v), bit.Low(v) }
func (r *Registers) SetHL(v uint16) { r.h, r.l = bit.High(v), bit.Low(v) }

// PC returns the program counter.
func (r *Registers) PC() uint16 { return r.pc }

// SetPC overwrites the program counter.
func (r *Registers) SetPC(v uint16) { r.pc = v }

// IncPC advances PC by one and returns the pre-increment value, the
// address the caller should read the next opcode byte from.
func (r *Registers) IncPC() uint16 {
	v := r.pc
	r.pc++
	return v
}

// SP returns the stack pointer.
func (r *Registers) SP() uint16 { return r.sp }

// SetSP overwrites the stack pointer.
func (r *Registers) SetSP(v uint16) { r.sp = v }

func (r *Registers) setFlag(mask uint8)   { r.f |= mask }
func (r *Registers) resetFlag(mask uint8) { r.f &^= mask }

func (r *Registers) setFlagTo(mask uint8, set bool) {
	if set {
		r.setFlag(mask)
	} else {
		r.resetFlag(mask)
	}
}

func (r *Registers) isSet(mask uint8) bool { return r.f&mask != 0 }

// Zero reports whether the Z flag is set.
func (r *Registers) Zero() bool { return r.isSet(zeroFlag) }

// Carry reports whether the C flag is set.
func (r *Registers) Carry() bool { return r.isSet(carryFlag) }

func (r *Registers) carryBit() uint8 {
	if r.Carry() {
		return 1
	}
	return 0
}
