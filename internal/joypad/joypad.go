// Package joypad models the P1 register and the eight-button input
// matrix it multiplexes.
package joypad

import "github.com/mrosa/dmgcore/internal/bit"

// Key identifies one of the eight physical buttons.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad holds the current button/d-pad state (1 = released, 0 =
// pressed, matching the P1 register polarity) and the selection bits
// last written to P1.
type Joypad struct {
	buttons    uint8
	dpad       uint8
	selectBits uint8 // bits 4-5 of P1, as last written

	// InterruptHandler is called on any press transition (released to
	// pressed), wiring to the joypad interrupt request.
	InterruptHandler func()
}

// New returns a joypad with all eight buttons released.
func New() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F}
}

// Read returns the full P1 register value: bits 6-7 fixed high, bits
// 4-5 the selection state, bits 0-3 the selected button group (ANDed
// together if both groups are selected, 0x0F if neither is).
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.selectBits

	selectDpad := !bit.IsSet(4, j.selectBits)
	selectButtons := !bit.IsSet(5, j.selectBits)

	switch {
	case selectButtons && !selectDpad:
		result |= j.buttons & 0x0F
	case selectDpad && !selectButtons:
		result |= j.dpad & 0x0F
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write updates the selection bits; only bits 4-5 of P1 are writable.
func (j *Joypad) Write(value uint8) {
	j.selectBits = value & 0x30
}

// Press marks key as held, firing InterruptHandler on the
// released-to-pressed transition.
func (j *Joypad) Press(key Key) {
	buttons, dpad := j.buttons, j.dpad
	j.setBit(key, false)
	pressed := buttons&^j.buttons != 0 || dpad&^j.dpad != 0
	if pressed && j.InterruptHandler != nil {
		j.InterruptHandler()
	}
}

// Release marks key as not held.
func (j *Joypad) Release(key Key) {
	j.setBit(key, true)
}

func (j *Joypad) setBit(key Key, released bool) {
	var group *uint8
	var index uint8
	switch key {
	case Right:
		group, index = &j.dpad, 0
	case Left:
		group, index = &j.dpad, 1
	case Up:
		group, index = &j.dpad, 2
	case Down:
		group, index = &j.dpad, 3
	case A:
		group, index = &j.buttons, 0
	case B:
		group, index = &j.buttons, 1
	case Select:
		group, index = &j.buttons, 2
	case Start:
		group, index = &j.buttons, 3
	default:
		return
	}

	if released {
		*group = bit.Set(index, *group)
	} else {
		*group = bit.Reset(index, *group)
	}
}
