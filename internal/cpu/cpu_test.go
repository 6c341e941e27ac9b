package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// flatBus is a trivial 64 KiB Bus backing used only by these tests.
type flatBus [0x10000]uint8

func (b *flatBus) Read(address uint16) uint8     { return b[address] }
func (b *flatBus) Write(address uint16, v uint8) { b[address] = v }

func newTestCPU(snap Snapshot) (*CPU, *flatBus) {
	bus := &flatBus{}
	c := &CPU{
		Registers:           FromSnapshot(snap),
		bus:                 bus,
		ime:                 true,
		clearedInterruptBit: -1,
	}
	return c, bus
}

func step(c *CPU) int {
	return c.Step(0, 0)
}

// execDirect runs the opcode's handler in isolation, matching the
// golden-trace convention where the snapshot's PC is the address right
// after the opcode byte (i.e. as if the opcode were already fetched).
func execDirect(c *CPU, opcode uint8) int {
	e := primaryTable[opcode]
	return e.Cycles + e.Exec(c)
}

func TestGoldenTraceXorA(t *testing.T) {
	c, _ := newTestCPU(Snapshot{A: 1, B: 0, C: 19, D: 0, E: 216, F: 80, H: 1, L: 77, PC: 341, SP: 65534})

	execDirect(c, 0xAF)

	assert.Equal(t, Snapshot{A: 0, B: 0, C: 19, D: 0, E: 216, F: 128, H: 1, L: 77, PC: 341, SP: 65534}, c.Snapshot())
}

func TestGoldenTraceDecB(t *testing.T) {
	c, bus := newTestCPU(Snapshot{A: 0, B: 160, C: 0, D: 0, E: 216, F: 128, H: 195, L: 1, PC: 138, SP: 57341})
	bus[138] = 32

	execDirect(c, 0x05)

	assert.Equal(t, Snapshot{A: 0, B: 159, C: 0, D: 0, E: 216, F: 96, H: 195, L: 1, PC: 138, SP: 57341}, c.Snapshot())
}

func TestGoldenTraceCall(t *testing.T) {
	c, bus := newTestCPU(Snapshot{A: 128, B: 0, C: 19, D: 0, E: 216, F: 128, H: 1, L: 77, PC: 8053, SP: 65534})
	bus[8053] = 97
	bus[8054] = 0

	execDirect(c, 0xCD)

	got := c.Snapshot()
	assert.EqualValues(t, 97, got.PC)
	assert.EqualValues(t, 65532, got.SP)
}

func TestGoldenTraceRet(t *testing.T) {
	c, bus := newTestCPU(Snapshot{PC: 123, SP: 65532})
	bus[65532] = 8055 & 0xFF
	bus[65533] = 8055 >> 8

	execDirect(c, 0xC9)

	got := c.Snapshot()
	assert.EqualValues(t, 8055, got.PC)
	assert.EqualValues(t, 65534, got.SP)
}

func TestGoldenTraceJrNZ(t *testing.T) {
	c, bus := newTestCPU(Snapshot{F: 112, PC: 112, SP: 65532})
	bus[112] = 250 // -6 as a signed byte

	execDirect(c, 0x20)

	assert.EqualValues(t, 107, c.PC())
}

func TestGoldenTraceDAA(t *testing.T) {
	c, _ := newTestCPU(Snapshot{PC: 0})

	c.a = 0x15
	c.addToA(0x27)

	assert.EqualValues(t, 0x3C, c.a)
	assert.False(t, c.isSet(subFlag))
	assert.False(t, c.isSet(halfCarryFlag))
	assert.False(t, c.isSet(carryFlag))

	execDirect(c, 0x27) // DAA

	assert.EqualValues(t, 0x42, c.a)
}

func TestIncDecRestoresValue(t *testing.T) {
	c, _ := newTestCPU(Snapshot{B: 0x3F})

	execDirect(c, 0x04) // INC B
	execDirect(c, 0x05) // DEC B

	assert.EqualValues(t, 0x3F, c.b)
}

func TestPushPopRoundTrips(t *testing.T) {
	c, _ := newTestCPU(Snapshot{B: 0xAB, C: 0xCD, SP: 0xFFFE})

	execDirect(c, 0xC5) // PUSH BC
	execDirect(c, 0xD1) // POP DE

	assert.EqualValues(t, 0xAB, c.d)
	assert.EqualValues(t, 0xCD, c.e)
	assert.EqualValues(t, 0xFFFE, c.SP())
}

func TestPopAFMasksLowNibble(t *testing.T) {
	c, bus := newTestCPU(Snapshot{SP: 0xFFFC})
	bus[0xFFFC] = 0xFF
	bus[0xFFFD] = 0xA0

	execDirect(c, 0xF1) // POP AF

	assert.EqualValues(t, 0, c.f&0x0F)
}

func TestCPLTwiceRestoresA(t *testing.T) {
	c, _ := newTestCPU(Snapshot{A: 0x5A})

	execDirect(c, 0x2F)
	execDirect(c, 0x2F)

	assert.EqualValues(t, 0x5A, c.a)
	assert.True(t, c.isSet(subFlag))
	assert.True(t, c.isSet(halfCarryFlag))
}

func TestCCFTwiceRestoresCarry(t *testing.T) {
	c, _ := newTestCPU(Snapshot{F: carryFlag})

	execDirect(c, 0x3F)
	execDirect(c, 0x3F)

	assert.True(t, c.Carry())
}

func TestHaltWakesOnPendingInterrupt(t *testing.T) {
	c, bus := newTestCPU(Snapshot{PC: 0})
	bus[0] = 0x76 // HALT

	c.ime = false
	step(c)
	assert.True(t, c.Halted())

	cycles := c.Step(0x01, 0x01)
	assert.False(t, c.Halted())
	assert.EqualValues(t, 4, cycles)
}

func TestInterruptDispatchPushesPCAndClearsIME(t *testing.T) {
	c, _ := newTestCPU(Snapshot{PC: 0x1234, SP: 0xFFFE})

	c.ime = true
	cycles := c.Step(0x01, 0x01)

	assert.Equal(t, 16, cycles)
	assert.False(t, c.IME())
	assert.EqualValues(t, 0x0040, c.PC())
	assert.Equal(t, 0, c.ClearedInterruptBit())
}

func TestEIDelaysIMEByOneInstruction(t *testing.T) {
	c, bus := newTestCPU(Snapshot{PC: 0})
	bus[0] = 0xFB // EI
	bus[1] = 0x00 // NOP
	bus[2] = 0x00 // NOP

	c.ime = false
	step(c) // EI

	assert.False(t, c.IME(), "IME must not flip until after the next instruction")

	step(c) // NOP (the instruction following EI)

	assert.True(t, c.IME())
}

func TestCBBitTest(t *testing.T) {
	c, bus := newTestCPU(Snapshot{B: 0x80, PC: 0})
	bus[0] = 0xCB
	bus[1] = 0x78 // BIT 7,B

	step(c)

	assert.False(t, c.Zero())
}
