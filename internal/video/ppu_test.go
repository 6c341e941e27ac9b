package video

import (
	"testing"

	"github.com/mrosa/dmgcore/internal/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPPU() *PPU {
	p := New()
	var fired []addr.Interrupt
	p.InterruptHandler = func(i addr.Interrupt) { fired = append(fired, i) }
	return p
}

func TestBootRegisterDefaults(t *testing.T) {
	p := New()
	assert.EqualValues(t, 0x91, p.Read(addr.LCDC))
	assert.EqualValues(t, 0xFC, p.Read(addr.BGP))
	assert.EqualValues(t, 0xFF, p.Read(addr.OBP0))
	assert.EqualValues(t, 0xFF, p.Read(addr.OBP1))
}

func TestModeTransitionsAtExactDotBoundaries(t *testing.T) {
	p := New()
	require.EqualValues(t, modeOAM, p.m)

	p.Tick(79)
	assert.EqualValues(t, modeOAM, p.m, "still within the 80-dot OAM scan")
	p.Tick(1)
	assert.EqualValues(t, modeVRAM, p.m, "dot 80 begins pixel transfer")

	p.Tick(171)
	assert.EqualValues(t, modeVRAM, p.m, "still within the 172-dot transfer")
	p.Tick(1)
	assert.EqualValues(t, modeHBlank, p.m, "dot 252 begins h-blank")

	p.Tick(203)
	assert.EqualValues(t, modeHBlank, p.m)
	p.Tick(1)
	assert.EqualValues(t, modeOAM, p.m, "next scanline begins OAM scan")
	assert.EqualValues(t, 1, p.ly)
}

func TestVBlankBeginsAtLine144(t *testing.T) {
	p := newTestPPU()
	p.Tick(456 * 144)
	assert.EqualValues(t, 144, p.ly)
	assert.EqualValues(t, modeVBlank, p.m)
	assert.True(t, p.FrameReady())
}

func TestLineWrapsAt154BackToOAM(t *testing.T) {
	p := New()
	p.Tick(456 * 154)
	assert.EqualValues(t, 0, p.ly)
	assert.EqualValues(t, modeOAM, p.m)
}

func TestLYCMatchSetsSTATBit(t *testing.T) {
	p := New()
	p.Write(addr.LYC, 1)
	p.Tick(456) // advance to line 1
	assert.EqualValues(t, 1, p.ly)
	assert.NotZero(t, p.Read(addr.STAT)&0x04)
}

func TestDisablingLCDFreezesAndBlanksDisplay(t *testing.T) {
	p := New()
	p.framebuffer.SetPixel(0, 0, 0x00)

	p.Write(addr.LCDC, p.lcdc&^0x80)
	assert.EqualValues(t, 0, p.ly)
	assert.EqualValues(t, 0xFF, p.framebuffer.GetPixel(0, 0))

	p.Tick(1000) // frozen, no mode/line movement while disabled
	assert.EqualValues(t, 0, p.ly)
}

func TestReenablingLCDResumesAtOAMScan(t *testing.T) {
	p := New()
	p.Write(addr.LCDC, p.lcdc&^0x80)
	p.Write(addr.LCDC, p.lcdc|0x80)
	assert.EqualValues(t, modeOAM, p.m)
	assert.EqualValues(t, 0, p.ly)
}

func TestLYIsReadOnly(t *testing.T) {
	p := New()
	p.Write(addr.LY, 99)
	assert.EqualValues(t, 0, p.Read(addr.LY))
}

func TestSTATOnlyAcceptsInterruptEnableBits(t *testing.T) {
	p := New()
	p.Write(addr.STAT, 0xFF)
	// mode bits (0-1) and LYC flag (bit 2) stay hardware-controlled
	assert.EqualValues(t, byte(modeOAM), p.Read(addr.STAT)&0x03)
}

func TestVRAMAndOAMRoundTrip(t *testing.T) {
	p := New()
	p.Write(0x8000, 0x42)
	assert.EqualValues(t, 0x42, p.Read(0x8000))

	p.Write(addr.OAMStart, 0x10)
	assert.EqualValues(t, 0x10, p.Read(addr.OAMStart))
}
