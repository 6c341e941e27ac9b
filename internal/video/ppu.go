// Package video implements the picture processing unit: VRAM, OAM, the
// LCD control/status/palette registers, and the dot-accurate mode state
// machine that drives background, window, and sprite rendering.
package video

import (
	"log/slog"

	"github.com/mrosa/dmgcore/internal/addr"
)

// mode mirrors the two low bits of STAT.
type mode uint8

const (
	modeHBlank mode = 0
	modeVBlank mode = 1
	modeOAM    mode = 2
	modeVRAM   mode = 3
)

const dotsPerLine = 456

// PPU renders the 160x144 DMG display a scanline at a time, driven
// dot-by-dot: mode 2 (OAM scan) spans dots 0-79, mode 3 (pixel
// transfer) dots 80-251, mode 0 (H-blank) dots 252-455. Lines 144-153
// are V-blank.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat                         byte
	scy, scx, ly, lyc                  byte
	bgp, obp0, obp1                    byte
	wy, wx                             byte

	dot int
	m   mode

	windowLine int

	framebuffer   *FrameBuffer
	bgPixelBuffer [FramebufferSize]byte
	priority      spritePriorityBuffer
	frameReady    bool

	// InterruptHandler requests VBlank/LCDSTAT; wired by the caller
	// that owns the interrupt controller (the mmu).
	InterruptHandler func(addr.Interrupt)
}

// New constructs a PPU with the documented post-boot register state
// (LCDC=0x91, BGP=0xFC, OBPx=0xFF) and the mode state machine starting
// at scanline 0, dot 0, OAM scan.
func New() *PPU {
	p := &PPU{
		lcdc: 0x91,
		bgp:  0xFC,
		obp0: 0xFF,
		obp1: 0xFF,
		m:    modeOAM,
	}
	p.framebuffer = NewFrameBuffer()
	p.stat = 0x04 | byte(modeOAM) // LY==LYC both zero at boot
	return p
}

func (p *PPU) FrameBuffer() *FrameBuffer { return p.framebuffer }

func (p *PPU) FrameReady() bool { return p.frameReady }

// ConsumeFrame clears the ready flag and returns the current buffer.
func (p *PPU) ConsumeFrame() *FrameBuffer {
	p.frameReady = false
	return p.framebuffer
}

// Tick advances the PPU by cycles T-cycles. While the LCD is disabled
// the dot counter is frozen; re-enabling resumes at scanline 0.
func (p *PPU) Tick(cycles int) {
	if !p.lcdEnabled() {
		return
	}
	for i := 0; i < cycles; i++ {
		p.step()
	}
}

func (p *PPU) step() {
	p.dot++
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.setLY((int(p.ly) + 1) % 154)
	}
	p.enterMode(p.computeMode())
}

func (p *PPU) computeMode() mode {
	if p.ly >= 144 {
		return modeVBlank
	}
	switch {
	case p.dot < 80:
		return modeOAM
	case p.dot < 252:
		return modeVRAM
	default:
		return modeHBlank
	}
}

func (p *PPU) enterMode(next mode) {
	if next == p.m {
		return
	}
	p.m = next
	p.stat = p.stat&0xFC | byte(next)

	switch next {
	case modeOAM:
		if p.stat&0x20 != 0 {
			p.requestInterrupt(addr.LCDSTATInterrupt)
		}
	case modeVRAM:
		p.renderScanline(int(p.ly))
	case modeHBlank:
		if p.stat&0x08 != 0 {
			p.requestInterrupt(addr.LCDSTATInterrupt)
		}
	case modeVBlank:
		p.frameReady = true
		p.windowLine = 0
		p.requestInterrupt(addr.VBlankInterrupt)
		if p.stat&0x10 != 0 {
			p.requestInterrupt(addr.LCDSTATInterrupt)
		}
	}
}

// setLY updates LY and re-evaluates the LY==LYC STAT condition/IRQ.
func (p *PPU) setLY(line int) {
	p.ly = byte(line)
	if p.ly == p.lyc {
		p.stat |= 0x04
		if p.stat&0x40 != 0 {
			p.requestInterrupt(addr.LCDSTATInterrupt)
		}
	} else {
		p.stat &^= 0x04
	}
}

func (p *PPU) requestInterrupt(i addr.Interrupt) {
	if p.InterruptHandler != nil {
		p.InterruptHandler(i)
	}
}

// writeLCDC handles the LCD enable/disable transition: disabling
// freezes the counters at scanline 0 and blanks the screen; re-
// enabling resumes at OAM scan.
func (p *PPU) writeLCDC(value byte) {
	wasEnabled := p.lcdc&0x80 != 0
	p.lcdc = value
	nowEnabled := value&0x80 != 0

	if wasEnabled && !nowEnabled {
		p.dot = 0
		p.ly = 0
		p.m = modeHBlank
		p.stat = p.stat & 0xFC
		p.windowLine = 0
		p.framebuffer.Clear()
		slog.Debug("lcd disabled")
	} else if !wasEnabled && nowEnabled {
		p.dot = 0
		p.ly = 0
		p.m = modeOAM
		p.stat = p.stat&0xFC | byte(modeOAM)
		slog.Debug("lcd enabled")
	}
}

func (p *PPU) lcdEnabled() bool { return p.lcdc&0x80 != 0 }

// State is the serializable PPU half of a save state: VRAM, OAM, every
// LCD/palette register, and the dot-accurate mode machine's position.
type State struct {
	VRAM [0x2000]byte
	OAM  [0xA0]byte

	LCDC, STAT         byte
	SCY, SCX, LY, LYC  byte
	BGP, OBP0, OBP1    byte
	WY, WX             byte

	Dot        int
	Mode       byte
	WindowLine int
	FrameReady bool
}

// State captures the PPU's current state for save-state serialization.
func (p *PPU) State() State {
	return State{
		VRAM: p.vram, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat,
		SCY: p.scy, SCX: p.scx, LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,
		WY: p.wy, WX: p.wx,
		Dot: p.dot, Mode: byte(p.m), WindowLine: p.windowLine,
		FrameReady: p.frameReady,
	}
}

// Restore overwrites the PPU's state from a previously captured State.
func (p *PPU) Restore(s State) {
	p.vram = s.VRAM
	p.oam = s.OAM
	p.lcdc, p.stat = s.LCDC, s.STAT
	p.scy, p.scx, p.ly, p.lyc = s.SCY, s.SCX, s.LY, s.LYC
	p.bgp, p.obp0, p.obp1 = s.BGP, s.OBP0, s.OBP1
	p.wy, p.wx = s.WY, s.WX
	p.dot, p.m, p.windowLine = s.Dot, mode(s.Mode), s.WindowLine
	p.frameReady = s.FrameReady
}

func (p *PPU) Read(address uint16) uint8 {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		return p.vram[address-addr.VRAMStart]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		return p.oam[address-addr.OAMStart]
	case address == addr.LCDC:
		return p.lcdc
	case address == addr.STAT:
		return p.stat | 0x80
	case address == addr.SCY:
		return p.scy
	case address == addr.SCX:
		return p.scx
	case address == addr.LY:
		return p.ly
	case address == addr.LYC:
		return p.lyc
	case address == addr.BGP:
		return p.bgp
	case address == addr.OBP0:
		return p.obp0
	case address == addr.OBP1:
		return p.obp1
	case address == addr.WY:
		return p.wy
	case address == addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) Write(address uint16, value uint8) {
	switch {
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		p.vram[address-addr.VRAMStart] = value
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		p.oam[address-addr.OAMStart] = value
	case address == addr.LCDC:
		p.writeLCDC(value)
	case address == addr.STAT:
		p.stat = p.stat&0x07 | value&0x78
	case address == addr.SCY:
		p.scy = value
	case address == addr.SCX:
		p.scx = value
	case address == addr.LY:
		// read-only
	case address == addr.LYC:
		p.lyc = value
	case address == addr.BGP:
		p.bgp = value
	case address == addr.OBP0:
		p.obp0 = value
	case address == addr.OBP1:
		p.obp1 = value
	case address == addr.WY:
		p.wy = value
	case address == addr.WX:
		p.wx = value
	}
}
