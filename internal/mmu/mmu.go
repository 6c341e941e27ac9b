// Package mmu implements the address decoder that routes the CPU's
// 16-bit address space to the cartridge, PPU, WRAM, HRAM, and the
// timer/joypad/serial/interrupt registers.
package mmu

import (
	"fmt"
	"log/slog"

	"github.com/mrosa/dmgcore/internal/addr"
	"github.com/mrosa/dmgcore/internal/cartridge"
	"github.com/mrosa/dmgcore/internal/joypad"
	"github.com/mrosa/dmgcore/internal/serial"
	"github.com/mrosa/dmgcore/internal/timer"
)

// PPU is the subset of internal/video.PPU the mmu delegates to: VRAM,
// OAM, and the LCD/palette registers (all but DMA, which the mmu
// itself drives).
type PPU interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// MMU owns WRAM/HRAM/I-O registers directly and delegates the
// cartridge and PPU ranges to their owning components. It is the sole
// collaborator the CPU talks to (satisfies cpu.Bus).
type MMU struct {
	cart   *cartridge.Cartridge
	ppu    PPU
	timer  timer.Timer
	joypad *joypad.Joypad
	serial serial.Port

	wramBank0 [0x1000]byte
	wramBankN [7][0x1000]byte // CGB banks 1-7; bank 1 is the DMG WRAM bank N
	svbk      uint8

	hram [127]byte
	io   [0x80]byte // catch-all for unhandled 0xFF00-0xFF7F registers

	ifReg uint8
	ieReg uint8
}

// New creates an MMU with cart loaded and ppu wired for the VRAM/OAM/
// LCD-register ranges; joypad and timer/serial interrupts are wired to
// RequestInterrupt automatically.
func New(cart *cartridge.Cartridge, ppu PPU) *MMU {
	m := &MMU{
		cart: cart,
		ppu:  ppu,
	}
	m.joypad = joypad.New()
	m.joypad.InterruptHandler = func() { m.RequestInterrupt(addr.JoypadInterrupt) }
	m.timer.InterruptHandler = func() { m.RequestInterrupt(addr.TimerInterrupt) }
	m.serial = serial.NewLogSink(func() { m.RequestInterrupt(addr.SerialInterrupt) })

	return m
}

// Tick advances the timer and serial device by cycles T-cycles; the
// PPU is ticked separately by the orchestrator since it is not owned
// exclusively through this interface.
func (m *MMU) Tick(cycles int) {
	m.timer.Tick(cycles)
	m.serial.Tick(cycles)
}

// RequestInterrupt sets the given interrupt's bit in IF.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.ifReg |= uint8(interrupt)
}

// IF and IE expose the interrupt registers directly for the CPU's
// dispatch check, avoiding a Read/Write round trip on every step.
func (m *MMU) IF() uint8 { return m.ifReg | 0xE0 }
func (m *MMU) IE() uint8 { return m.ieReg }
func (m *MMU) SetIF(v uint8) { m.ifReg = v }

// PressKey and ReleaseKey deliver host input to the joypad matrix;
// a press of a released key requests the joypad interrupt. Writes
// through P1 only change the selection bits.
func (m *MMU) PressKey(key joypad.Key)   { m.joypad.Press(key) }
func (m *MMU) ReleaseKey(key joypad.Key) { m.joypad.Release(key) }

func (m *MMU) Read(address uint16) uint8 {
	switch {
	case address <= addr.ROMBankNEnd, address >= addr.ExternalRAMStart && address <= addr.ExternalRAMEnd:
		return m.cart.Read(address)
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		return m.ppu.Read(address)
	case address >= addr.WRAMStart && address <= 0xCFFF:
		return m.wramBank0[address-addr.WRAMStart]
	case address >= 0xD000 && address <= addr.WRAMEnd:
		return m.wramBankN[m.bankIndex()][address-0xD000]
	case address >= addr.EchoStart && address <= 0xEFFF:
		return m.wramBank0[address-addr.EchoStart]
	case address >= 0xF000 && address <= addr.EchoEnd:
		return m.wramBankN[m.bankIndex()][address-0xF000]
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		return m.ppu.Read(address)
	case address >= addr.UnusableStart && address <= addr.UnusableEnd:
		return 0
	case address == addr.P1:
		return m.joypad.Read()
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		return m.timer.Read(address)
	case address == addr.SB, address == addr.SC:
		return m.serial.Read(address)
	case address == addr.IF:
		return m.IF()
	case address == addr.SVBK:
		return m.svbk
	case m.ignoredRegister(address):
		return 0
	case m.isPPURegister(address):
		return m.ppu.Read(address)
	case address >= addr.HRAMStart && address <= addr.HRAMEnd:
		return m.hram[address-addr.HRAMStart]
	case address == addr.IE:
		return m.ieReg
	case address >= addr.IOStart && address <= addr.IOEnd:
		return m.io[address-addr.IOStart]
	default:
		panic(fmt.Sprintf("mmu: attempted read at unmapped address 0x%04X", address))
	}
}

func (m *MMU) Write(address uint16, value uint8) {
	switch {
	case address <= addr.ROMBankNEnd, address >= addr.ExternalRAMStart && address <= addr.ExternalRAMEnd:
		m.cart.Write(address, value)
	case address >= addr.VRAMStart && address <= addr.VRAMEnd:
		m.ppu.Write(address, value)
	case address >= addr.WRAMStart && address <= 0xCFFF:
		m.wramBank0[address-addr.WRAMStart] = value
	case address >= 0xD000 && address <= addr.WRAMEnd:
		m.wramBankN[m.bankIndex()][address-0xD000] = value
	case address >= addr.EchoStart && address <= 0xEFFF:
		m.wramBank0[address-addr.EchoStart] = value
	case address >= 0xF000 && address <= addr.EchoEnd:
		m.wramBankN[m.bankIndex()][address-0xF000] = value
	case address >= addr.OAMStart && address <= addr.OAMEnd:
		m.ppu.Write(address, value)
	case address >= addr.UnusableStart && address <= addr.UnusableEnd:
		// writes to the unusable range are dropped
	case address == addr.P1:
		m.joypad.Write(value)
	case address == addr.DIV, address == addr.TIMA, address == addr.TMA, address == addr.TAC:
		m.timer.Write(address, value)
	case address == addr.SB, address == addr.SC:
		m.serial.Write(address, value)
	case address == addr.IF:
		m.ifReg = value & 0x1F
	case address == addr.SVBK:
		m.svbk = value & 0x07
	case address == addr.DMA:
		m.runDMA(value)
	case m.ignoredRegister(address):
		// audio, speed switch, HDMA, CGB palettes: non-goals, writes dropped
	case m.isPPURegister(address):
		m.ppu.Write(address, value)
	case address >= addr.HRAMStart && address <= addr.HRAMEnd:
		m.hram[address-addr.HRAMStart] = value
	case address == addr.IE:
		m.ieReg = value
	case address >= addr.IOStart && address <= addr.IOEnd:
		m.io[address-addr.IOStart] = value
	default:
		slog.Warn("mmu: write to unmapped address ignored", "address", fmt.Sprintf("0x%04X", address))
	}
}

// bankIndex resolves SVBK to a wramBankN slot: value 0 promotes to
// bank 1, otherwise the low 3 bits select banks 1-7 (index 0-6).
func (m *MMU) bankIndex() uint8 {
	bank := m.svbk & 0x07
	if bank == 0 {
		bank = 1
	}
	return bank - 1
}

func (m *MMU) isPPURegister(address uint16) bool {
	return address >= addr.LCDC && address <= addr.WX && address != addr.DMA
}

// ignoredRegister covers the non-goal registers (bit-exact audio,
// CGB double-speed switch, HDMA, CGB color palettes): reads return 0,
// writes are dropped.
func (m *MMU) ignoredRegister(address uint16) bool {
	switch {
	case address >= 0xFF10 && address <= 0xFF3F: // APU + wave RAM
		return true
	case address == 0xFF4D: // KEY1 speed switch
		return true
	case address == 0xFF4F: // VBK
		return true
	case address >= 0xFF51 && address <= 0xFF55: // HDMA
		return true
	case address >= addr.BCPS && address <= addr.OCPD: // CGB palettes
		return true
	default:
		return false
	}
}

// State is the serializable MMU half of a save state: WRAM, HRAM, the
// catch-all I/O bank, the CGB WRAM bank select, and the interrupt
// registers. The emulator captures the PPU and cartridge RAM
// separately; timer, joypad, and serial state is not captured.
type State struct {
	WRAMBank0 [0x1000]byte
	WRAMBankN [7][0x1000]byte
	SVBK      uint8
	HRAM      [127]byte
	IO        [0x80]byte
	IF, IE    uint8
}

// State captures the MMU's directly-owned memory for save-state
// serialization.
func (m *MMU) State() State {
	return State{
		WRAMBank0: m.wramBank0, WRAMBankN: m.wramBankN, SVBK: m.svbk,
		HRAM: m.hram, IO: m.io,
		IF: m.ifReg, IE: m.ieReg,
	}
}

// Restore overwrites the MMU's directly-owned memory from a previously
// captured State.
func (m *MMU) Restore(s State) {
	m.wramBank0, m.wramBankN, m.svbk = s.WRAMBank0, s.WRAMBankN, s.SVBK
	m.hram, m.io = s.HRAM, s.IO
	m.ifReg, m.ieReg = s.IF, s.IE
}

// runDMA copies 0xA0 bytes from base = value<<8 into OAM, per the
// documented (non-bit-exact-timing) DMA transfer.
func (m *MMU) runDMA(value uint8) {
	base := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.ppu.Write(addr.OAMStart+i, m.Read(base+i))
	}
	m.io[addr.DMA-addr.IOStart] = value
}
