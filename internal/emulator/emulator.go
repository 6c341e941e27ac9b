// Package emulator owns the CPU/MMU/PPU triple and drives the
// round-robin fetch/tick loop that advances them in lockstep, one CPU
// instruction at a time.
package emulator

import (
	"fmt"
	"log/slog"

	"github.com/mrosa/dmgcore/internal/cartridge"
	"github.com/mrosa/dmgcore/internal/cpu"
	"github.com/mrosa/dmgcore/internal/joypad"
	"github.com/mrosa/dmgcore/internal/mmu"
	"github.com/mrosa/dmgcore/internal/romload"
	"github.com/mrosa/dmgcore/internal/video"
)

// CyclesPerFrame is the T-cycle budget of one full frame: 456 dots per
// scanline times 154 scanlines (144 visible plus 10 V-blank).
const CyclesPerFrame = 456 * 154

// Config collects everything New needs to construct an Emulator. It is
// threaded explicitly rather than read from package-level state, so a
// host can run several emulators (or rebuild one for a new ROM)
// without any shared mutable global.
type Config struct {
	Variant  cpu.Variant
	ROMPath  string
	Headless bool
	Verbose  bool
}

// Emulator owns one cartridge/CPU/MMU/PPU instance and exposes the
// host-window contract: run cycles, read the framebuffer, deliver
// button input.
type Emulator struct {
	cfg  Config
	cart *cartridge.Cartridge
	cpu  *cpu.CPU
	mmu  *mmu.MMU
	ppu  *video.PPU

	instructionCount uint64
	frameCount       uint64
}

// New loads the ROM at cfg.ROMPath, constructs the cartridge's MBC,
// and wires CPU/MMU/PPU together. The PPU's interrupt handler is wired
// to the MMU after construction, mirroring the wiring New already does
// internally for joypad/timer/serial.
func New(cfg Config) (*Emulator, error) {
	rom, err := romload.Load(cfg.ROMPath)
	if err != nil {
		return nil, fmt.Errorf("emulator: loading rom: %w", err)
	}

	cart, err := cartridge.Load(rom, cfg.ROMPath)
	if err != nil {
		return nil, fmt.Errorf("emulator: loading cartridge: %w", err)
	}

	ppu := video.New()
	m := mmu.New(cart, ppu)
	ppu.InterruptHandler = m.RequestInterrupt

	c := cpu.New(cfg.Variant, m)

	e := &Emulator{
		cfg:  cfg,
		cart: cart,
		cpu:  c,
		mmu:  m,
		ppu:  ppu,
	}

	if cfg.Verbose {
		slog.Info("emulator: started", "rom", cfg.ROMPath, "title", cart.Header.Title, "variant", cfg.Variant)
	}

	return e, nil
}

// Step executes exactly one CPU instruction (or interrupt dispatch, or
// a single HALT-waiting cycle), advances the MMU and PPU by the
// T-cycles it consumed, and returns that cycle count.
func (e *Emulator) Step() int {
	cycles := e.cpu.Step(e.mmu.IF(), e.mmu.IE())
	e.instructionCount++

	if bit := e.cpu.ClearedInterruptBit(); bit >= 0 {
		e.mmu.SetIF((e.mmu.IF() &^ (1 << uint(bit))) & 0x1F)
	}

	e.mmu.Tick(cycles)
	e.ppu.Tick(cycles)

	return cycles
}

// RunCycles steps the emulator until at least total T-cycles have
// elapsed, returning the actual number consumed (it may overshoot by
// up to one instruction's worth since Step is not interruptible
// mid-instruction).
func (e *Emulator) RunCycles(total int) int {
	run := 0
	for run < total {
		run += e.Step()
	}
	return run
}

// RunFrame advances the emulator by exactly one frame's worth of
// T-cycles (CyclesPerFrame), which on real hardware produces exactly
// one V-blank entry and thus one frame-ready signal.
func (e *Emulator) RunFrame() {
	e.RunCycles(CyclesPerFrame)
	e.frameCount++
}

// FrameReady reports whether the PPU has a completed frame waiting.
func (e *Emulator) FrameReady() bool { return e.ppu.FrameReady() }

// ConsumeFrame returns the completed framebuffer and clears the
// frame-ready flag, matching the host-window hand-off contract.
func (e *Emulator) ConsumeFrame() *video.FrameBuffer { return e.ppu.ConsumeFrame() }

// PressKey and ReleaseKey deliver button input to the joypad matrix.
func (e *Emulator) PressKey(key joypad.Key)   { e.mmu.PressKey(key) }
func (e *Emulator) ReleaseKey(key joypad.Key) { e.mmu.ReleaseKey(key) }

// InstructionCount and FrameCount expose run counters for logging and
// the telemetry feed.
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }
func (e *Emulator) FrameCount() uint64       { return e.frameCount }

// Cartridge exposes the loaded cartridge's header, read-only, for
// backends that display the game title or need its digest.
func (e *Emulator) Cartridge() *cartridge.Cartridge { return e.cart }

// Close flushes battery RAM and RTC state to their sidecar files.
func (e *Emulator) Close() error {
	return e.cart.Close()
}

// State is the full serializable snapshot of an Emulator, assembled by
// Capture and applied by Restore. internal/savestate wraps this with
// versioning, checksumming, and file I/O.
type State struct {
	CPU        cpu.State
	MMU        mmu.State
	PPU        video.State
	CartRAM    []byte
	CartDigest uint64
}

// Capture snapshots the CPU, MMU, PPU, and cartridge RAM.
func (e *Emulator) Capture() State {
	ram := e.cart.RAM()
	ramCopy := make([]byte, len(ram))
	copy(ramCopy, ram)

	return State{
		CPU:        e.cpu.State(),
		MMU:        e.mmu.State(),
		PPU:        e.ppu.State(),
		CartRAM:    ramCopy,
		CartDigest: e.cart.Digest(),
	}
}

// Restore applies a previously captured State. The cartridge itself is
// never reloaded; s.CartDigest is provided for the caller to verify
// against the currently loaded ROM before calling Restore.
func (e *Emulator) Restore(s State) {
	e.cpu.Restore(s.CPU)
	e.mmu.Restore(s.MMU)
	e.ppu.Restore(s.PPU)
	copy(e.cart.RAM(), s.CartRAM)
}
