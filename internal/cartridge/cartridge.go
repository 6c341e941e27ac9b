package cartridge

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash"
)

// Cartridge owns the parsed header, the selected MBC, and the battery
// save/load lifecycle. It is the MMU's sole collaborator for
// 0x0000-0x7FFF and 0xA000-0xBFFF.
type Cartridge struct {
	Header Header
	mbc    MBC
	romPath string
	digest  uint64
}

// Load parses rom, selects the matching MBC, attaches battery-backed
// state read from the .sav/.rtc sidecar files next to romPath (if any),
// and returns the ready-to-use cartridge. romPath may be empty for
// debug-only cartridges built directly from a byte slice.
func Load(rom []byte, romPath string) (*Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	c := &Cartridge{
		Header:  header,
		romPath: romPath,
		digest:  xxhash.Sum64(rom),
	}

	switch header.MBCType {
	case TypeROMOnly:
		c.mbc = newROMOnly(header, rom)
	case TypeMBC1:
		c.mbc = newMBC1(header, rom)
	case TypeMBC2:
		c.mbc = newMBC2(header, rom)
	case TypeMBC3:
		c.mbc = newMBC3(header, rom, func() int64 { return time.Now().Unix() })
	default:
		return nil, fmt.Errorf("cartridge: unsupported cartridge type byte 0x%02X", header.CartType)
	}

	slog.Info("cartridge: loaded", "title", header.Title, "type", header.CartType,
		"rom_size", header.ROMSize, "ram_size", header.RAMSize, "digest", fmt.Sprintf("%016x", c.digest))

	if header.HasBattery {
		c.loadBattery()
	}

	return c, nil
}

// Read/Write delegate to the selected MBC.
func (c *Cartridge) Read(address uint16) uint8       { return c.mbc.Read(address) }
func (c *Cartridge) Write(address uint16, v uint8)   { c.mbc.Write(address, v) }

// Digest returns the xxhash fingerprint of the raw ROM image, used for
// log context and to match a save state to the ROM it was taken from.
// Sidecar save-file names derive from the ROM path alone.
func (c *Cartridge) Digest() uint64 { return c.digest }

// RAM exposes the MBC's battery/work RAM backing slice directly, for
// save-state serialization and battery persistence. Returns nil for
// cartridges with no RAM.
func (c *Cartridge) RAM() []byte { return c.mbc.RAM() }

func (c *Cartridge) savePath() string  { return sidecarPath(c.romPath, ".sav") }
func (c *Cartridge) rtcPath() string   { return sidecarPath(c.romPath, ".rtc") }

func sidecarPath(romPath, ext string) string {
	if romPath == "" {
		return ""
	}
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + ext
}

func (c *Cartridge) loadBattery() {
	path := c.savePath()
	if path == "" {
		return
	}

	ram := c.mbc.RAM()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cartridge: failed to read battery save", "path", path, "error", err)
		}
		return
	}
	if len(data) != len(ram) {
		slog.Warn("cartridge: battery save size mismatch, ignoring", "path", path, "want", len(ram), "got", len(data))
		return
	}
	copy(ram, data)

	if m3, ok := c.mbc.(*MBC3); ok && m3.RTC() != nil {
		c.loadRTC(m3.RTC())
	}
}

func (c *Cartridge) loadRTC(rtc *RTC) {
	data, err := os.ReadFile(c.rtcPath())
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cartridge: failed to read RTC epoch", "path", c.rtcPath(), "error", err)
		}
		return
	}
	if len(data) != 8 {
		slog.Warn("cartridge: malformed RTC sidecar, ignoring", "path", c.rtcPath())
		return
	}
	rtc.Epoch = int64(binary.BigEndian.Uint64(data))
}

// Close flushes battery-backed RAM (and, for MBC3, the RTC epoch) to
// the sidecar files. The emulator calls this deterministically on
// shutdown; it is not relied on as a finalizer.
func (c *Cartridge) Close() error {
	if !c.Header.HasBattery {
		return nil
	}
	path := c.savePath()
	if path == "" {
		return nil
	}

	if err := os.WriteFile(path, c.mbc.RAM(), 0o644); err != nil {
		slog.Warn("cartridge: failed to write battery save", "path", path, "error", err)
		return err
	}

	if m3, ok := c.mbc.(*MBC3); ok && m3.RTC() != nil {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(m3.RTC().Epoch))
		if err := os.WriteFile(c.rtcPath(), buf, 0o644); err != nil {
			slog.Warn("cartridge: failed to write RTC epoch", "path", c.rtcPath(), "error", err)
			return err
		}
	}

	return nil
}
