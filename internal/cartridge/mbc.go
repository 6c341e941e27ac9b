package cartridge

import "log/slog"

// MBC is the interface every bank controller presents: a byte read/
// write over the full 16-bit address space, plus access to the parsed
// header. Behavior differs only in how low-half-address-space writes
// are interpreted.
type MBC interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Header() Header
	// RAM returns the battery-backed external RAM for persistence,
	// or nil if the cartridge has none.
	RAM() []byte
}

// ROMOnly cartridges have no banking hardware; writes are dropped with
// a log warning.
type ROMOnly struct {
	header Header
	rom    []byte
}

func newROMOnly(header Header, rom []byte) *ROMOnly {
	return &ROMOnly{header: header, rom: rom}
}

func (m *ROMOnly) Header() Header { return m.header }
func (m *ROMOnly) RAM() []byte    { return nil }

func (m *ROMOnly) Read(address uint16) uint8 {
	if int(address) >= len(m.rom) {
		return 0
	}
	return m.rom[address]
}

func (m *ROMOnly) Write(address uint16, value uint8) {
	slog.Warn("cartridge: write to ROM-only cartridge ignored", "address", address, "value", value)
}

// MBC1 implements the common 7-bit-bank/1-bit-mode controller: the
// mode register reinterprets the top two bank bits as a RAM bank
// select when RAM banking mode is active.
type MBC1 struct {
	header Header
	rom    []byte
	ram    []byte

	bank       uint8
	mode       uint8
	ramEnabled bool
}

func newMBC1(header Header, rom []byte) *MBC1 {
	return &MBC1{
		header: header,
		rom:    rom,
		ram:    make([]byte, header.RAMSize),
		bank:   1,
	}
}

func (m *MBC1) Header() Header { return m.header }
func (m *MBC1) RAM() []byte    { return m.ram }

func (m *MBC1) romBank() uint8 {
	if m.mode == 1 {
		return m.bank & 0x1F
	}
	return m.bank & 0x7F
}

func (m *MBC1) ramBank() uint8 {
	if m.mode == 1 {
		return (m.bank >> 5) & 0x03
	}
	return 0
}

func (m *MBC1) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return readAt(m.rom, int(address))
	case address <= 0x7FFF:
		offset := int(m.romBank())*0x4000 + int(address-0x4000)
		return readAt(m.rom, offset)
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return 0
		}
		offset := int(m.ramBank())*0x2000 + int(address-0xA000)
		return readAt(m.ram, offset)
	default:
		return 0
	}
}

func (m *MBC1) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.bank = (m.bank &^ 0x1F) | bank
	case address <= 0x5FFF:
		m.bank = (m.bank &^ 0x60) | ((value & 0x03) << 5)
	case address <= 0x7FFF:
		switch value {
		case 0, 1:
			m.mode = value
		default:
			m.mode = 0
			slog.Warn("cartridge: invalid MBC1 mode select value, using ROM mode", "value", value)
		}
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		offset := int(m.ramBank())*0x2000 + int(address-0xA000)
		writeAt(m.ram, offset, value)
	}
}

// MBC2 has a built-in 512x4-bit RAM; its enable latch and ROM-bank
// register share 0x0000-0x3FFF, disambiguated by address bit 8.
type MBC2 struct {
	header Header
	rom    []byte
	ram    []byte // 512 nibbles, stored one per byte

	bank       uint8
	ramEnabled bool
}

func newMBC2(header Header, rom []byte) *MBC2 {
	return &MBC2{
		header: header,
		rom:    rom,
		ram:    make([]byte, 512),
		bank:   1,
	}
}

func (m *MBC2) Header() Header { return m.header }
func (m *MBC2) RAM() []byte    { return m.ram }

func (m *MBC2) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return readAt(m.rom, int(address))
	case address <= 0x7FFF:
		offset := int(m.bank)*0x4000 + int(address-0x4000)
		return readAt(m.rom, offset)
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[int(address-0xA000)%len(m.ram)] & 0x0F
	default:
		return 0
	}
}

func (m *MBC2) Write(address uint16, value uint8) {
	switch {
	case address <= 0x3FFF:
		// Bit 8 of the address disambiguates RAM-enable from
		// ROM-bank-select; the least significant bit of the upper
		// address byte is the discriminator, not the whole byte.
		if address&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
			return
		}
		bank := value & 0x0F
		if bank == 0 {
			bank = 1
		}
		m.bank = bank
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.ram[int(address-0xA000)%len(m.ram)] = value & 0x0F
	}
}

func readAt(data []byte, offset int) uint8 {
	if len(data) == 0 {
		return 0
	}
	return data[offset%len(data)]
}

func writeAt(data []byte, offset int, value uint8) {
	if len(data) == 0 {
		return
	}
	data[offset%len(data)] = value
}
