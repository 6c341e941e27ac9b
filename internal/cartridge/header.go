// Package cartridge parses the 0x0100-0x014F ROM header and implements
// the memory bank controllers (ROM-only, MBC1, MBC2, MBC3+RTC) that
// translate CPU addresses into banked ROM/RAM accesses.
package cartridge

import (
	"fmt"
	"strings"
)

const (
	titleAddress         = 0x0134
	titleLength          = 16
	cgbFlagAddress       = 0x0143
	newLicenseeAddress   = 0x0144
	sgbFlagAddress       = 0x0146
	typeAddress          = 0x0147
	romSizeAddress       = 0x0148
	ramSizeAddress       = 0x0149
	destinationAddress   = 0x014A
	oldLicenseeAddress   = 0x014B
)

// Type identifies which MBC family a cartridge type byte selects.
type Type uint8

const (
	TypeROMOnly Type = iota
	TypeMBC1
	TypeMBC2
	TypeMBC3
	TypeUnsupported
)

// Region is the destination-code field at 0x014A.
type Region uint8

const (
	RegionJapan Region = iota
	RegionOverseas
)

// Header holds the fully decoded cartridge metadata.
type Header struct {
	Title        string
	CartType     uint8
	MBCType      Type
	HasRAM       bool
	HasBattery   bool
	HasTimer     bool
	ROMSize      int
	RAMSize      int
	Region       Region
	SupportsSGB  bool
	CGBFlag      uint8
	Licensee     string
}

// ParseHeader decodes the header embedded in a raw ROM image. An error
// is returned for an image too short to hold the header and for a
// cartridge type byte the core does not recognize; the latter is
// treated as fatal rather than falling back to a guessed MBC family.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, fmt.Errorf("cartridge: ROM too small to contain a header (%d bytes)", len(rom))
	}

	h := Header{
		Title:       parseTitle(rom),
		CartType:    rom[typeAddress],
		ROMSize:     romSizeBytes(rom[romSizeAddress]),
		RAMSize:     ramSizeBytes(rom[ramSizeAddress]),
		Region:      parseRegion(rom[destinationAddress]),
		SupportsSGB: rom[sgbFlagAddress] == 0x03,
		CGBFlag:     rom[cgbFlagAddress],
		Licensee:    parseLicensee(rom),
	}

	mbc, ram, battery, timer, ok := classify(h.CartType)
	if !ok {
		return Header{}, fmt.Errorf("cartridge: unsupported cartridge type byte 0x%02X", h.CartType)
	}
	h.MBCType = mbc
	h.HasRAM = ram
	h.HasBattery = battery
	h.HasTimer = timer

	return h, nil
}

func parseTitle(rom []byte) string {
	raw := rom[titleAddress : titleAddress+titleLength]
	end := len(raw)
	for i, b := range raw {
		if b == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(raw[:end]))
}

func parseRegion(b byte) Region {
	if b == 0 {
		return RegionJapan
	}
	return RegionOverseas
}

// parseLicensee resolves the old or new licensee code to a raw string;
// this core does not ship a name table, it just surfaces the code for
// log context.
func parseLicensee(rom []byte) string {
	if rom[oldLicenseeAddress] == 0x33 {
		return string(rom[newLicenseeAddress : newLicenseeAddress+2])
	}
	return fmt.Sprintf("%02X", rom[oldLicenseeAddress])
}

func romSizeBytes(b byte) int {
	if b > 0x08 {
		return 32 * 1024 << 1 // unknown code, assume smallest sane size doubled
	}
	return 32 * 1024 << b
}

func ramSizeBytes(b byte) int {
	switch b {
	case 0x00:
		return 0
	case 0x01:
		return 2 * 1024
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	default:
		return 0
	}
}

// classify maps a cartridge type byte to an MBC family and its
// optional features: 0x00 ROM-only, 0x01-0x03 MBC1, 0x05-0x06 MBC2,
// 0x0F-0x13 MBC3.
func classify(cartType uint8) (mbc Type, hasRAM, hasBattery, hasTimer, ok bool) {
	switch cartType {
	case 0x00:
		return TypeROMOnly, false, false, false, true
	case 0x01:
		return TypeMBC1, false, false, false, true
	case 0x02:
		return TypeMBC1, true, false, false, true
	case 0x03:
		return TypeMBC1, true, true, false, true
	case 0x05:
		return TypeMBC2, true, false, false, true
	case 0x06:
		return TypeMBC2, true, true, false, true
	case 0x0F:
		return TypeMBC3, false, true, true, true
	case 0x10:
		return TypeMBC3, true, true, true, true
	case 0x11:
		return TypeMBC3, false, false, false, true
	case 0x12:
		return TypeMBC3, true, false, false, true
	case 0x13:
		return TypeMBC3, true, true, false, true
	default:
		return TypeUnsupported, false, false, false, false
	}
}
