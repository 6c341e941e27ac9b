// Package disasm decodes a byte stream into Sharp LR35902 assembly
// text, reusing internal/cpu's own opcode mnemonic tables so the
// disassembly can never drift from what the CPU actually executes.
// It is debug-only tooling: nothing here feeds back into execution.
package disasm

import (
	"fmt"
	"strings"

	"github.com/mrosa/dmgcore/internal/cpu"
)

// Instruction is one decoded opcode: its address, raw bytes, and
// rendered mnemonic with any immediate operand substituted in.
type Instruction struct {
	Address uint16
	Bytes   []byte
	Text    string
}

// Bus is the minimal read surface a disassembler needs; internal/mmu
// satisfies it.
type Bus interface {
	Read(address uint16) uint8
}

// Decode disassembles exactly one instruction starting at addr,
// returning it alongside the address immediately following it.
func Decode(bus Bus, addr uint16) (Instruction, uint16) {
	opcode := bus.Read(addr)
	next := addr + 1

	if opcode == 0xCB {
		cb := bus.Read(next)
		text := cpu.CBMnemonic(cb)
		if text == "" {
			text = fmt.Sprintf("DB 0xCB,0x%02X", cb)
		}
		return Instruction{Address: addr, Bytes: []byte{opcode, cb}, Text: text}, next + 1
	}

	template := cpu.Mnemonic(opcode)
	if template == "" {
		return Instruction{Address: addr, Bytes: []byte{opcode}, Text: fmt.Sprintf("DB 0x%02X", opcode)}, next
	}
	if opcode == 0x10 { // STOP: the CPU consumes one padding byte after it
		return Instruction{Address: addr, Bytes: []byte{opcode, bus.Read(next)}, Text: template}, next + 1
	}

	switch {
	case strings.Contains(template, "d16"), strings.Contains(template, "a16"):
		lo, hi := bus.Read(next), bus.Read(next+1)
		value := uint16(hi)<<8 | uint16(lo)
		text := strings.NewReplacer("d16", fmt.Sprintf("0x%04X", value), "a16", fmt.Sprintf("0x%04X", value)).Replace(template)
		return Instruction{Address: addr, Bytes: []byte{opcode, lo, hi}, Text: text}, next + 2

	case strings.Contains(template, "d8"), strings.Contains(template, "r8"), strings.Contains(template, "a8"):
		imm := bus.Read(next)
		text := strings.NewReplacer("d8", fmt.Sprintf("0x%02X", imm), "r8", fmt.Sprintf("%d", int8(imm)), "a8", fmt.Sprintf("0x%02X", imm)).Replace(template)
		return Instruction{Address: addr, Bytes: []byte{opcode, imm}, Text: text}, next + 1

	default:
		return Instruction{Address: addr, Bytes: []byte{opcode}, Text: template}, next
	}
}

// DecodeRange disassembles count consecutive instructions starting at
// addr.
func DecodeRange(bus Bus, addr uint16, count int) []Instruction {
	out := make([]Instruction, 0, count)
	for i := 0; i < count; i++ {
		var inst Instruction
		inst, addr = Decode(bus, addr)
		out = append(out, inst)
	}
	return out
}
