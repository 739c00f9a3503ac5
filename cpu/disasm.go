package cpu

import "fmt"

// Disassembly is one decoded instruction line, linked to its neighbours so
// the overlay can walk forwards and backwards through variable-length code.
type Disassembly struct {
	Instruction  string
	NextAddr     uint16
	PreviousAddr uint16
}

// Disassemble decodes the address range [start, stop] into display lines
// keyed by instruction address. Reads go through the bus's Peek upgrade
// when it has one, so decoding never triggers register side effects.
func (c *CPU) Disassemble(start, stop uint16) map[uint16]Disassembly {
	peek := c.bus.Read
	if p, ok := c.bus.(Peeker); ok {
		peek = p.Peek
	}

	lines := make(map[uint16]Disassembly)
	addr := uint32(start)
	lineAddr := uint16(0)
	for addr <= uint32(stop) {
		previousAddr := lineAddr
		lineAddr = uint16(addr)

		opcode := peek(uint16(addr))
		addr++
		inst := lookup[opcode]
		text := fmt.Sprintf("$%04X: %s ", lineAddr, inst.Name)

		switch inst.AddrMode {
		case "IMP":
			text += "{IMP}"
		case "IMM":
			value := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("#$%02X {IMM}", value)
		case "ZP0":
			lo := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("$%02X {ZP0}", lo)
		case "ZPX":
			lo := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("$%02X, X {ZPX}", lo)
		case "ZPY":
			lo := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("$%02X, Y {ZPY}", lo)
		case "IZX":
			lo := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("($%02X, X) {IZX}", lo)
		case "IZY":
			lo := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("($%02X), Y {IZY}", lo)
		case "ABS":
			lo := peek(uint16(addr))
			addr++
			hi := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("$%04X {ABS}", uint16(hi)<<8|uint16(lo))
		case "ABX":
			lo := peek(uint16(addr))
			addr++
			hi := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("$%04X, X {ABX}", uint16(hi)<<8|uint16(lo))
		case "ABY":
			lo := peek(uint16(addr))
			addr++
			hi := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("$%04X, Y {ABY}", uint16(hi)<<8|uint16(lo))
		case "IND":
			lo := peek(uint16(addr))
			addr++
			hi := peek(uint16(addr))
			addr++
			text += fmt.Sprintf("($%04X) {IND}", uint16(hi)<<8|uint16(lo))
		case "REL":
			value := peek(uint16(addr))
			rel := uint16(value)
			if rel&0x80 != 0 {
				rel |= 0xFF00
			}
			addr++
			text += fmt.Sprintf("$%02X [$%04X] {REL}", value, uint16(addr)+rel)
		}

		lines[lineAddr] = Disassembly{
			Instruction:  text,
			PreviousAddr: previousAddr,
			NextAddr:     uint16(addr),
		}
	}
	return lines
}
