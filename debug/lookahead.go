package debug

// Opcode classification tables for breakpoint lookahead: which opcodes are
// some form of jump, and which read or write through a computed address
// rather than touching only registers. Mirrors the interpreter's own
// decoding, just grouped by what the debugger needs to predict ahead of
// execution instead of by what performing the instruction needs.
var jumpOpcodes = map[byte]bool{
	0x18: true, 0x20: true, 0x28: true, 0x30: true, 0x38: true, // JR, JR cc
	0xC0: true, 0xC2: true, 0xC3: true, 0xC4: true, 0xC7: true,
	0xC8: true, 0xC9: true, 0xCA: true, 0xCC: true, 0xCD: true, 0xCF: true,
	0xD0: true, 0xD2: true, 0xD4: true, 0xD7: true, 0xD8: true, 0xD9: true,
	0xDA: true, 0xDC: true, 0xDF: true, 0xE7: true, 0xE9: true, 0xEF: true,
	0xF7: true, 0xFF: true,
}

var relativeJumps = map[byte]bool{0x18: true, 0x20: true, 0x28: true, 0x30: true, 0x38: true}
var absoluteJumps = map[byte]bool{0xC2: true, 0xC3: true, 0xC4: true, 0xCA: true, 0xCC: true, 0xCD: true, 0xD2: true, 0xD4: true, 0xDA: true, 0xDC: true}
var returnOpcodes = map[byte]bool{0xC0: true, 0xC8: true, 0xC9: true, 0xD0: true, 0xD8: true, 0xD9: true}
var restVectors = map[byte]uint16{0xC7: 0x00, 0xCF: 0x08, 0xD7: 0x10, 0xDF: 0x18, 0xE7: 0x20, 0xEF: 0x28, 0xF7: 0x30, 0xFF: 0x38}

var readAtHL = map[byte]bool{
	0x2A: true, 0x34: true, 0x35: true, 0x3A: true, 0x46: true, 0x4E: true, 0x56: true, 0x5E: true,
	0x66: true, 0x6E: true, 0x7E: true, 0x86: true, 0x8E: true, 0x96: true, 0x9E: true,
	0xA6: true, 0xAE: true, 0xB6: true, 0xBE: true, 0xE9: true,
}
var readAtHLExtended = map[byte]bool{
	0x06: true, 0x0E: true, 0x16: true, 0x1E: true, 0x26: true, 0x2E: true, 0x36: true, 0x3E: true,
	0x46: true, 0x4E: true, 0x56: true, 0x5E: true, 0x66: true, 0x6E: true, 0x76: true, 0x7E: true,
}
var writeAtHL = map[byte]bool{
	0x22: true, 0x32: true, 0x34: true, 0x35: true, 0x36: true, 0x70: true, 0x71: true,
	0x72: true, 0x73: true, 0x74: true, 0x75: true, 0x77: true,
}
var writeAtHLExtended = map[byte]bool{
	0x06: true, 0x0E: true, 0x16: true, 0x1E: true, 0x26: true, 0x2E: true, 0x36: true, 0x3E: true,
	0x86: true, 0x8E: true, 0x96: true, 0x9E: true, 0xA6: true, 0xAE: true, 0xB6: true, 0xBE: true,
	0xC6: true, 0xCE: true, 0xD6: true, 0xDE: true, 0xE6: true, 0xEE: true, 0xF6: true, 0xFE: true,
}
var writeA16 = map[byte]bool{0x08: true, 0xEA: true}

// Lookahead checks whether the instruction about to execute would trip any
// registered breakpoint, without performing it. It predicts jump targets,
// and the addresses of any memory operand a read or write instruction
// touches, classifying by the opcode alone (exactly as the interpreter
// does when deciding how to execute it).
func (d *Debugger) Lookahead() *Breakpoint {
	if len(d.breakpoints) == 0 {
		return nil
	}

	pc := d.cpu.PC()
	opcode := d.bus.ReadDebug(pc)

	if bp, ok := d.find(Breakpoint{Address: pc, Kind: AccessExecute}); ok {
		return &bp
	}

	if jumpOpcodes[opcode] {
		target, ok := d.jumpTarget(pc, opcode)
		if ok {
			if bp, hit := d.find(Breakpoint{Address: target, Kind: AccessJump}); hit {
				return &bp
			}
		}
	}

	if addr, ok := d.readAddress(pc, opcode); ok {
		if bp, hit := d.find(Breakpoint{Address: addr, Kind: AccessRead}); hit {
			return &bp
		}
	}

	if addr, ok := d.writeAddress(pc, opcode); ok {
		if bp, hit := d.find(Breakpoint{Address: addr, Kind: AccessWrite}); hit {
			return &bp
		}
	}

	return nil
}

func (d *Debugger) jumpTarget(pc uint16, opcode byte) (uint16, bool) {
	switch {
	case relativeJumps[opcode]:
		offset := int8(d.bus.ReadDebug(pc + 1))
		return uint16(int32(pc) + 2 + int32(offset)), true
	case absoluteJumps[opcode]:
		low := uint16(d.bus.ReadDebug(pc + 1))
		high := uint16(d.bus.ReadDebug(pc + 2))
		return high<<8 | low, true
	case returnOpcodes[opcode]:
		sp := d.cpu.SP()
		low := uint16(d.bus.ReadDebug(sp))
		high := uint16(d.bus.ReadDebug(sp + 1))
		return high<<8 | low, true
	case opcode == 0xE9:
		return d.cpu.HL(), true
	default:
		if vector, ok := restVectors[opcode]; ok {
			return vector, true
		}
		return 0, false
	}
}

func (d *Debugger) readAddress(pc uint16, opcode byte) (uint16, bool) {
	switch opcode {
	case 0x0A:
		return d.cpu.BC(), true
	case 0x1A:
		return d.cpu.DE(), true
	case 0xF0:
		return 0xFF00 + uint16(d.bus.ReadDebug(pc+1)), true
	case 0xF2:
		return 0xFF00 + uint16(d.cpu.Registers().C), true
	case 0xFA:
		low := uint16(d.bus.ReadDebug(pc + 1))
		high := uint16(d.bus.ReadDebug(pc + 2))
		return high<<8 | low, true
	case 0xCB:
		next := d.bus.ReadDebug(pc + 1)
		if readAtHLExtended[next] {
			return d.cpu.HL(), true
		}
		return 0, false
	default:
		if readAtHL[opcode] {
			return d.cpu.HL(), true
		}
		return 0, false
	}
}

func (d *Debugger) writeAddress(pc uint16, opcode byte) (uint16, bool) {
	switch opcode {
	case 0x02:
		return d.cpu.BC(), true
	case 0x12:
		return d.cpu.DE(), true
	case 0xE0:
		return 0xFF00 + uint16(d.bus.ReadDebug(pc+1)), true
	case 0xE2:
		return 0xFF00 + uint16(d.cpu.Registers().C), true
	case 0xCB:
		next := d.bus.ReadDebug(pc + 1)
		if writeAtHLExtended[next] {
			return d.cpu.HL(), true
		}
		return 0, false
	default:
		if writeA16[opcode] {
			low := uint16(d.bus.ReadDebug(pc + 1))
			high := uint16(d.bus.ReadDebug(pc + 2))
			return high<<8 | low, true
		}
		if writeAtHL[opcode] {
			return d.cpu.HL(), true
		}
		return 0, false
	}
}
