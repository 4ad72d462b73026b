package cpu

import (
	"fmt"

	"github.com/nullstep/pocketcore/bit"
)

// Opcode is one decoded instruction's handler; it returns the number of
// T-cycles the instruction consumed.
type Opcode func(*CPU) int

func unimplemented(c *CPU) int {
	panic(fmt.Sprintf("cpu: unimplemented opcode 0x%04X", c.currentOpcode))
}

func (c *CPU) getR8(idx uint8) uint8 {
	switch idx {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.ReadCPU(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) setR8(idx uint8, v uint8) {
	switch idx {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.bus.WriteCPU(c.getHL(), v)
	default:
		c.a = v
	}
}

// getR16Group1 selects the BC/DE/HL/SP quartet used by 0x01/0x11/0x21/0x31-style
// opcodes and 0x03/0x13/.../0x0B/0x1B/... INC/DEC r16 opcodes.
func (c *CPU) getR16Group1(idx uint8) uint16 {
	switch idx {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.sp
	}
}

func (c *CPU) setR16Group1(idx uint8, v uint16) {
	switch idx {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.sp = v
	}
}

func (c *CPU) execute(opcode uint8) int {
	return opcodeMap[opcode](c)
}

var opcodeMap [256]Opcode

func init() {
	for i := range opcodeMap {
		opcodeMap[i] = unimplemented
	}

	registerIrregularOpcodes()
	registerLoadBlock()
	registerALUBlock()
}

// registerLoadBlock fills 0x40-0x7F (LD r,r') except 0x76 (HALT).
func registerLoadBlock() {
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			op := 0x40 + dst*8 + src
			if op == 0x76 {
				continue
			}
			d, s := dst, src
			opcodeMap[op] = func(c *CPU) int {
				c.setR8(d, c.getR8(s))
				if d == 6 || s == 6 {
					return 8
				}
				return 4
			}
		}
	}

	opcodeMap[0x76] = func(c *CPU) int {
		c.halted = true
		return 4
	}
}

// registerALUBlock fills 0x80-0xBF: ADD/ADC/SUB/SBC/AND/XOR/OR/CP A,r.
func registerALUBlock() {
	ops := [8]func(*CPU, uint8){
		(*CPU).addToA,
		(*CPU).adc,
		(*CPU).sub,
		(*CPU).sbc,
		(*CPU).and,
		(*CPU).xor,
		(*CPU).or,
		(*CPU).cp,
	}

	for row := uint8(0); row < 8; row++ {
		for src := uint8(0); src < 8; src++ {
			op := 0x80 + row*8 + src
			apply, s := ops[row], src
			opcodeMap[op] = func(c *CPU) int {
				apply(c, c.getR8(s))
				if s == 6 {
					return 8
				}
				return 4
			}
		}
	}
}

func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.isSetFlag(zeroFlag)
	case 1:
		return c.isSetFlag(zeroFlag)
	case 2:
		return !c.isSetFlag(carryFlag)
	default:
		return c.isSetFlag(carryFlag)
	}
}

func registerIrregularOpcodes() {
	opcodeMap[0x00] = func(c *CPU) int { return 4 }

	for i := uint8(0); i < 4; i++ {
		group := i
		opcodeMap[0x01+group*0x10] = func(c *CPU) int {
			c.setR16Group1(group, c.readImmediateWord())
			return 12
		}
		opcodeMap[0x03+group*0x10] = func(c *CPU) int {
			c.setR16Group1(group, c.getR16Group1(group)+1)
			return 8
		}
		opcodeMap[0x0B+group*0x10] = func(c *CPU) int {
			c.setR16Group1(group, c.getR16Group1(group)-1)
			return 8
		}
		opcodeMap[0x09+group*0x10] = func(c *CPU) int {
			c.addToHL(c.getR16Group1(group))
			return 8
		}
	}

	opcodeMap[0x02] = func(c *CPU) int { c.bus.WriteCPU(c.getBC(), c.a); return 8 }
	opcodeMap[0x12] = func(c *CPU) int { c.bus.WriteCPU(c.getDE(), c.a); return 8 }
	opcodeMap[0x22] = func(c *CPU) int { c.bus.WriteCPU(c.getHL(), c.a); c.setHL(c.getHL() + 1); return 8 }
	opcodeMap[0x32] = func(c *CPU) int { c.bus.WriteCPU(c.getHL(), c.a); c.setHL(c.getHL() - 1); return 8 }

	opcodeMap[0x0A] = func(c *CPU) int { c.a = c.bus.ReadCPU(c.getBC()); return 8 }
	opcodeMap[0x1A] = func(c *CPU) int { c.a = c.bus.ReadCPU(c.getDE()); return 8 }
	opcodeMap[0x2A] = func(c *CPU) int { c.a = c.bus.ReadCPU(c.getHL()); c.setHL(c.getHL() + 1); return 8 }
	opcodeMap[0x3A] = func(c *CPU) int { c.a = c.bus.ReadCPU(c.getHL()); c.setHL(c.getHL() - 1); return 8 }

	incDecSlots := []struct {
		opInc, opDec uint8
		idx          uint8
	}{
		{0x04, 0x05, 0}, {0x0C, 0x0D, 1}, {0x14, 0x15, 2}, {0x1C, 0x1D, 3},
		{0x24, 0x25, 4}, {0x2C, 0x2D, 5}, {0x34, 0x35, 6}, {0x3C, 0x3D, 7},
	}
	for _, slot := range incDecSlots {
		idx := slot.idx
		opcodeMap[slot.opInc] = func(c *CPU) int {
			if idx == 6 {
				v := c.bus.ReadCPU(c.getHL())
				c.inc(&v)
				c.bus.WriteCPU(c.getHL(), v)
				return 12
			}
			v := c.getR8(idx)
			c.inc(&v)
			c.setR8(idx, v)
			return 4
		}
		opcodeMap[slot.opDec] = func(c *CPU) int {
			if idx == 6 {
				v := c.bus.ReadCPU(c.getHL())
				c.dec(&v)
				c.bus.WriteCPU(c.getHL(), v)
				return 12
			}
			v := c.getR8(idx)
			c.dec(&v)
			c.setR8(idx, v)
			return 4
		}
	}

	ldImmSlots := []struct {
		op  uint8
		idx uint8
	}{
		{0x06, 0}, {0x0E, 1}, {0x16, 2}, {0x1E, 3}, {0x26, 4}, {0x2E, 5}, {0x36, 6}, {0x3E, 7},
	}
	for _, slot := range ldImmSlots {
		idx := slot.idx
		opcodeMap[slot.op] = func(c *CPU) int {
			c.setR8(idx, c.readImmediate())
			if idx == 6 {
				return 12
			}
			return 8
		}
	}

	opcodeMap[0x07] = func(c *CPU) int { c.rotate(&c.a, true, false, false); return 4 }
	opcodeMap[0x17] = func(c *CPU) int { c.rotate(&c.a, true, true, false); return 4 }
	opcodeMap[0x0F] = func(c *CPU) int { c.rotate(&c.a, false, false, false); return 4 }
	opcodeMap[0x1F] = func(c *CPU) int { c.rotate(&c.a, false, true, false); return 4 }

	opcodeMap[0x08] = func(c *CPU) int {
		a := c.readImmediateWord()
		c.bus.WriteCPU(a, bit.Low(c.sp))
		c.bus.WriteCPU(a+1, bit.High(c.sp))
		return 20
	}

	opcodeMap[0x10] = func(c *CPU) int { c.stopped = true; c.readImmediate(); return 4 }

	opcodeMap[0x18] = func(c *CPU) int { c.jr(int8(c.readImmediate())); return 12 }
	for cc := uint8(0); cc < 4; cc++ {
		condCode := cc
		opcodeMap[0x20+condCode*0x08] = func(c *CPU) int {
			offset := int8(c.readImmediate())
			if c.condition(condCode) {
				c.jr(offset)
				return 12
			}
			return 8
		}
	}

	opcodeMap[0x27] = func(c *CPU) int { c.daa(); return 4 }
	opcodeMap[0x2F] = func(c *CPU) int {
		c.a = ^c.a
		c.setFlag(subFlag)
		c.setFlag(halfCarryFlag)
		return 4
	}
	opcodeMap[0x37] = func(c *CPU) int {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlag(carryFlag)
		return 4
	}
	opcodeMap[0x3F] = func(c *CPU) int {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
		return 4
	}

	registerStackAndControlFlow()
}

func registerStackAndControlFlow() {
	r16Group2 := [4]func(*CPU) uint16{
		(*CPU).getBC, (*CPU).getDE, (*CPU).getHL, (*CPU).getAF,
	}
	setR16Group2 := [4]func(*CPU, uint16){
		(*CPU).setBC, (*CPU).setDE, (*CPU).setHL, (*CPU).setAF,
	}

	for i := uint8(0); i < 4; i++ {
		idx := i
		opcodeMap[0xC1+idx*0x10] = func(c *CPU) int {
			setR16Group2[idx](c, c.popStack())
			return 12
		}
		opcodeMap[0xC5+idx*0x10] = func(c *CPU) int {
			c.pushStack(r16Group2[idx](c))
			return 16
		}
	}

	aluImmOps := [8]func(*CPU, uint8){
		(*CPU).addToA, (*CPU).adc, (*CPU).sub, (*CPU).sbc, (*CPU).and, (*CPU).xor, (*CPU).or, (*CPU).cp,
	}
	aluImmOpcodes := [8]uint8{0xC6, 0xCE, 0xD6, 0xDE, 0xE6, 0xEE, 0xF6, 0xFE}
	for i, op := range aluImmOpcodes {
		apply := aluImmOps[i]
		opcodeMap[op] = func(c *CPU) int {
			apply(c, c.readImmediate())
			return 8
		}
	}

	for i := uint8(0); i < 8; i++ {
		vector := i * 8
		opcodeMap[0xC7+i*0x08] = func(c *CPU) int {
			c.pushStack(c.pc)
			c.pc = uint16(vector)
			return 16
		}
	}

	opcodeMap[0xC3] = func(c *CPU) int { c.pc = c.readImmediateWord(); return 16 }
	opcodeMap[0xE9] = func(c *CPU) int { c.pc = c.getHL(); return 4 }
	opcodeMap[0xCD] = func(c *CPU) int {
		target := c.readImmediateWord()
		c.pushStack(c.pc)
		c.pc = target
		return 24
	}
	opcodeMap[0xC9] = func(c *CPU) int { c.pc = c.popStack(); return 16 }
	opcodeMap[0xD9] = func(c *CPU) int {
		c.pc = c.popStack()
		c.imeNext = true
		return 16
	}

	for cc := uint8(0); cc < 4; cc++ {
		condCode := cc
		opcodeMap[0xC2+condCode*0x08] = func(c *CPU) int {
			target := c.readImmediateWord()
			if c.condition(condCode) {
				c.pc = target
				return 16
			}
			return 12
		}
		opcodeMap[0xC4+condCode*0x08] = func(c *CPU) int {
			target := c.readImmediateWord()
			if c.condition(condCode) {
				c.pushStack(c.pc)
				c.pc = target
				return 24
			}
			return 12
		}
		opcodeMap[0xC0+condCode*0x08] = func(c *CPU) int {
			if c.condition(condCode) {
				c.pc = c.popStack()
				return 20
			}
			return 8
		}
	}

	opcodeMap[0xE0] = func(c *CPU) int {
		offset := c.readImmediate()
		c.bus.WriteCPU(0xFF00+uint16(offset), c.a)
		return 12
	}
	opcodeMap[0xF0] = func(c *CPU) int {
		offset := c.readImmediate()
		c.a = c.bus.ReadCPU(0xFF00 + uint16(offset))
		return 12
	}
	opcodeMap[0xE2] = func(c *CPU) int { c.bus.WriteCPU(0xFF00+uint16(c.c), c.a); return 8 }
	opcodeMap[0xF2] = func(c *CPU) int { c.a = c.bus.ReadCPU(0xFF00 + uint16(c.c)); return 8 }
	opcodeMap[0xEA] = func(c *CPU) int { c.bus.WriteCPU(c.readImmediateWord(), c.a); return 16 }
	opcodeMap[0xFA] = func(c *CPU) int { c.a = c.bus.ReadCPU(c.readImmediateWord()); return 16 }

	opcodeMap[0xF3] = func(c *CPU) int { c.ime = false; c.imeNext = false; return 4 }
	opcodeMap[0xFB] = func(c *CPU) int { c.imeNext = true; return 4 }

	opcodeMap[0xE8] = func(c *CPU) int {
		imm := int8(c.readImmediate())
		c.sp = c.addToSPSigned(imm)
		return 16
	}
	opcodeMap[0xF8] = func(c *CPU) int {
		imm := int8(c.readImmediate())
		c.setHL(c.addToSPSigned(imm))
		return 12
	}
	opcodeMap[0xF9] = func(c *CPU) int { c.sp = c.getHL(); return 8 }
}
