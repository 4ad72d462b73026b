package cpu

// cbOpcodeMap is built once from the CB-prefixed instruction space's
// regular structure: the low 3 bits select one of B,C,D,E,H,L,(HL),A, and
// the remaining bits select the operation (rotate/shift group, BIT, RES, or
// SET) and, for the latter three, a bit index 0-7.
var cbOpcodeMap [256]Opcode

func init() {
	shiftOps := [8]func(*CPU, *uint8){
		func(c *CPU, r *uint8) { c.rotate(r, true, false, true) },  // RLC
		func(c *CPU, r *uint8) { c.rotate(r, false, false, true) }, // RRC
		func(c *CPU, r *uint8) { c.rotate(r, true, true, true) },   // RL
		func(c *CPU, r *uint8) { c.rotate(r, false, true, true) },  // RR
		(*CPU).sla,
		(*CPU).sra,
		(*CPU).swap,
		(*CPU).srl,
	}

	for row := uint8(0); row < 8; row++ {
		for src := uint8(0); src < 8; src++ {
			op := row*8 + src
			apply, s := shiftOps[row], src
			cbOpcodeMap[op] = func(c *CPU) int {
				if s == 6 {
					v := c.bus.ReadCPU(c.getHL())
					apply(c, &v)
					c.bus.WriteCPU(c.getHL(), v)
					return 16
				}
				v := c.getR8(s)
				apply(c, &v)
				c.setR8(s, v)
				return 8
			}
		}
	}

	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		for src := uint8(0); src < 8; src++ {
			op := 0x40 + bitIdx*8 + src
			b, s := bitIdx, src
			cbOpcodeMap[op] = func(c *CPU) int {
				c.testBit(b, c.getR8(s))
				if s == 6 {
					return 12
				}
				return 8
			}
		}
	}

	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		for src := uint8(0); src < 8; src++ {
			op := 0x80 + bitIdx*8 + src
			b, s := bitIdx, src
			cbOpcodeMap[op] = func(c *CPU) int {
				if s == 6 {
					v := c.bus.ReadCPU(c.getHL())
					resBit(b, &v)
					c.bus.WriteCPU(c.getHL(), v)
					return 16
				}
				v := c.getR8(s)
				resBit(b, &v)
				c.setR8(s, v)
				return 8
			}
		}
	}

	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		for src := uint8(0); src < 8; src++ {
			op := 0xC0 + bitIdx*8 + src
			b, s := bitIdx, src
			cbOpcodeMap[op] = func(c *CPU) int {
				if s == 6 {
					v := c.bus.ReadCPU(c.getHL())
					setBit(b, &v)
					c.bus.WriteCPU(c.getHL(), v)
					return 16
				}
				v := c.getR8(s)
				setBit(b, &v)
				c.setR8(s, v)
				return 8
			}
		}
	}
}

func (c *CPU) executeCB(opcode uint8) int {
	return cbOpcodeMap[opcode](c)
}
