package cpu

import "github.com/nullstep/pocketcore/bit"

func (c *CPU) inc(r *uint8) {
	old := *r
	*r++
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, old&0xF == 0xF)
}

func (c *CPU) dec(r *uint8) {
	old := *r
	*r--
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, old&0xF == 0)
}

// rotate implements RLC/RL/RRC/RR. The accumulator forms (RLCA/RLA/RRCA/RRA)
// always clear Z; the CB-prefixed forms set it from the result.
func (c *CPU) rotate(r *uint8, left, throughCarry, setZero bool) {
	value := *r
	var result uint8
	var carryOut bool

	if left {
		carryOut = value&0x80 != 0
		bit0 := uint8(0)
		if throughCarry && c.isSetFlag(carryFlag) {
			bit0 = 1
		} else if !throughCarry && carryOut {
			bit0 = 1
		}
		result = (value << 1) | bit0
	} else {
		carryOut = value&0x01 != 0
		bit7 := uint8(0)
		if throughCarry && c.isSetFlag(carryFlag) {
			bit7 = 0x80
		} else if !throughCarry && carryOut {
			bit7 = 0x80
		}
		result = (value >> 1) | bit7
	}

	*r = result
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
	if setZero {
		c.setFlagToCondition(zeroFlag, result == 0)
	} else {
		c.resetFlag(zeroFlag)
	}
}

func (c *CPU) sla(r *uint8) {
	carryOut := *r&0x80 != 0
	*r <<= 1
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
}

func (c *CPU) sra(r *uint8) {
	carryOut := *r&0x01 != 0
	*r = (*r >> 1) | (*r & 0x80)
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
}

func (c *CPU) srl(r *uint8) {
	carryOut := *r&0x01 != 0
	*r >>= 1
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
}

func (c *CPU) swap(r *uint8) {
	*r = (*r << 4) | (*r >> 4)
	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) testBit(pos uint8, r uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(pos, r))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func resBit(pos uint8, r *uint8) { *r = bit.Reset(pos, *r) }
func setBit(pos uint8, r *uint8) { *r = bit.Set(pos, *r) }

func (c *CPU) addToA(value uint8) {
	a := c.a
	result := a + value

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, uint16(a)+uint16(value) > 0xFF)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF) > 0xF)

	c.a = result
}

func (c *CPU) adc(value uint8) {
	a := c.a
	carry := c.flagToBit(carryFlag)
	result := a + value + carry

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, uint16(a)+uint16(value)+uint16(carry) > 0xFF)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF)+carry > 0xF)

	c.a = result
}

func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := hl + value

	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, uint32(hl)+uint32(value) > 0xFFFF)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)

	c.setHL(result)
}

// addToSPSigned implements the ADD SP,e8 / LD HL,SP+e8 shared arithmetic:
// flags are computed as an unsigned byte addition against SP's low byte,
// regardless of the immediate's signed interpretation.
func (c *CPU) addToSPSigned(imm int8) uint16 {
	sp := c.sp
	value := uint16(int32(sp) + int32(imm))

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (sp&0xF)+(uint16(uint8(imm))&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, (sp&0xFF)+uint16(uint8(imm)) > 0xFF)

	return value
}

func (c *CPU) sub(value uint8) {
	a := c.a
	result := a - value

	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, a < value)
	c.setFlagToCondition(halfCarryFlag, (a&0xF) < (value&0xF))

	c.a = result
}

func (c *CPU) sbc(value uint8) {
	a := c.a
	carry := c.flagToBit(carryFlag)
	result := int(a) - int(value) - int(carry)

	c.setFlagToCondition(zeroFlag, uint8(result) == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, result < 0)
	c.setFlagToCondition(halfCarryFlag, (int(a)&0xF)-(int(value)&0xF)-int(carry) < 0)

	c.a = uint8(result)
}

func (c *CPU) cp(value uint8) {
	a := c.a
	c.sub(value)
	c.a = a // CP discards the result, flags only
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// daa adjusts A to valid packed-BCD after an ADD/ADC or SUB/SBC, taking the
// N flag's branch to decide whether to add back or subtract the correction.
func (c *CPU) daa() {
	a := c.a
	adjust := uint8(0)
	carryOut := c.isSetFlag(carryFlag)

	if c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) {
			adjust |= 0x06
		}
		if carryOut {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if c.isSetFlag(halfCarryFlag) || a&0xF > 0x09 {
			adjust |= 0x06
		}
		if carryOut || a > 0x99 {
			adjust |= 0x60
			carryOut = true
		}
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carryOut)
}

func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.WriteCPU(c.sp, bit.High(value))
	c.sp--
	c.bus.WriteCPU(c.sp, bit.Low(value))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.ReadCPU(c.sp)
	c.sp++
	high := c.bus.ReadCPU(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

func (c *CPU) jr(offset int8) {
	c.pc = uint16(int32(c.pc) + int32(offset))
}
