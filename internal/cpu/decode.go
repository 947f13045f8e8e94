package cpu

import "github.com/lesleyrs/Peanut-GB/internal/hardware"

func (c *CPU) fault(kind hardware.FaultKind, addr uint16) uint8 {
	if c.Fault != nil {
		c.Fault.Fatal(kind, addr)
		return 4
	}
	panic(&hardware.FaultError{Kind: kind, Addr: addr})
}

func (c *CPU) d8() uint8 {
	v := c.Bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) d16() uint16 {
	lo := c.d8()
	hi := c.d8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) r8() int8 { return int8(c.d8()) }

// execute runs one already-fetched opcode and returns its cycle cost,
// including any conditional-branch bonus.
func (c *CPU) execute(opcode uint8) uint8 {
	if isInvalidOpcode(opcode) {
		return c.fault(hardware.FaultInvalidOpcode, c.PC-1)
	}

	cycles := baseCycles[opcode]

	switch {
	case opcode == 0xCB:
		return c.executeCB()

	// LD r,r' block, 0x40-0x7F excluding HALT at 0x76.
	case opcode >= 0x40 && opcode <= 0x7F && opcode != 0x76:
		src := opcode & 0x07
		dst := (opcode >> 3) & 0x07
		c.setR8(dst, c.getR8(src))
		return cycles

	// ALU A,r block, 0x80-0xBF.
	case opcode >= 0x80 && opcode <= 0xBF:
		op := (opcode >> 3) & 0x07
		v := c.getR8(opcode & 0x07)
		c.aluOp(op, v)
		return cycles
	}

	switch opcode {
	case 0x00: // NOP
	case 0x76: // HALT
		c.halt()
	case 0x10: // STOP: treated as a 2-byte NOP, never reached the PPU/DIV reset.
		c.d8()

	case 0x01:
		c.setBC(c.d16())
	case 0x11:
		c.setDE(c.d16())
	case 0x21:
		c.setHL(c.d16())
	case 0x31:
		c.SP = c.d16()

	case 0x02:
		c.Bus.Write(c.bc(), c.A)
	case 0x12:
		c.Bus.Write(c.de(), c.A)
	case 0x22:
		c.Bus.Write(c.hl(), c.A)
		c.setHL(c.hl() + 1)
	case 0x32:
		c.Bus.Write(c.hl(), c.A)
		c.setHL(c.hl() - 1)

	case 0x0A:
		c.A = c.Bus.Read(c.bc())
	case 0x1A:
		c.A = c.Bus.Read(c.de())
	case 0x2A:
		c.A = c.Bus.Read(c.hl())
		c.setHL(c.hl() + 1)
	case 0x3A:
		c.A = c.Bus.Read(c.hl())
		c.setHL(c.hl() - 1)

	case 0x03:
		c.setBC(c.bc() + 1)
	case 0x13:
		c.setDE(c.de() + 1)
	case 0x23:
		c.setHL(c.hl() + 1)
	case 0x33:
		c.SP++
	case 0x0B:
		c.setBC(c.bc() - 1)
	case 0x1B:
		c.setDE(c.de() - 1)
	case 0x2B:
		c.setHL(c.hl() - 1)
	case 0x3B:
		c.SP--

	case 0x04:
		c.B = c.inc8(c.B)
	case 0x0C:
		c.C = c.inc8(c.C)
	case 0x14:
		c.D = c.inc8(c.D)
	case 0x1C:
		c.E = c.inc8(c.E)
	case 0x24:
		c.H = c.inc8(c.H)
	case 0x2C:
		c.L = c.inc8(c.L)
	case 0x34:
		c.Bus.Write(c.hl(), c.inc8(c.Bus.Read(c.hl())))
	case 0x3C:
		c.A = c.inc8(c.A)

	case 0x05:
		c.B = c.dec8(c.B)
	case 0x0D:
		c.C = c.dec8(c.C)
	case 0x15:
		c.D = c.dec8(c.D)
	case 0x1D:
		c.E = c.dec8(c.E)
	case 0x25:
		c.H = c.dec8(c.H)
	case 0x2D:
		c.L = c.dec8(c.L)
	case 0x35:
		c.Bus.Write(c.hl(), c.dec8(c.Bus.Read(c.hl())))
	case 0x3D:
		c.A = c.dec8(c.A)

	case 0x06:
		c.B = c.d8()
	case 0x0E:
		c.C = c.d8()
	case 0x16:
		c.D = c.d8()
	case 0x1E:
		c.E = c.d8()
	case 0x26:
		c.H = c.d8()
	case 0x2E:
		c.L = c.d8()
	case 0x36:
		c.Bus.Write(c.hl(), c.d8())
	case 0x3E:
		c.A = c.d8()

	case 0x07:
		c.A = c.rlc(c.A)
		c.setFlag(FlagZ, false)
	case 0x0F:
		c.A = c.rrc(c.A)
		c.setFlag(FlagZ, false)
	case 0x17:
		c.A = c.rl(c.A)
		c.setFlag(FlagZ, false)
	case 0x1F:
		c.A = c.rr(c.A)
		c.setFlag(FlagZ, false)

	case 0x08:
		addr := c.d16()
		c.Bus.Write(addr, uint8(c.SP))
		c.Bus.Write(addr+1, uint8(c.SP>>8))
	case 0x09:
		c.setHL(c.add16(c.hl(), c.bc()))
	case 0x19:
		c.setHL(c.add16(c.hl(), c.de()))
	case 0x29:
		c.setHL(c.add16(c.hl(), c.hl()))
	case 0x39:
		c.setHL(c.add16(c.hl(), c.SP))

	case 0x18:
		c.jr()
	case 0x20:
		if !c.flag(FlagZ) {
			c.jr()
			cycles += jrTakenBonus
		} else {
			c.d8()
		}
	case 0x28:
		if c.flag(FlagZ) {
			c.jr()
			cycles += jrTakenBonus
		} else {
			c.d8()
		}
	case 0x30:
		if !c.flag(FlagC) {
			c.jr()
			cycles += jrTakenBonus
		} else {
			c.d8()
		}
	case 0x38:
		if c.flag(FlagC) {
			c.jr()
			cycles += jrTakenBonus
		} else {
			c.d8()
		}

	case 0x27:
		c.daa()
	case 0x2F:
		c.A = ^c.A
		c.setFlag(FlagN, true)
		c.setFlag(FlagH, true)
	case 0x37:
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, true)
	case 0x3F:
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, !c.flag(FlagC))

	case 0xC0:
		if !c.flag(FlagZ) {
			c.PC = c.pop()
			cycles += retTakenBonus
		}
	case 0xC8:
		if c.flag(FlagZ) {
			c.PC = c.pop()
			cycles += retTakenBonus
		}
	case 0xD0:
		if !c.flag(FlagC) {
			c.PC = c.pop()
			cycles += retTakenBonus
		}
	case 0xD8:
		if c.flag(FlagC) {
			c.PC = c.pop()
			cycles += retTakenBonus
		}
	case 0xC9:
		c.PC = c.pop()
	case 0xD9:
		c.PC = c.pop()
		c.IRQ.SetIME(true)

	case 0xC1:
		c.setBC(c.pop())
	case 0xD1:
		c.setDE(c.pop())
	case 0xE1:
		c.setHL(c.pop())
	case 0xF1:
		c.setAF(c.pop())
	case 0xC5:
		c.push(c.bc())
	case 0xD5:
		c.push(c.de())
	case 0xE5:
		c.push(c.hl())
	case 0xF5:
		c.push(c.af())

	case 0xC2:
		if !c.flag(FlagZ) {
			c.PC = c.d16()
			cycles += jpTakenBonus
		} else {
			c.d16()
		}
	case 0xCA:
		if c.flag(FlagZ) {
			c.PC = c.d16()
			cycles += jpTakenBonus
		} else {
			c.d16()
		}
	case 0xD2:
		if !c.flag(FlagC) {
			c.PC = c.d16()
			cycles += jpTakenBonus
		} else {
			c.d16()
		}
	case 0xDA:
		if c.flag(FlagC) {
			c.PC = c.d16()
			cycles += jpTakenBonus
		} else {
			c.d16()
		}
	case 0xC3:
		c.PC = c.d16()
	case 0xE9:
		c.PC = c.hl()

	case 0xC4:
		if !c.flag(FlagZ) {
			c.call()
			cycles += callTakenBonus
		} else {
			c.d16()
		}
	case 0xCC:
		if c.flag(FlagZ) {
			c.call()
			cycles += callTakenBonus
		} else {
			c.d16()
		}
	case 0xD4:
		if !c.flag(FlagC) {
			c.call()
			cycles += callTakenBonus
		} else {
			c.d16()
		}
	case 0xDC:
		if c.flag(FlagC) {
			c.call()
			cycles += callTakenBonus
		} else {
			c.d16()
		}
	case 0xCD:
		c.call()

	case 0xC6:
		c.A = c.add8(c.A, c.d8(), false)
	case 0xCE:
		c.A = c.add8(c.A, c.d8(), c.flag(FlagC))
	case 0xD6:
		c.A = c.sub8(c.A, c.d8(), false)
	case 0xDE:
		c.A = c.sub8(c.A, c.d8(), c.flag(FlagC))
	case 0xE6:
		c.A = c.and8(c.A, c.d8())
	case 0xEE:
		c.A = c.xor8(c.A, c.d8())
	case 0xF6:
		c.A = c.or8(c.A, c.d8())
	case 0xFE:
		c.cp8(c.A, c.d8())

	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push(c.PC)
		c.PC = uint16(opcode&0x38) // 0x00,0x08,...,0x38

	case 0xE0:
		c.Bus.Write(0xFF00+uint16(c.d8()), c.A)
	case 0xF0:
		c.A = c.Bus.Read(0xFF00 + uint16(c.d8()))
	case 0xE2:
		c.Bus.Write(0xFF00+uint16(c.C), c.A)
	case 0xF2:
		c.A = c.Bus.Read(0xFF00 + uint16(c.C))
	case 0xEA:
		c.Bus.Write(c.d16(), c.A)
	case 0xFA:
		c.A = c.Bus.Read(c.d16())

	case 0xE8:
		c.SP = c.addSP8(c.SP, c.r8())
	case 0xF8:
		c.setHL(c.addSP8(c.SP, c.r8()))
	case 0xF9:
		c.SP = c.hl()

	case 0xF3:
		c.IRQ.SetIME(false)
	case 0xFB:
		c.IRQ.SetIME(true)

	default:
		return c.fault(hardware.FaultInvalidOpcode, c.PC-1)
	}

	return cycles
}

func (c *CPU) jr() {
	disp := c.r8()
	c.PC = uint16(int32(c.PC) + int32(disp))
}

func (c *CPU) call() {
	addr := c.d16()
	c.push(c.PC)
	c.PC = addr
}

// aluOp applies one of the eight ALU A,x operations, indexed the same way
// opcode bits 5-3 select them in both the 0x80-0xBF block and CB-less
// immediate forms (ADD,ADC,SUB,SBC,AND,XOR,OR,CP).
func (c *CPU) aluOp(op uint8, v uint8) {
	switch op {
	case 0:
		c.A = c.add8(c.A, v, false)
	case 1:
		c.A = c.add8(c.A, v, c.flag(FlagC))
	case 2:
		c.A = c.sub8(c.A, v, false)
	case 3:
		c.A = c.sub8(c.A, v, c.flag(FlagC))
	case 4:
		c.A = c.and8(c.A, v)
	case 5:
		c.A = c.xor8(c.A, v)
	case 6:
		c.A = c.or8(c.A, v)
	case 7:
		c.cp8(c.A, v)
	}
}
