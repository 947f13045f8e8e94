package cpu

// executeCB reads and executes one CB-prefixed opcode. The CB byte itself
// was not counted in baseCycles; cbCycles gives the full cost on its own.
func (c *CPU) executeCB() uint8 {
	opcode := c.d8()
	reg := opcode & 0x07
	class := opcode >> 6
	bitIdx := (opcode >> 3) & 0x07

	v := c.getR8(reg)

	switch class {
	case 1: // BIT b,r
		c.bit(bitIdx, v)
		return cbCycles[opcode]
	case 2: // RES b,r
		c.setR8(reg, v&^(1<<bitIdx))
		return cbCycles[opcode]
	case 3: // SET b,r
		c.setR8(reg, v|(1<<bitIdx))
		return cbCycles[opcode]
	}

	// class 0: rotate/shift group, selected by bits 5-3.
	var result uint8
	switch bitIdx {
	case 0:
		result = c.rlc(v)
	case 1:
		result = c.rrc(v)
	case 2:
		result = c.rl(v)
	case 3:
		result = c.rr(v)
	case 4:
		result = c.sla(v)
	case 5:
		result = c.sra(v)
	case 6:
		result = c.swap(v)
	case 7:
		result = c.srl(v)
	}
	c.setR8(reg, result)
	return cbCycles[opcode]
}
