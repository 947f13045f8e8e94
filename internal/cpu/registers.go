// Package cpu implements the Sharp LR35902 instruction set: register file,
// flag arithmetic, opcode dispatch and interrupt servicing.
package cpu

import "github.com/lesleyrs/Peanut-GB/internal/hardware"

// Flag bit positions within F, the low nibble of which is always zero.
const (
	FlagZ uint8 = 1 << 7
	FlagN uint8 = 1 << 6
	FlagH uint8 = 1 << 5
	FlagC uint8 = 1 << 4
)

// CPU holds the full visible register file plus the small amount of extra
// state (HALT) the instruction set needs to track across Step calls.
type CPU struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16

	halted bool

	Bus   Memory
	IRQ   Interrupts
	Fault hardware.ErrorReporter
}

// Memory is the subset of bus.Bus the CPU needs: byte-addressed read/write
// over the full 16-bit space.
type Memory interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Interrupts is the subset of interrupts.Service the CPU drives directly.
type Interrupts interface {
	Pending() bool
	Vector() uint16
	IMEEnabled() bool
	SetIME(bool)
}

// New creates a CPU wired to the given bus and interrupt controller. PC
// starts at 0x0000 so that a boot ROM, if mapped, runs first; callers that
// skip the boot ROM should set PC and the register file to the documented
// post-boot state themselves.
func New(bus Memory, irq Interrupts) *CPU {
	return &CPU{Bus: bus, IRQ: irq}
}

func (c *CPU) flag(f uint8) bool { return c.F&f != 0 }

func (c *CPU) setFlag(f uint8, set bool) {
	if set {
		c.F |= f
	} else {
		c.F &^= f
	}
}

func (c *CPU) bc() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) de() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) hl() uint16 { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) af() uint16 { return uint16(c.A)<<8 | uint16(c.F&0xF0) }

func (c *CPU) setBC(v uint16) { c.B, c.C = uint8(v>>8), uint8(v) }
func (c *CPU) setDE(v uint16) { c.D, c.E = uint8(v>>8), uint8(v) }
func (c *CPU) setHL(v uint16) { c.H, c.L = uint8(v>>8), uint8(v) }
func (c *CPU) setAF(v uint16) { c.A, c.F = uint8(v>>8), uint8(v)&0xF0 }

// reg8 returns a pointer to one of the eight 8-bit registers addressed by
// a standard 3-bit field (B,C,D,E,H,L,(HL),A). Callers must special-case
// index 6, which addresses memory rather than a register.
func (c *CPU) reg8(i uint8) *uint8 {
	switch i & 0x07 {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	case 7:
		return &c.A
	}
	return nil
}

// getR8 reads logical register index i, routing index 6 through (HL).
func (c *CPU) getR8(i uint8) uint8 {
	if i&0x07 == 6 {
		return c.Bus.Read(c.hl())
	}
	return *c.reg8(i)
}

// setR8 writes logical register index i, routing index 6 through (HL).
func (c *CPU) setR8(i uint8, v uint8) {
	if i&0x07 == 6 {
		c.Bus.Write(c.hl(), v)
		return
	}
	*c.reg8(i) = v
}

func (c *CPU) push(v uint16) {
	c.SP--
	c.Bus.Write(c.SP, uint8(v>>8))
	c.SP--
	c.Bus.Write(c.SP, uint8(v))
}

func (c *CPU) pop() uint16 {
	lo := c.Bus.Read(c.SP)
	c.SP++
	hi := c.Bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}
