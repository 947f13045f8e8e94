// Package timer implements the DIV/TIMA/TMA/TAC subsystem as two cycle
// accumulators rather than the real hardware's falling-edge detector on the
// DIV multiplexer, which produces the same visible register behaviour for
// every ROM that doesn't rely on rapid DIV writes to glitch TIMA.
package timer

import "github.com/lesleyrs/Peanut-GB/internal/interrupts"

// tacCycles maps TAC's clock-select bits (0-3) to the CPU-cycle period of
// one TIMA increment.
var tacCycles = [4]uint16{1024, 16, 64, 256}

// Controller owns DIV, TIMA, TMA and TAC.
type Controller struct {
	div  uint8
	tima uint8
	tma  uint8
	tac  uint8

	divAccum  uint16
	timaAccum uint16

	IRQ *interrupts.Service
}

// New creates a timer that requests interrupts through irq.
func New(irq *interrupts.Service) *Controller {
	return &Controller{IRQ: irq}
}

// Advance runs the timer forward by cycles CPU clocks, incrementing DIV
// every 256 cycles and TIMA every tacCycles[TAC&3] cycles while TAC's enable
// bit (bit 2) is set. A TIMA overflow reloads it from TMA and requests a
// timer interrupt.
func (c *Controller) Advance(cycles uint8) {
	c.divAccum += uint16(cycles)
	for c.divAccum >= 256 {
		c.divAccum -= 256
		c.div++
	}

	if c.tac&0x04 == 0 {
		return
	}
	period := tacCycles[c.tac&0x03]
	c.timaAccum += uint16(cycles)
	for c.timaAccum >= period {
		c.timaAccum -= period
		c.tima++
		if c.tima == 0 {
			c.tima = c.tma
			c.IRQ.Request(interrupts.Timer)
		}
	}
}

// Read implements hardware.IOPort for FF04-FF07.
func (c *Controller) Read(addr uint16) uint8 {
	switch addr {
	case 0xFF04:
		return c.div
	case 0xFF05:
		return c.tima
	case 0xFF06:
		return c.tma
	case 0xFF07:
		return c.tac | 0xF8
	}
	return 0xFF
}

// Reset clears every counter and sets DIV directly to div, bypassing the
// register-write path (which always forces DIV to zero) so callers can
// restore the documented post-boot value.
func (c *Controller) Reset(div uint8) {
	c.div = div
	c.tima = 0
	c.tma = 0
	c.tac = 0
	c.divAccum = 0
	c.timaAccum = 0
}

// Write implements hardware.IOPort for FF04-FF07. Writing DIV resets both
// the visible register and its sub-cycle accumulator to zero.
func (c *Controller) Write(addr uint16, value uint8) {
	switch addr {
	case 0xFF04:
		c.div = 0
		c.divAccum = 0
	case 0xFF05:
		c.tima = value
	case 0xFF06:
		c.tma = value
	case 0xFF07:
		c.tac = value & 0x07
	}
}
