// Package serial implements the SB/SC link-cable registers as a single
// cycle accumulator that fires one byte exchange every 8 bits' worth of
// clock ticks, standing in for the real hardware's bit-by-bit shift
// register since no ROM can observe the difference a bit at a time.
package serial

import (
	"github.com/lesleyrs/Peanut-GB/internal/hardware"
	"github.com/lesleyrs/Peanut-GB/internal/interrupts"
)

const transferCycles = 4096 // 8 bits at 512 clocks per bit (the internal clock's 8192Hz rate)

// Controller owns SB (FF01) and SC (FF02).
type Controller struct {
	sb uint8
	sc uint8

	accum   uint16
	started bool

	Device hardware.SerialDevice
	IRQ    *interrupts.Service
}

// New creates a serial controller that requests interrupts through irq.
// Device may be nil, meaning no link partner is attached.
func New(irq *interrupts.Service) *Controller {
	return &Controller{IRQ: irq}
}

// Advance runs the transfer clock forward by cycles CPU clocks. It only
// does anything while SC bit 7 (transfer start/active) is set.
func (c *Controller) Advance(cycles uint8) {
	if c.sc&0x80 == 0 {
		c.started = false
		c.accum = 0
		return
	}

	if !c.started {
		c.started = true
		c.accum = 0
	}

	c.accum += uint16(cycles)
	if c.accum < transferCycles {
		return
	}
	c.accum -= transferCycles

	if c.Device != nil {
		in, result := c.Device.Transfer(c.sb)
		if result == hardware.SerialSuccess {
			c.sb = in
			c.sc &^= 0x80
			c.IRQ.Request(interrupts.Serial)
			c.started = false
			return
		}
	}

	if c.sc&0x01 != 0 {
		// internal clock with no partner answering: the shifted-in bit is
		// pulled high and the transfer still completes.
		c.sb = 0xFF
		c.sc &^= 0x80
		c.IRQ.Request(interrupts.Serial)
	}
	c.started = false
}

// Reset clears the transfer clock and its SB/SC registers, returning the
// controller to its power-on state. The link partner, if any, is untouched.
func (c *Controller) Reset() {
	c.sb = 0
	c.sc = 0
	c.accum = 0
	c.started = false
}

// Read implements hardware.IOPort for FF01-FF02.
func (c *Controller) Read(addr uint16) uint8 {
	if addr == 0xFF01 {
		return c.sb
	}
	return c.sc | 0x7E
}

// Write implements hardware.IOPort for FF01-FF02.
func (c *Controller) Write(addr uint16, value uint8) {
	if addr == 0xFF01 {
		c.sb = value
		return
	}
	c.sc = value & 0x81
	if value&0x80 != 0 {
		c.started = false
		c.accum = 0
	}
}
