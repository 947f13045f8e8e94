package serial

import (
	"testing"

	"github.com/lesleyrs/Peanut-GB/internal/hardware"
	"github.com/lesleyrs/Peanut-GB/internal/interrupts"
)

// advance runs the controller forward by n cycles, split into chunks since
// Advance takes a uint8.
func advance(c *Controller, n int) {
	for n > 0 {
		step := n
		if step > 255 {
			step = 255
		}
		c.Advance(uint8(step))
		n -= step
	}
}

type echoDevice struct{ got uint8 }

func (e *echoDevice) Transfer(out uint8) (uint8, hardware.SerialResult) {
	e.got = out
	return ^out, hardware.SerialSuccess
}

func TestTransferWithPartnerCompletes(t *testing.T) {
	irq := &interrupts.Service{}
	c := New(irq)
	dev := &echoDevice{}
	c.Device = dev

	c.Write(0xFF01, 0x3C)
	c.Write(0xFF02, 0x81) // start, internal clock

	advance(c, transferCycles)

	if dev.got != 0x3C {
		t.Fatalf("expected partner to receive 0x3C, got %#02x", dev.got)
	}
	if got := c.Read(0xFF01); got != ^uint8(0x3C) {
		t.Fatalf("expected SB to hold the echoed byte, got %#02x", got)
	}
	if c.Read(0xFF02)&0x80 != 0 {
		t.Fatalf("expected transfer-active bit cleared after completion")
	}
	if irq.Flag&interrupts.Serial == 0 {
		t.Fatalf("expected a serial interrupt to be requested")
	}
}

func TestInternalClockWithNoPartnerFloatsHigh(t *testing.T) {
	irq := &interrupts.Service{}
	c := New(irq)
	c.Write(0xFF01, 0x00)
	c.Write(0xFF02, 0x81)

	advance(c, transferCycles)

	if got := c.Read(0xFF01); got != 0xFF {
		t.Fatalf("expected SB to float high with no partner, got %#02x", got)
	}
}

func TestExternalClockWithNoPartnerNeverCompletes(t *testing.T) {
	irq := &interrupts.Service{}
	c := New(irq)
	c.Write(0xFF02, 0x80) // start, external clock
	advance(c, transferCycles*4)

	if c.Read(0xFF02)&0x80 == 0 {
		t.Fatalf("expected transfer to remain pending without a clock source")
	}
	if irq.Flag&interrupts.Serial != 0 {
		t.Fatalf("expected no interrupt without a completed transfer")
	}
}
