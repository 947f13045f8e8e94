// Package gameboy assembles the bus, CPU, PPU, timer, serial, joypad and
// interrupt controller into a single emulator core and drives it one frame
// at a time. Everything under this package runs on the caller's goroutine;
// there is no internal concurrency.
package gameboy

import (
	"github.com/lesleyrs/Peanut-GB/internal/bus"
	"github.com/lesleyrs/Peanut-GB/internal/cartridge"
	"github.com/lesleyrs/Peanut-GB/internal/cpu"
	"github.com/lesleyrs/Peanut-GB/internal/hardware"
	"github.com/lesleyrs/Peanut-GB/internal/interrupts"
	"github.com/lesleyrs/Peanut-GB/internal/joypad"
	"github.com/lesleyrs/Peanut-GB/internal/ppu"
	"github.com/lesleyrs/Peanut-GB/internal/serial"
	"github.com/lesleyrs/Peanut-GB/internal/timer"
	"github.com/sirupsen/logrus"
)

// ClockSpeed is the DMG system clock, in Hz.
const ClockSpeed = 4194304

// CyclesPerFrame is the number of clock cycles in one 154-line frame.
const CyclesPerFrame = 70224

// Emulator bundles every core subsystem for one running cartridge.
type Emulator struct {
	CPU        *cpu.CPU
	Bus        *bus.Bus
	PPU        *ppu.PPU
	Timer      *timer.Controller
	Serial     *serial.Controller
	Joypad     *joypad.State
	Interrupts *interrupts.Service
	Cart       *cartridge.Cartridge
	Header     *cartridge.Header

	Hooks hardware.Hooks
	Log   *logrus.Logger

	bootAttached bool
}

// Init parses the cartridge header from hooks, wires every subsystem
// together, and returns a ready-to-run Emulator. It fails only if the
// header is malformed or names an unsupported MBC.
func Init(hooks hardware.Hooks, opts ...Option) (*Emulator, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	header, err := cartridge.ParseHeader(hooks)
	if err != nil {
		return nil, err
	}

	irq := &interrupts.Service{}
	cart := cartridge.New(header, hooks)
	tmr := timer.New(irq)
	ser := serial.New(irq)
	ser.Device = cfg.serial
	vid := ppu.New(irq)
	vid.Drawer = cfg.drawer
	joy := &joypad.State{}

	b := bus.New(cart, cfg.boot)
	b.Video = vid
	b.Timer = tmr
	b.Serial = ser
	b.Interrupts = irq
	b.Joypad = joy
	b.AudioHooks = cfg.audio

	cpuInst := cpu.New(b, irq)
	cpuInst.Fault = cfg.reporter

	log := cfg.log
	if log == nil {
		log = defaultLogger()
	}

	e := &Emulator{
		CPU:          cpuInst,
		Bus:          b,
		PPU:          vid,
		Timer:        tmr,
		Serial:       ser,
		Joypad:       joy,
		Interrupts:   irq,
		Cart:         cart,
		Header:       header,
		Hooks:        hooks,
		Log:          log,
		bootAttached: cfg.boot != nil,
	}
	e.Reset()

	log.WithFields(logrus.Fields{
		"title": header.Title,
		"mbc":   header.MBC,
	}).Info("cartridge loaded")

	return e, nil
}

// Reset returns the emulator to its initial state: if a boot ROM is
// attached, PC is set to 0x0000 so it runs again; otherwise the registers
// and I/O registers are set directly to the documented post-boot state.
func (e *Emulator) Reset() {
	e.Interrupts.Flag = 0
	e.Interrupts.Enable = 0
	e.Interrupts.IME = false

	e.Timer.Reset(0xAB)
	e.Serial.Reset()
	e.Cart.Reset()

	if e.bootAttached {
		e.CPU.PC = 0x0000
		e.Bus.ReattachBootROM() // boot ROM overlay re-enabled
		e.PPU.Reset(0x84)
		e.Bus.Write(0xFF26, 0xF1) // APU enable placeholder
		return
	}

	c := e.CPU
	c.PC = 0x0100
	c.SP = 0xFFFE
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D

	e.Bus.Write(0xFF40, 0x91) // LCDC
	e.Bus.Write(0xFF47, 0xFC) // BGP
	e.Bus.Write(0xFF48, 0xFF) // OBP0
	e.Bus.Write(0xFF49, 0xFF) // OBP1
	e.Bus.Write(0xFF50, 0x01) // boot ROM already unmapped
	e.PPU.Reset(0x85)
	e.Bus.Write(0xFF26, 0xF1) // APU enable placeholder
}

// RunFrame advances the core until one full frame of scanlines has been
// produced, driving the CPU, timer, serial link, PPU and cartridge RTC in
// lockstep, one instruction at a time.
func (e *Emulator) RunFrame() {
	e.PPU.ConsumeFrame()
	for !e.PPU.HasFrame() {
		e.stepCPU()
	}
}

func (e *Emulator) stepCPU() {
	cycles := e.CPU.Step()
	e.Timer.Advance(cycles)
	e.Serial.Advance(cycles)
	e.PPU.Advance(cycles)
	e.Cart.AdvanceRTC(uint32(cycles))
}

// SetJoypad replaces the full set of currently held buttons.
func (e *Emulator) SetJoypad(held joypad.Button) {
	e.Joypad.Set(held)
}

// GetROMName returns the cartridge's title field, as parsed from the header.
func (e *Emulator) GetROMName() string {
	return e.Header.Title
}

// ColourHash sums the cartridge title bytes, reproducing the checksum the
// Game Boy Color boot ROM uses to pick a default colour palette for
// original-DMG cartridges with no CGB support.
func (e *Emulator) ColourHash() uint8 {
	var sum uint8
	for i := uint32(0); i < 16; i++ {
		sum += e.Hooks.ROMRead(0x134 + i)
	}
	return sum
}

// GetSaveSize returns the number of bytes of cartridge RAM (plus, for
// MBC3, the RTC registers) a host should persist between sessions.
func (e *Emulator) GetSaveSize() uint32 {
	if e.Header.MBC == 2 {
		return 512
	}
	size := uint32(e.Header.RAMBankCount) * 8192
	if e.Header.MBC == 3 {
		size += 5
	}
	return size
}

// SetRTC restores the MBC3 real-time clock from a previously saved value.
// It is a no-op on cartridges without an RTC.
func (e *Emulator) SetRTC(real [5]uint8) {
	if e.Header.MBC == 3 {
		e.Cart.SetRTC(real)
	}
}
