// Package bus implements the 16-bit address space: it decodes every CPU
// read and write down to the owning subsystem (cartridge, work RAM, the
// PPU's VRAM/OAM/registers, timer, serial, joypad, interrupts, or the APU
// register window) and forwards the access there.
package bus

import (
	"github.com/lesleyrs/Peanut-GB/internal/cartridge"
	"github.com/lesleyrs/Peanut-GB/internal/hardware"
)

// Bus wires every address-space owner together behind a single Read/Write
// surface, the role an MMU plays on the real hardware.
type Bus struct {
	Cart *cartridge.Cartridge

	Video      hardware.IOPort
	Timer      hardware.IOPort
	Serial     hardware.IOPort
	Interrupts hardware.IOPort
	Joypad     hardware.IOPort

	BootROM     hardware.BootROMReader
	bootMapped  bool
	AudioHooks  hardware.AudioHooks

	wram [0x2000]byte
	hram [0x7F]byte
	apu  [48]byte
}

// New creates a Bus with the boot ROM mapped in if boot is non-nil.
func New(cart *cartridge.Cartridge, boot hardware.BootROMReader) *Bus {
	return &Bus{Cart: cart, BootROM: boot, bootMapped: boot != nil}
}

// Read dispatches a CPU-visible read to whichever subsystem owns addr.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x0100 && b.bootMapped:
		return b.BootROM.BootROMRead(addr)
	case addr < 0x8000:
		return b.Cart.Read(addr)
	case addr < 0xA000:
		return b.Video.Read(addr)
	case addr < 0xC000:
		return b.Cart.ReadRAM(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00:
		return b.wram[addr-0xE000] // echo RAM
	case addr < 0xFEA0:
		return b.Video.Read(addr)
	case addr < 0xFF00:
		return 0xFF // unusable
	case addr == 0xFF00:
		return b.Joypad.Read(addr)
	case addr >= 0xFF01 && addr <= 0xFF02:
		return b.Serial.Read(addr)
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.Timer.Read(addr)
	case addr == 0xFF0F:
		return b.Interrupts.Read(addr)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.readAPU(addr)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.Video.Read(addr)
	case addr == 0xFF50:
		if b.bootMapped {
			return 0x00
		}
		return 0x01
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.Interrupts.Read(addr)
	}
	return 0xFF
}

// Write dispatches a CPU-visible write to whichever subsystem owns addr.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x8000:
		b.Cart.Write(addr, value)
	case addr < 0xA000:
		b.Video.Write(addr, value)
	case addr < 0xC000:
		b.Cart.WriteRAM(addr, value)
	case addr < 0xE000:
		b.wram[addr-0xC000] = value
	case addr < 0xFE00:
		b.wram[addr-0xE000] = value
	case addr < 0xFEA0:
		b.Video.Write(addr, value)
	case addr < 0xFF00:
		// unusable, discard
	case addr == 0xFF00:
		b.Joypad.Write(addr, value)
	case addr >= 0xFF01 && addr <= 0xFF02:
		b.Serial.Write(addr, value)
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.Timer.Write(addr, value)
	case addr == 0xFF0F:
		b.Interrupts.Write(addr, value)
	case addr == 0xFF46:
		b.runDMA(value)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.writeAPU(addr, value)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.Video.Write(addr, value)
	case addr == 0xFF50:
		if value != 0 {
			b.bootMapped = false
		}
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.Interrupts.Write(addr, value)
	}
}

// ReattachBootROM remaps the boot ROM at 0x0000-0x00FF, undoing whatever
// a prior write to FF50 did. It is a no-op if no boot ROM was configured.
func (b *Bus) ReattachBootROM() {
	b.bootMapped = b.BootROM != nil
}

// runDMA copies 160 bytes from (value<<8) into OAM, the behaviour of a
// write to FF46.
func (b *Bus) runDMA(value uint8) {
	src := uint16(value) << 8
	for i := uint16(0); i < 160; i++ {
		b.Video.Write(0xFE00+i, b.Read(src+i))
	}
}

func (b *Bus) readAPU(addr uint16) uint8 {
	if b.AudioHooks != nil {
		if v, ok := b.AudioHooks.AudioRead(addr); ok {
			return v
		}
	}
	idx := addr - 0xFF10
	return b.apu[idx] | hardware.APUOrMask[idx]
}

func (b *Bus) writeAPU(addr uint16, value uint8) {
	if b.AudioHooks != nil && b.AudioHooks.AudioWrite(addr, value) {
		return
	}
	b.apu[addr-0xFF10] = value
}
