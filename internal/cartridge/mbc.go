package cartridge

import "github.com/lesleyrs/Peanut-GB/internal/hardware"

// Cartridge decodes CPU-visible ROM and cartridge-RAM addresses through the
// bank-switching logic of whichever MBC the header named, then forwards the
// resolved offset to the host via hardware.Hooks. It does not hold ROM or
// RAM bytes itself.
type Cartridge struct {
	Header *Header
	Hooks  hardware.Hooks

	ramEnabled bool

	bank1 uint16 // MBC1: 5-bit bank; MBC2: 4-bit bank; MBC3: 7-bit bank (8-bit if oversized); MBC5: low 8 bits
	bank2 uint8  // MBC1: 2-bit upper bank / RAM bank; MBC5: bit 8 of ROM bank
	mode  uint8  // MBC1 banking mode select (0=simple, 1=advanced)

	ramBankSel uint8

	rtcSelected  bool
	rtcReg       uint8
	rtcReal      [5]uint8 // seconds, minutes, hours, day-low, day-high+flags
	rtcLatched   [5]uint8
	rtcLatchFlag uint8
	rtcSubCycles uint32
}

const clockHz = 4194304

// New builds a Cartridge decoder for the given parsed header, reading ROM
// and cartridge RAM through hooks.
func New(header *Header, hooks hardware.Hooks) *Cartridge {
	c := &Cartridge{Header: header, Hooks: hooks, bank1: 1}
	if header.MBC == 0 {
		c.ramEnabled = header.HasRAM
	}
	return c
}

// Read implements hardware.IOPort for 0x0000-0x7FFF. The 0x0000-0x3FFF
// window is always bank 0, even for MBC1 in advanced mode: bank2's extra
// bits only ever remap the 0x4000-0x7FFF window and cartridge RAM.
func (c *Cartridge) Read(addr uint16) uint8 {
	if addr < 0x4000 {
		return c.Hooks.ROMRead(uint32(addr))
	}
	bank := c.romBank()
	return c.Hooks.ROMRead(uint32(bank)*0x4000 + uint32(addr-0x4000))
}

// Write implements hardware.IOPort for 0x0000-0x7FFF (bank-select writes).
func (c *Cartridge) Write(addr uint16, value uint8) {
	switch c.Header.MBC {
	case 0:
		// ROM-only; writes are ignored.
	case 1:
		c.writeMBC1(addr, value)
	case 2:
		c.writeMBC2(addr, value)
	case 3:
		c.writeMBC3(addr, value)
	case 5:
		c.writeMBC5(addr, value)
	}
}

// romBank resolves the ROM bank mapped at 0x4000-0x7FFF. MBC1 in advanced
// mode (mode==1) dedicates bank2 to RAM banking, so this window falls back
// to bank1 alone; in simple mode bank2 still contributes its bits here as
// the ROM bank's high 2 bits.
func (c *Cartridge) romBank() uint16 {
	switch c.Header.MBC {
	case 1:
		if c.mode == 1 {
			return c.bank1 & c.Header.ROMBankMask
		}
		bank := (uint16(c.bank2) << 5) | c.bank1
		return bank & c.Header.ROMBankMask
	case 3:
		return c.bank1 & c.Header.ROMBankMask
	case 5:
		bank := (uint16(c.bank2) << 8) | c.bank1
		return bank & c.Header.ROMBankMask
	default: // MBC0, MBC2
		return c.bank1 & c.Header.ROMBankMask
	}
}

func (c *Cartridge) writeMBC1(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		c.bank1 = uint16(bank)
	case addr < 0x6000:
		c.bank2 = value & 0x03
	default:
		c.mode = value & 0x01
	}
}

func (c *Cartridge) writeMBC2(addr uint16, value uint8) {
	if addr&0x0100 == 0 {
		c.ramEnabled = value&0x0F == 0x0A
		return
	}
	bank := value & 0x0F
	if bank == 0 {
		bank = 1
	}
	c.bank1 = uint16(bank)
}

func (c *Cartridge) writeMBC3(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		bank := value
		if !c.Header.IsMBC3Oversized {
			bank &= 0x7F
		}
		if bank == 0 {
			bank = 1
		}
		c.bank1 = uint16(bank)
	case addr < 0x6000:
		if value <= 0x03 {
			c.ramBankSel = value
			c.rtcSelected = false
		} else if value >= 0x08 && value <= 0x0C {
			c.rtcReg = value
			c.rtcSelected = true
		}
	default:
		if c.rtcLatchFlag == 0x00 && value == 0x01 {
			c.rtcLatched = c.rtcReal
		}
		c.rtcLatchFlag = value
	}
}

func (c *Cartridge) writeMBC5(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case addr < 0x3000:
		c.bank1 = (c.bank1 &^ 0x00FF) | uint16(value)
	case addr < 0x4000:
		c.bank2 = value & 0x01
	case addr < 0x6000:
		c.ramBankSel = value & 0x0F
	}
}

// ReadRAM implements cartridge-RAM and RTC reads at 0xA000-0xBFFF.
func (c *Cartridge) ReadRAM(addr uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	if c.Header.MBC == 3 && c.rtcSelected {
		idx := c.rtcReg - 0x08
		if int(idx) < len(c.rtcLatched) {
			return c.rtcLatched[idx]
		}
		return 0xFF
	}
	if c.Header.MBC == 2 {
		return 0xF0 | (c.Hooks.CartRAMRead(addr&0x1FF) & 0x0F)
	}
	offset := uint16(c.ramBank())*0x2000 + (addr - 0xA000)
	return c.Hooks.CartRAMRead(offset)
}

// WriteRAM implements cartridge-RAM and RTC writes at 0xA000-0xBFFF.
func (c *Cartridge) WriteRAM(addr uint16, value uint8) {
	if !c.ramEnabled {
		return
	}
	if c.Header.MBC == 3 && c.rtcSelected {
		idx := c.rtcReg - 0x08
		if int(idx) < len(c.rtcReal) {
			c.rtcReal[idx] = value & [5]uint8{0x3F, 0x3F, 0x1F, 0xFF, 0xC1}[idx]
		}
		return
	}
	if c.Header.MBC == 2 {
		c.Hooks.CartRAMWrite(addr&0x1FF, value&0x0F)
		return
	}
	offset := uint16(c.ramBank())*0x2000 + (addr - 0xA000)
	c.Hooks.CartRAMWrite(offset, value)
}

// ramBank resolves the cartridge-RAM bank a read or write should target.
// MBC1 only exposes its upper bank-select bits (bank2) as a RAM bank number
// in advanced banking mode; in simple mode bank2's value is aimed entirely
// at the ROM's high bits, so RAM access stays pinned to bank 0.
func (c *Cartridge) ramBank() uint8 {
	if c.Header.MBC == 1 {
		if c.mode == 1 {
			return c.bank2
		}
		return 0
	}
	return c.ramBankSel
}

// Reset clears bank selection back to its power-on state (bank 1 mapped at
// 0x4000, RAM disabled) and zeroes the RTC sub-cycle accumulator. The RTC's
// real-time registers themselves are left untouched, since they track
// elapsed wall-clock time rather than emulator session state.
func (c *Cartridge) Reset() {
	c.ramEnabled = c.Header.MBC == 0 && c.Header.HasRAM
	c.bank1 = 1
	c.bank2 = 0
	c.mode = 0
	c.ramBankSel = 0
	c.rtcSelected = false
	c.rtcReg = 0
	c.rtcLatchFlag = 0
	c.rtcSubCycles = 0
}

// RTC returns a copy of the MBC3 real-time-clock's unlatched registers, in
// seconds/minutes/hours/day-low/day-high order, for persistence by the host.
func (c *Cartridge) RTC() [5]uint8 { return c.rtcReal }

// SetRTC restores the MBC3 real-time-clock's registers from a previously
// saved value.
func (c *Cartridge) SetRTC(real [5]uint8) { c.rtcReal = real }

// AdvanceRTC ticks the MBC3 real-time-clock registers forward by cycles CPU
// clocks. It is a no-op for every other MBC and while the halt bit (bit 6
// of the day-high register) is set.
func (c *Cartridge) AdvanceRTC(cycles uint32) {
	if c.Header.MBC != 3 || c.rtcReal[4]&0x40 != 0 {
		return
	}
	c.rtcSubCycles += cycles
	for c.rtcSubCycles >= clockHz {
		c.rtcSubCycles -= clockHz
		c.tickSecond()
	}
}

func (c *Cartridge) tickSecond() {
	c.rtcReal[0]++
	if c.rtcReal[0] < 60 {
		return
	}
	c.rtcReal[0] = 0
	c.rtcReal[1]++
	if c.rtcReal[1] < 60 {
		return
	}
	c.rtcReal[1] = 0
	c.rtcReal[2]++
	if c.rtcReal[2] < 24 {
		return
	}
	c.rtcReal[2] = 0

	days := (uint16(c.rtcReal[4]&0x01) << 8) | uint16(c.rtcReal[3])
	days++
	if days > 0x1FF {
		days = 0
		c.rtcReal[4] |= 0x80 // day counter carry
	}
	c.rtcReal[3] = uint8(days & 0xFF)
	c.rtcReal[4] = (c.rtcReal[4] &^ 0x01) | uint8((days>>8)&0x01)
}
