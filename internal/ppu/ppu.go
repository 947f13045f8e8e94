// Package ppu implements the LCD controller's mode state machine and
// scanline compositor. Rendering happens synchronously, one scanline at a
// time, on the same goroutine driving the CPU: the core is cooperative and
// single-threaded throughout.
package ppu

import (
	"github.com/lesleyrs/Peanut-GB/internal/hardware"
	"github.com/lesleyrs/Peanut-GB/internal/interrupts"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	cyclesOAMSearch   = 80
	cyclesPixelTransfer = 172
	cyclesPerLine     = 456
	linesPerFrame     = 154
	cyclesPerFrame    = cyclesPerLine * linesPerFrame
)

// Mode identifies the current point in the LCD controller's per-line cycle.
type Mode uint8

const (
	ModeHBlank Mode = 0
	ModeVBlank Mode = 1
	ModeOAM    Mode = 2
	ModeVRAM   Mode = 3
)

// PPU owns VRAM, OAM, and the LCDC/STAT/scroll/palette register block.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat, scy, scx, ly, lyc, wy, wx, bgp, obp0, obp1 uint8

	mode     Mode
	dot      uint16
	lcdOff   uint32
	frameRdy bool
	lcdBlank bool

	windowLine uint8
	windowHit  bool

	bgPal, obp0Pal, obp1Pal [4]uint8

	IRQ    *interrupts.Service
	Drawer hardware.LineDrawer
}

// New creates a PPU that requests STAT/VBlank interrupts through irq.
func New(irq *interrupts.Service) *PPU {
	p := &PPU{IRQ: irq}
	p.updatePalette(&p.bgPal, p.bgp)
	p.updatePalette(&p.obp0Pal, p.obp0)
	p.updatePalette(&p.obp1Pal, p.obp1)
	return p
}

// HasFrame reports whether a full frame has completed since the last call
// to ConsumeFrame.
func (p *PPU) HasFrame() bool { return p.frameRdy }

// ConsumeFrame clears the frame-ready flag.
func (p *PPU) ConsumeFrame() { p.frameRdy = false }

// Reset clears the dot clock, window latch and pending-frame state, zeroes
// the scroll/position registers, and sets STAT directly to stat, bypassing
// the register-write path (which only exposes bits 6-3) so callers can
// restore the documented post-boot value.
func (p *PPU) Reset(stat uint8) {
	p.dot = 0
	p.lcdOff = 0
	p.frameRdy = false
	p.lcdBlank = false
	p.windowLine = 0
	p.windowHit = false

	p.ly, p.lyc, p.scy, p.scx, p.wy, p.wx = 0, 0, 0, 0, 0, 0
	p.stat = stat
	p.mode = Mode(stat & 0x03)
}

func (p *PPU) updatePalette(pal *[4]uint8, reg uint8) {
	for i := 0; i < 4; i++ {
		pal[i] = (reg >> (uint(i) * 2)) & 0x03
	}
}

// Advance runs the LCD controller forward by cycles CPU clocks, driving
// mode transitions, rendering completed scanlines and raising STAT/VBlank
// interrupts as appropriate.
func (p *PPU) Advance(cycles uint8) {
	if p.lcdc&0x80 == 0 {
		p.lcdOff += uint32(cycles)
		for p.lcdOff >= cyclesPerFrame {
			p.lcdOff -= cyclesPerFrame
			p.frameRdy = true
		}
		return
	}

	remaining := uint16(cycles)
	for remaining > 0 {
		step := remaining
		if step > 4 {
			step = 4
		}
		remaining -= step
		p.dot += step

		switch p.mode {
		case ModeOAM:
			if p.dot >= cyclesOAMSearch {
				if !p.lcdBlank {
					p.renderLine()
				}
				p.setMode(ModeVRAM)
			}
		case ModeVRAM:
			if p.dot >= cyclesOAMSearch+cyclesPixelTransfer {
				p.setMode(ModeHBlank)
			}
		case ModeHBlank:
			if p.dot >= cyclesPerLine {
				p.dot -= cyclesPerLine
				p.advanceLine()
			}
		case ModeVBlank:
			if p.dot >= cyclesPerLine {
				p.dot -= cyclesPerLine
				p.advanceLine()
			}
		}
	}
}

func (p *PPU) advanceLine() {
	p.ly++
	if p.ly == ScreenHeight {
		p.setMode(ModeVBlank)
		p.frameRdy = true
		p.lcdBlank = false
		p.IRQ.Request(interrupts.VBlank)
		p.checkStatLine()
		p.checkLYC()
		return
	}
	if p.ly >= linesPerFrame {
		p.ly = 0
		p.windowLine = 0
		p.windowHit = false
		p.setMode(ModeOAM)
		p.checkStatLine()
		p.checkLYC()
		return
	}
	if p.mode == ModeVBlank {
		p.checkLYC()
		return
	}
	p.setMode(ModeOAM)
	p.checkLYC()
}

func (p *PPU) setMode(m Mode) {
	p.mode = m
	p.checkStatLine()
}

// checkStatLine raises the STAT interrupt when the newly entered mode has
// its corresponding enable bit set in STAT.
func (p *PPU) checkStatLine() {
	switch p.mode {
	case ModeHBlank:
		if p.stat&0x08 != 0 {
			p.IRQ.Request(interrupts.LCD)
		}
	case ModeVBlank:
		if p.stat&0x10 != 0 {
			p.IRQ.Request(interrupts.LCD)
		}
	case ModeOAM:
		if p.stat&0x20 != 0 {
			p.IRQ.Request(interrupts.LCD)
		}
	}
}

func (p *PPU) checkLYC() {
	if p.ly == p.lyc {
		p.stat |= 0x04
		if p.stat&0x40 != 0 {
			p.IRQ.Request(interrupts.LCD)
		}
	} else {
		p.stat &^= 0x04
	}
}

// Read implements hardware.IOPort for VRAM (8000-9FFF), OAM (FE00-FE9F) and
// the LCDC register block (FF40-FF4B).
func (p *PPU) Read(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr < 0xFEA0:
		return p.oam[addr-0xFE00]
	}
	switch addr {
	case 0xFF40:
		return p.lcdc
	case 0xFF41:
		return (p.stat &^ 0x03) | uint8(p.mode) | 0x80
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF47:
		return p.bgp
	case 0xFF48:
		return p.obp0
	case 0xFF49:
		return p.obp1
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	}
	return 0xFF
}

// Write implements hardware.IOPort for the same ranges as Read.
func (p *PPU) Write(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		p.vram[addr-0x8000] = value
		return
	case addr >= 0xFE00 && addr < 0xFEA0:
		p.oam[addr-0xFE00] = value
		return
	}
	switch addr {
	case 0xFF40:
		p.writeLCDC(value)
	case 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
	case 0xFF42:
		p.scy = value
	case 0xFF43:
		p.scx = value
	case 0xFF45:
		p.lyc = value
		p.checkLYC()
	case 0xFF47:
		p.bgp = value
		p.updatePalette(&p.bgPal, value)
	case 0xFF48:
		p.obp0 = value
		p.updatePalette(&p.obp0Pal, value)
	case 0xFF49:
		p.obp1 = value
		p.updatePalette(&p.obp1Pal, value)
	case 0xFF4A:
		p.wy = value
	case 0xFF4B:
		p.wx = value
	}
}

func (p *PPU) writeLCDC(value uint8) {
	wasOn := p.lcdc&0x80 != 0
	p.lcdc = value
	isOn := value&0x80 != 0
	if wasOn && !isOn {
		p.stat &^= 0x03
		p.ly = 0
		p.dot = 0
		p.mode = ModeHBlank
		p.lcdOff = 0
	} else if !wasOn && isOn {
		p.mode = ModeOAM
		p.dot = 0
		p.lcdBlank = true
	}
}
