package ppu

// Palette tags occupy bits 5-4 of each pixel byte delivered to LineDrawer,
// identifying which of the three palettes produced the pixel's shade.
const (
	tagOBJ0 uint8 = 0x00 << 4
	tagOBJ1 uint8 = 0x01 << 4
	tagBG   uint8 = 0x02 << 4
)

// tileRow returns the 2 bytes of bit-plane data for row within an 8x8
// tile whose tile-data address has already been resolved.
func (p *PPU) tileRow(tileAddr uint16, row uint8) (uint8, uint8) {
	base := tileAddr + uint16(row)*2
	return p.vram[base&0x1FFF], p.vram[(base+1)&0x1FFF]
}

func (p *PPU) tileDataAddr(tileIndex uint8, unsigned bool) uint16 {
	if unsigned {
		return 0x8000 + uint16(tileIndex)*16
	}
	return uint16(0x9000 + int(int8(tileIndex))*16)
}

// renderLine composites background, window and sprites for the current LY
// and delivers the result to the attached LineDrawer, if any.
func (p *PPU) renderLine() {
	if p.Drawer == nil {
		return
	}

	var pixels [ScreenWidth]uint8
	var bgColourIdx [ScreenWidth]uint8 // raw 0-3 index before palette, for sprite priority

	bgWinEnabled := p.lcdc&0x01 != 0
	unsignedTiles := p.lcdc&0x10 != 0
	windowEnabled := p.lcdc&0x20 != 0 && p.lcdc&0x01 != 0

	windowStartX := int(p.wx) - 7
	drawWindowThisLine := windowEnabled && p.ly >= p.wy

	if drawWindowThisLine {
		p.windowHit = true
	}

	for x := 0; x < ScreenWidth; x++ {
		var colourIdx uint8
		if bgWinEnabled {
			if drawWindowThisLine && x >= windowStartX {
				colourIdx = p.fetchTilePixel(p.windowMapBase(), uint8(x-windowStartX), p.windowLine, unsignedTiles)
			} else {
				bgX := uint8(int(p.scx) + x)
				bgY := p.scy + p.ly
				colourIdx = p.fetchTilePixel(p.bgMapBase(), bgX, bgY, unsignedTiles)
			}
		}
		bgColourIdx[x] = colourIdx
		pixels[x] = p.bgPal[colourIdx] | tagBG
	}

	if p.lcdc&0x02 != 0 {
		p.renderSprites(&pixels, &bgColourIdx)
	}

	if drawWindowThisLine {
		p.windowLine++
	}

	p.Drawer.DrawLine(p.ly, pixels)
}

func (p *PPU) bgMapBase() uint16 {
	if p.lcdc&0x08 != 0 {
		return 0x9C00
	}
	return 0x9800
}

func (p *PPU) windowMapBase() uint16 {
	if p.lcdc&0x40 != 0 {
		return 0x9C00
	}
	return 0x9800
}

// fetchTilePixel returns the 2-bit colour index of the pixel at (x, y)
// within the tile map starting at mapBase.
func (p *PPU) fetchTilePixel(mapBase uint16, x, y uint8, unsignedTiles bool) uint8 {
	tileCol := uint16(x / 8)
	tileRow8 := uint16(y / 8)
	tileIndex := p.vram[(mapBase+tileRow8*32+tileCol)&0x1FFF]

	addr := p.tileDataAddr(tileIndex, unsignedTiles)
	b1, b2 := p.tileRow(addr, y%8)

	bit := 7 - (x % 8)
	low := (b1 >> bit) & 1
	high := (b2 >> bit) & 1
	return low | (high << 1)
}

type spriteEntry struct {
	y, x, tile, flags uint8
	oamIndex          int
}

// renderSprites composites up to 10 visible sprites onto the current line,
// honouring X-then-OAM-index priority and the BG/window priority flag.
func (p *PPU) renderSprites(pixels, bgColourIdx *[ScreenWidth]uint8) {
	tall := p.lcdc&0x04 != 0
	height := uint8(8)
	if tall {
		height = 16
	}

	var visible []spriteEntry
	for i := 0; i < 40 && len(visible) < 10; i++ {
		base := i * 4
		sy := p.oam[base]
		sx := p.oam[base+1]
		tile := p.oam[base+2]
		flags := p.oam[base+3]

		top := int(sy) - 16
		if int(p.ly) < top || int(p.ly) >= top+int(height) {
			continue
		}
		visible = append(visible, spriteEntry{y: sy, x: sx, tile: tile, flags: flags, oamIndex: i})
	}

	// Sprites are drawn back-to-front so that the first sprite in priority
	// order (lowest X, then lowest OAM index) ends up on top.
	for i := 0; i < len(visible); i++ {
		for j := i + 1; j < len(visible); j++ {
			a, b := visible[i], visible[j]
			if b.x > a.x || (b.x == a.x && b.oamIndex > a.oamIndex) {
				visible[i], visible[j] = visible[j], visible[i]
			}
		}
	}

	for _, s := range visible {
		top := int(s.y) - 16
		row := uint8(int(p.ly) - top)
		if s.flags&0x40 != 0 {
			row = height - 1 - row
		}
		tile := s.tile
		if tall {
			tile &^= 0x01
		}
		addr := 0x8000 + uint16(tile)*16
		b1, b2 := p.tileRow(addr, row)

		palette := &p.obp0Pal
		tag := tagOBJ0
		if s.flags&0x10 != 0 {
			palette = &p.obp1Pal
			tag = tagOBJ1
		}
		behindBG := s.flags&0x80 != 0

		for col := uint8(0); col < 8; col++ {
			screenX := int(s.x) - 8 + int(col)
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			bit := col
			if s.flags&0x20 == 0 {
				bit = 7 - col
			}
			low := (b1 >> bit) & 1
			high := (b2 >> bit) & 1
			colourIdx := low | (high << 1)
			if colourIdx == 0 {
				continue // transparent
			}
			if behindBG && bgColourIdx[screenX] != 0 {
				continue
			}
			pixels[screenX] = palette[colourIdx] | tag
		}
	}
}
