package video

import "github.com/mrosa/dmgcore/internal/addr"

func (p *PPU) bgEnabled() bool      { return p.lcdc&0x01 != 0 }
func (p *PPU) spritesEnabled() bool { return p.lcdc&0x02 != 0 }
func (p *PPU) windowEnabled() bool  { return p.lcdc&0x20 != 0 }

func (p *PPU) spriteHeight() int {
	if p.lcdc&0x04 != 0 {
		return 16
	}
	return 8
}

func (p *PPU) signedTileAddressing() bool { return p.lcdc&0x10 == 0 }

func (p *PPU) bgTileMapBase() uint16 {
	if p.lcdc&0x08 != 0 {
		return addr.TileMap1
	}
	return addr.TileMap0
}

func (p *PPU) windowTileMapBase() uint16 {
	if p.lcdc&0x40 != 0 {
		return addr.TileMap1
	}
	return addr.TileMap0
}

// fetchTileRow reads the 2-byte bit-plane row rowY of the tile at
// tileIndex, addressed either unsigned from base or signed (tile
// numbers -128..127) relative to base, which callers set to 0x9000
// for signed addressing.
func (p *PPU) fetchTileRow(base uint16, tileIndex byte, rowY int, signed bool) tileRow {
	var tileAddr uint16
	if signed {
		tileAddr = uint16(int(base) + int(int8(tileIndex))*16 + rowY*2)
	} else {
		tileAddr = base + uint16(tileIndex)*16 + uint16(rowY*2)
	}
	return tileRow{
		low:  p.vram[tileAddr-addr.VRAMStart],
		high: p.vram[tileAddr+1-addr.VRAMStart],
	}
}

// renderScanline draws one completed scanline: background, then
// window, then sprites, performed once as mode 3 begins.
func (p *PPU) renderScanline(line int) {
	p.drawBackground(line)
	p.drawWindow(line)
	p.drawSprites(line)
}

func (p *PPU) drawBackground(line int) {
	rowBase := line * FramebufferWidth

	if !p.bgEnabled() {
		shade := translate(p.bgp, 0)
		for x := 0; x < FramebufferWidth; x++ {
			p.framebuffer.SetPixel(x, line, shade)
			p.bgPixelBuffer[rowBase+x] = 0
		}
		return
	}

	signed := p.signedTileAddressing()
	tilesBase := addr.TileData0
	if signed {
		tilesBase = addr.TileData2
	}
	tileMapBase := p.bgTileMapBase()

	y := (line + int(p.scy)) & 0xFF
	tileRowOffset := (y / 8) * 32
	py := y % 8

	for x := 0; x < FramebufferWidth; x++ {
		mapX := (x + int(p.scx)) & 0xFF
		tileCol := mapX / 8
		tileIndex := p.vram[tileMapBase+uint16(tileRowOffset+tileCol)-addr.VRAMStart]

		row := p.fetchTileRow(tilesBase, tileIndex, py, signed)
		colorIndex := row.pixel(mapX%8, false)

		p.framebuffer.SetPixel(x, line, translate(p.bgp, colorIndex))
		p.bgPixelBuffer[rowBase+x] = colorIndex
	}
}

func (p *PPU) drawWindow(line int) {
	wy := int(p.wy)
	if !p.windowEnabled() || line < wy {
		return
	}
	wx := int(p.wx) - 7
	if wx >= FramebufferWidth {
		return
	}
	defer func() { p.windowLine++ }()

	rowBase := line * FramebufferWidth
	signed := p.signedTileAddressing()
	tilesBase := addr.TileData0
	if signed {
		tilesBase = addr.TileData2
	}
	tileMapBase := p.windowTileMapBase()

	tileRowOffset := (p.windowLine / 8) * 32
	py := p.windowLine % 8

	for screenX := max(wx, 0); screenX < FramebufferWidth; screenX++ {
		winX := screenX - wx
		tileCol := winX / 8
		tileIndex := p.vram[tileMapBase+uint16(tileRowOffset+tileCol)-addr.VRAMStart]

		row := p.fetchTileRow(tilesBase, tileIndex, py, signed)
		colorIndex := row.pixel(winX%8, false)

		p.framebuffer.SetPixel(screenX, line, translate(p.bgp, colorIndex))
		p.bgPixelBuffer[rowBase+screenX] = colorIndex
	}
}

type oamSprite struct {
	y, x     int
	tile     byte
	flags    byte
	oamIndex int
}

func (p *PPU) drawSprites(line int) {
	if !p.spritesEnabled() {
		return
	}
	height := p.spriteHeight()
	rowBase := line * FramebufferWidth

	var visible []oamSprite
	for i := 0; i < 40; i++ {
		base := i * 4
		y := int(p.oam[base]) - 16
		if line < y || line >= y+height {
			continue
		}
		visible = append(visible, oamSprite{
			y:        y,
			x:        int(p.oam[base+1]) - 8,
			tile:     p.oam[base+2],
			flags:    p.oam[base+3],
			oamIndex: i,
		})
		if len(visible) == 10 {
			break
		}
	}

	p.priority.clear()
	for _, s := range visible {
		for px := 0; px < 8; px++ {
			p.priority.tryClaim(s.x+px, s.oamIndex, s.x)
		}
	}

	for _, s := range visible {
		flipX := s.flags&0x20 != 0
		flipY := s.flags&0x40 != 0
		behindBG := s.flags&0x80 != 0
		palette := p.obp0
		if s.flags&0x10 != 0 {
			palette = p.obp1
		}

		rowY := line - s.y
		if flipY {
			rowY = height - 1 - rowY
		}
		tileIndex := s.tile
		if height == 16 {
			tileIndex &^= 0x01
			if rowY >= 8 {
				tileIndex |= 0x01
				rowY -= 8
			}
		}
		row := p.fetchTileRow(addr.TileData0, tileIndex, rowY, false)

		for px := 0; px < 8; px++ {
			screenX := s.x + px
			if screenX < 0 || screenX >= FramebufferWidth {
				continue
			}
			if p.priority.owner(screenX) != s.oamIndex {
				continue
			}

			colorIndex := row.pixel(px, flipX)
			if colorIndex == 0 {
				continue
			}
			if behindBG && p.bgPixelBuffer[rowBase+screenX] != 0 {
				continue
			}

			p.framebuffer.SetPixel(screenX, line, translate(palette, colorIndex))
		}
	}
}
