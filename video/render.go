package video

import (
	"sort"

	"github.com/nullstep/pocketcore/bit"
)

// renderScanline composes background, window, and sprites for the current
// line into the back buffer, called once at the PixelTransfer entry per
// spec §4.3.
func (p *PPU) renderScanline() {
	if !p.lcdEnabled() {
		return
	}

	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
}

func (p *PPU) tileAddrFor(tileValue byte, signedMode bool) uint16 {
	if signedMode {
		return uint16(int(int8(tileValue))*16 + 0x1000)
	}
	return uint16(int(tileValue) * 16)
}

func (p *PPU) drawBackground() {
	lineWidth := p.line * FramebufferWidth

	if !bit.IsSet(0, p.lcdc) {
		color0 := p.bgp & 0x03
		display := uint32(ByteToColor(color0))
		for i := 0; i < FramebufferWidth; i++ {
			p.back.buffer[lineWidth+i] = display
			p.bgPriority[lineWidth+i] = 0
		}
		return
	}

	signedMode := !bit.IsSet(4, p.lcdc)
	useMap0 := !bit.IsSet(3, p.lcdc)

	tileMapBase := uint16(0x9C00 - 0x8000)
	if useMap0 {
		tileMapBase = 0x9800 - 0x8000
	}

	lineScrolled := (p.line + int(p.scy)) & 0xFF
	rowTiles := (lineScrolled / 8) * 32
	pixelY2 := (lineScrolled % 8) * 2

	for x := 0; x < FramebufferWidth; x++ {
		mapX := (x + int(p.scx)) & 0xFF
		tileCol := mapX / 8
		tileXOffset := mapX % 8

		mapAddr := tileMapBase + uint16(rowTiles+tileCol)
		tileValue := p.vram[mapAddr]
		tileAddr := p.tileAddrFor(tileValue, signedMode) + uint16(pixelY2)
		low := p.vram[tileAddr]
		high := p.vram[tileAddr+1]

		pixelIndex := uint8(7 - tileXOffset)
		pixel := pixelFromPlanes(low, high, pixelIndex)

		color := (p.bgp >> (pixel * 2)) & 0x03
		pos := lineWidth + x
		p.back.buffer[pos] = uint32(ByteToColor(color))
		p.bgPriority[pos] = color
	}
}

func (p *PPU) drawWindow() {
	if p.windowLine > 143 {
		return
	}

	if !bit.IsSet(5, p.lcdc) {
		return
	}

	wx := int(p.wx) - 7
	wy := int(p.wy)

	if wx > 159 || wy > 143 || wy > p.line {
		return
	}

	signedMode := !bit.IsSet(4, p.lcdc)
	useMap0 := !bit.IsSet(6, p.lcdc)

	tileMapBase := uint16(0x9C00 - 0x8000)
	if useMap0 {
		tileMapBase = 0x9800 - 0x8000
	}

	rowTiles := (p.windowLine / 8) * 32
	pixelY2 := (p.windowLine % 8) * 2
	lineWidth := p.line * FramebufferWidth

	for tileX := 0; tileX < 32; tileX++ {
		mapAddr := tileMapBase + uint16(rowTiles+tileX)
		tileValue := p.vram[mapAddr]
		tileAddr := p.tileAddrFor(tileValue, signedMode) + uint16(pixelY2)
		low := p.vram[tileAddr]
		high := p.vram[tileAddr+1]

		for px := 0; px < 8; px++ {
			bufferX := tileX*8 + px + wx
			if bufferX < wx || bufferX >= FramebufferWidth || bufferX < 0 {
				continue
			}

			pixel := pixelFromPlanes(low, high, uint8(7-px))
			color := (p.bgp >> (pixel * 2)) & 0x03
			pos := lineWidth + bufferX
			p.back.buffer[pos] = uint32(ByteToColor(color))
			p.bgPriority[pos] = color
		}
	}

	p.windowLine++
}

func (p *PPU) drawSprites() {
	if !bit.IsSet(1, p.lcdc) {
		return
	}

	spriteHeight := 8
	if bit.IsSet(2, p.lcdc) {
		spriteHeight = 16
	}

	lineWidth := p.line * FramebufferWidth

	var intersecting []int
	for sprite := 0; sprite < 40; sprite++ {
		base := sprite * 4
		y := int(p.oam[base]) - 16
		if y > p.line || y+spriteHeight <= p.line {
			continue
		}
		intersecting = append(intersecting, sprite)
	}

	// Stable-sort by X ascending, then truncate to the first ten: the ten
	// sprites kept are the ten with lowest X among all that intersect the
	// line, not merely the first ten found in OAM order.
	sort.SliceStable(intersecting, func(i, j int) bool {
		return int(p.oam[intersecting[i]*4+1]) < int(p.oam[intersecting[j]*4+1])
	})
	selected := intersecting
	if len(selected) > 10 {
		selected = selected[:10]
	}

	p.spritePrio.clear()
	for _, sprite := range selected {
		base := sprite * 4
		x := int(p.oam[base+1]) - 8
		for px := 0; px < 8; px++ {
			p.spritePrio.tryClaim(x+px, sprite, x)
		}
	}

	for _, sprite := range selected {
		base := sprite * 4
		y := int(p.oam[base]) - 16
		x := int(p.oam[base+1]) - 8
		tile := p.oam[base+2]
		flags := p.oam[base+3]

		hasPixels := false
		for px := 0; px < 8; px++ {
			if p.spritePrio.owner(x+px) == sprite {
				hasPixels = true
				break
			}
		}
		if !hasPixels {
			continue
		}

		mask := 0xFF
		if spriteHeight == 16 {
			mask = 0xFE
		}

		palette := p.obp0
		if bit.IsSet(4, flags) {
			palette = p.obp1
		}
		flipX := bit.IsSet(5, flags)
		flipY := bit.IsSet(6, flags)
		aboveBG := !bit.IsSet(7, flags)

		rowInSprite := p.line - y
		if flipY {
			rowInSprite = spriteHeight - 1 - rowInSprite
		}

		tileOffset, rowBytes := 0, rowInSprite*2
		if spriteHeight == 16 && rowInSprite >= 8 {
			tileOffset = 16
			rowBytes = (rowInSprite - 8) * 2
		}

		tileAddr := uint16((int(tile)&mask)*16+tileOffset+rowBytes)
		low := p.vram[tileAddr]
		high := p.vram[tileAddr+1]

		for px := 0; px < 8; px++ {
			bufferX := x + px
			if p.spritePrio.owner(bufferX) != sprite {
				continue
			}

			idx := uint8(7 - px)
			if flipX {
				idx = uint8(px)
			}
			pixel := pixelFromPlanes(low, high, idx)
			if pixel == 0 {
				continue
			}

			pos := lineWidth + bufferX
			if !aboveBG && p.bgPriority[pos] != 0 {
				continue
			}

			color := (palette >> (pixel * 2)) & 0x03
			p.back.buffer[pos] = uint32(ByteToColor(color))
		}
	}
}

func pixelFromPlanes(low, high byte, bitIndex uint8) byte {
	pixel := byte(0)
	if bit.IsSet(bitIndex, low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, high) {
		pixel |= 2
	}
	return pixel
}
