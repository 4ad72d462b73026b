package video

import "github.com/nullstep/pocketcore/bit"

// Bitmap is a plain width/height pixel grid, the shape `pocket/debug`'s tile
// and background-map dumps return.
type Bitmap struct {
	Width, Height int
	Pixels        []uint32
}

func newBitmap(w, h int) Bitmap {
	return Bitmap{Width: w, Height: h, Pixels: make([]uint32, w*h)}
}

func (b *Bitmap) set(x, y int, color GBColor) {
	b.Pixels[y*b.Width+x] = uint32(color)
}

// DumpTiles renders all 384 tiles in VRAM's tile data area as a 16x24 grid
// of 8x8-pixel tiles (128x192 total), using tile data block addressing
// (unsigned, $8000 base) regardless of the current LCDC tile-data-select
// bit — this is a raw VRAM view, not what the PPU is currently compositing.
func (p *PPU) DumpTiles() Bitmap {
	const tilesPerRow = 16
	const totalTiles = 384
	bm := newBitmap(tilesPerRow*8, (totalTiles/tilesPerRow)*8)

	for tile := 0; tile < totalTiles; tile++ {
		tileAddr := uint16(tile * 16)
		originX := (tile % tilesPerRow) * 8
		originY := (tile / tilesPerRow) * 8

		for row := 0; row < 8; row++ {
			low := p.vram[tileAddr+uint16(row*2)]
			high := p.vram[tileAddr+uint16(row*2)+1]
			for col := 0; col < 8; col++ {
				pixel := pixelFromPlanes(low, high, uint8(7-col))
				shade := (p.bgp >> (pixel * 2)) & 0x03
				bm.set(originX+col, originY+row, ByteToColor(shade))
			}
		}
	}

	return bm
}

// DumpBG renders the currently selected background tile map (32x32 tiles,
// 256x256 pixels) in full, ignoring SCX/SCY — a debugger wants the whole
// map, not just the scrolled viewport `drawBackground` composites.
func (p *PPU) DumpBG() Bitmap {
	const mapTiles = 32
	bm := newBitmap(mapTiles*8, mapTiles*8)

	signedMode := !bit.IsSet(4, p.lcdc)
	useMap0 := !bit.IsSet(3, p.lcdc)
	tileMapBase := uint16(0x9C00 - 0x8000)
	if useMap0 {
		tileMapBase = 0x9800 - 0x8000
	}

	for tileRow := 0; tileRow < mapTiles; tileRow++ {
		for tileCol := 0; tileCol < mapTiles; tileCol++ {
			mapAddr := tileMapBase + uint16(tileRow*mapTiles+tileCol)
			tileValue := p.vram[mapAddr]
			tileAddr := p.tileAddrFor(tileValue, signedMode)

			for row := 0; row < 8; row++ {
				low := p.vram[tileAddr+uint16(row*2)]
				high := p.vram[tileAddr+uint16(row*2)+1]
				for col := 0; col < 8; col++ {
					pixel := pixelFromPlanes(low, high, uint8(7-col))
					shade := (p.bgp >> (pixel * 2)) & 0x03
					bm.set(tileCol*8+col, tileRow*8+row, ByteToColor(shade))
				}
			}
		}
	}

	return bm
}
