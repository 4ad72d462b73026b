package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// spriteAt writes a minimal 4-byte OAM entry at index. y and x are the raw
// OAM bytes (already offset by +16/+8, as the hardware format expects).
func spriteAt(p *PPU, index int, y, x, tile, attrs byte) {
	base := index * 4
	p.oam[base] = y
	p.oam[base+1] = x
	p.oam[base+2] = tile
	p.oam[base+3] = attrs
}

func TestDrawSprites_keepsTenLowestXAmongMoreThanTenOnALine(t *testing.T) {
	p := NewPPU()
	p.lcdc = 0x83 // LCD+BG+sprites enabled, 8x8 sprites
	p.line = 50
	p.vram[16] = 0xFF // tile 1, row 0: all eight pixels opaque (color index 1)

	// 12 non-overlapping sprites, all visible on screen and all intersecting
	// line 50, at screen X = 130, 120, ..., 20 (descending) in OAM index
	// order 0..11, so index 0 has the highest X and index 11 the lowest.
	screenX := func(i int) int { return 130 - i*10 }
	for i := 0; i < 12; i++ {
		spriteAt(p, i, 66, byte(screenX(i)+8), 1, 0)
	}

	p.drawSprites()

	// Only the ten sprites with the lowest X (indices 2..11) should have
	// claimed any pixel; the two highest-X sprites (0 and 1) are dropped
	// entirely by the truncation, not merely out-prioritized.
	assert.Equal(t, -1, p.spritePrio.owner(screenX(0)), "highest-X sprite is truncated away")
	assert.Equal(t, -1, p.spritePrio.owner(screenX(1)), "second-highest-X sprite is truncated away")
	assert.Equal(t, 11, p.spritePrio.owner(screenX(11)), "lowest-X sprite survives and claims its pixel")
}

func TestDrawSprites_lowerXWinsOverlap(t *testing.T) {
	p := NewPPU()
	p.lcdc = 0x83
	p.line = 10
	p.vram[16] = 0xFF // tile 1 fully opaque on row 0

	spriteAt(p, 0, 26, 20, 1, 0) // OAM index 0, x=12
	spriteAt(p, 1, 26, 16, 1, 0) // OAM index 1, x=8: lower X, wins the overlap

	p.drawSprites()

	assert.Equal(t, 1, p.spritePrio.owner(12), "lower-X sprite wins the overlapping pixel")
}

func TestDrawBackground_lcdcBit0DisabledForcesWhite(t *testing.T) {
	p := NewPPU()
	p.lcdc = 0x80 // LCD on, BG/window disabled (bit 0 clear)
	p.bgp = 0xE4
	p.line = 0

	p.drawBackground()

	assert.Equal(t, uint32(WhiteColor), p.back.buffer[0])
}
