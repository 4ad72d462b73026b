package video

import (
	"testing"

	"github.com/nullstep/pocketcore/addr"
	"github.com/stretchr/testify/assert"
)

func TestPPU_frameLengthIsExact(t *testing.T) {
	p := NewPPU()
	p.mode = OAMSearch
	p.line = 0
	p.ly = 0

	// run up to the first frame boundary, then time one full frame
	start := p.FrameCount()
	for p.FrameCount() == start {
		p.Tick(4)
	}

	before := p.FrameCount()
	total := 0
	for p.FrameCount() == before {
		p.Tick(4)
		total += 4
	}

	assert.Equal(t, FrameCycles, total)
}

func TestPPU_lcdOffHoldsHBlankAndZeroLY(t *testing.T) {
	p := NewPPU()
	p.lcdc = 0 // LCD disabled
	p.Tick(100)

	assert.Equal(t, HBlank, p.mode)
	assert.Equal(t, byte(0), p.ReadRegister(0xFF44))
}

func TestPPU_lycCoincidenceSetsStatAndRequestsInterrupt(t *testing.T) {
	p := NewPPU()
	var requested addr.Interrupt
	p.RequestInterrupt = func(i addr.Interrupt) { requested |= i }

	p.lyc = 5
	p.WriteRegister(0xFF41, 0x40) // enable LYC=LY interrupt
	p.setLY(5)

	assert.NotEqual(t, byte(0), p.stat&0x04)
	assert.Equal(t, addr.LCDStat, requested)
}

func TestPPU_vramGatedDuringPixelTransfer(t *testing.T) {
	p := NewPPU()
	p.mode = PixelTransfer
	p.WriteVRAM(0, 0x42)
	assert.Equal(t, byte(0xFF), p.ReadVRAM(0))

	p.mode = HBlank
	p.WriteVRAM(0, 0x42)
	assert.Equal(t, byte(0x42), p.ReadVRAM(0))
}
