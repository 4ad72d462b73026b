package memory

import (
	"testing"

	"github.com/nullstep/pocketcore/addr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVideoBus is a minimal VideoBus double so bus-routing tests don't need
// a full PPU scanline state machine.
type fakeVideoBus struct {
	vram   [0x2000]byte
	oam    [0xA0]byte
	regs   map[uint16]byte
	gated  bool
	ticked int
}

func newFakeVideoBus() *fakeVideoBus {
	return &fakeVideoBus{regs: make(map[uint16]byte)}
}

func (f *fakeVideoBus) ReadVRAM(offset uint16) byte     { return f.vram[offset] }
func (f *fakeVideoBus) WriteVRAM(offset uint16, v byte) { f.vram[offset] = v }
func (f *fakeVideoBus) ReadOAM(offset uint16) byte {
	if f.gated {
		return 0xFF
	}
	return f.oam[offset]
}
func (f *fakeVideoBus) WriteOAM(offset uint16, v byte) {
	if !f.gated {
		f.oam[offset] = v
	}
}
func (f *fakeVideoBus) ReadOAMRaw(offset int) byte      { return f.oam[offset] }
func (f *fakeVideoBus) WriteOAMRaw(offset int, v byte)  { f.oam[offset] = v }
func (f *fakeVideoBus) ReadVRAMRaw(offset int) byte     { return f.vram[offset] }
func (f *fakeVideoBus) WriteVRAMRaw(offset int, v byte) { f.vram[offset] = v }
func (f *fakeVideoBus) ReadRegister(a uint16) byte      { return f.regs[a] }
func (f *fakeVideoBus) WriteRegister(a uint16, v byte)  { f.regs[a] = v }
func (f *fakeVideoBus) Tick(cycles int)                 { f.ticked += cycles }

func blankROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x147] = 0x00 // NoMBC
	rom[0x148] = 0x00 // 32 KiB
	rom[0x149] = 0x00 // no RAM
	return rom
}

func newTestMMU(t *testing.T) (*MMU, *fakeVideoBus) {
	t.Helper()
	cart, err := NewCartridge(blankROM(), nil)
	require.NoError(t, err)
	ppu := newFakeVideoBus()
	return New(cart, ppu), ppu
}

func TestMMU_wramEchoesBetween0xC000And0xE000(t *testing.T) {
	m, _ := newTestMMU(t)
	m.WriteCPU(0xC010, 0x42)
	assert.Equal(t, byte(0x42), m.ReadCPU(0xE010))
}

func TestMMU_vramRoutesThroughPPUWithOffset(t *testing.T) {
	m, ppu := newTestMMU(t)
	m.WriteCPU(0x8005, 0x99)
	assert.Equal(t, byte(0x99), ppu.vram[5])
}

func TestMMU_oamRoutesThroughPPUWithOffset(t *testing.T) {
	m, ppu := newTestMMU(t)
	m.WriteCPU(0xFE03, 0x7A)
	assert.Equal(t, byte(0x7A), ppu.oam[3])
}

func TestMMU_interruptFlagsRoundTripAndAlwaysReadHighBitsSet(t *testing.T) {
	m, _ := newTestMMU(t)
	m.WriteCPU(addr.IF, 0x05)
	assert.Equal(t, byte(0xE5), m.ReadCPU(addr.IF))
}

func TestMMU_timerRequestsInterruptThroughBus(t *testing.T) {
	m, _ := newTestMMU(t)
	m.WriteCPU(addr.TAC, 0x05) // enabled, bit 3 select
	m.WriteCPU(addr.TIMA, 0xFF)

	// Drive the DIV counter's bit 3 through a falling edge to force a TIMA
	// overflow, then let the 4-cycle reload delay elapse.
	for i := 0; i < 16+4; i++ {
		m.Tick(1)
	}

	assert.NotEqual(t, byte(0), m.IF()&byte(addr.Timer))
}

func TestMMU_joypadRequestsInterruptThroughBus(t *testing.T) {
	m, _ := newTestMMU(t)
	m.Joypad.Press(KeyA)
	assert.NotEqual(t, byte(0), m.IF()&byte(addr.Joypad))
}

func TestMMU_oamDmaCopiesFromSourceIntoOAM(t *testing.T) {
	m, ppu := newTestMMU(t)
	for i := 0; i < 160; i++ {
		m.WriteCPU(0xC000+uint16(i), byte(i))
	}

	m.WriteCPU(addr.DMA, 0xC0)
	m.Tick(dmaTotalCycles)

	for i := 0; i < 160; i++ {
		assert.Equal(t, byte(i), ppu.oam[i])
	}
}

func TestMMU_oamDmaBlocksCPUAccessToSourceBusDuringTransfer(t *testing.T) {
	m, _ := newTestMMU(t)
	m.WriteCPU(addr.DMA, 0xC0)
	m.Tick(dmaStartupCycles + 1)

	assert.Equal(t, byte(0xFF), m.ReadCPU(0xD000))
}

func TestMMU_ppuRegisterWritesRouteThroughVideoBus(t *testing.T) {
	m, ppu := newTestMMU(t)
	m.WriteCPU(addr.SCX, 0x10)
	assert.Equal(t, byte(0x10), ppu.regs[addr.SCX])
}

func TestMMU_unmappedRegionAfterOAMReadsAsFF(t *testing.T) {
	m, _ := newTestMMU(t)
	assert.Equal(t, byte(0xFF), m.ReadCPU(0xFEA0))
}
