package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDMA() (*OAMDMA, *[0x10000]byte, *[160]byte) {
	d := NewOAMDMA()
	source := &[0x10000]byte{}
	oam := &[160]byte{}
	d.ReadSource = func(addr uint16) byte { return source[addr] }
	d.WriteOAM = func(offset int, value byte) { oam[offset] = value }
	return d, source, oam
}

func TestOAMDMA_transferCopiesAllBytesAfterStartupDelay(t *testing.T) {
	d, source, oam := newTestDMA()
	for i := 0; i < 160; i++ {
		source[0xC000+i] = byte(i)
	}

	d.Start(0xC0) // source page 0xC000 (WRAM)
	require.True(t, d.Active())

	d.Tick(dmaTotalCycles)
	assert.False(t, d.Active())

	for i := 0; i < 160; i++ {
		assert.Equal(t, byte(i), oam[i], "byte %d", i)
	}
}

func TestOAMDMA_lastPageIsReadbackOfStartValue(t *testing.T) {
	d, _, _ := newTestDMA()
	d.Start(0xC3)
	assert.Equal(t, byte(0xC3), d.LastPage())
}

func TestOAMDMA_blocksExternalBusOnlyAfterStartupWindow(t *testing.T) {
	d, _, _ := newTestDMA()
	d.Start(0xC0) // source is WRAM/external bus

	assert.False(t, d.BlocksCPUAccess(0xC000), "startup cycles have not elapsed yet")

	d.Tick(dmaStartupCycles + 1)
	assert.True(t, d.BlocksCPUAccess(0xC000))
}

func TestOAMDMA_oamBusIsBlockedFromTheFirstCycle(t *testing.T) {
	d, _, _ := newTestDMA()
	d.Start(0xC0)
	d.Tick(1)

	assert.True(t, d.BlocksCPUAccess(0xFE00))
}

func TestOAMDMA_hramIsNeverGated(t *testing.T) {
	d, _, _ := newTestDMA()
	d.Start(0xC0)
	d.Tick(dmaStartupCycles + 1) // mid-transfer, external bus gated

	assert.False(t, d.BlocksCPUAccess(0xFF80))
}
