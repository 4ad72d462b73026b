package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func romOfSize(size int, cartType, romSizeCode, ramSizeCode byte) []byte {
	rom := make([]byte, size)
	copy(rom[titleAddress:], []byte("TESTROM"))
	rom[cartTypeAddress] = cartType
	rom[romSizeAddress] = romSizeCode
	rom[ramSizeAddress] = ramSizeCode
	return rom
}

func TestParseHeader_decodesTitleKindAndSizes(t *testing.T) {
	rom := romOfSize(64*1024, 0x00, 0x01, 0x00)
	info, err := ParseHeader(rom)

	require.NoError(t, err)
	assert.Equal(t, "TESTROM", info.Title)
	assert.Equal(t, KindNoMBC, info.Kind)
	assert.Equal(t, 64*1024, info.ROMSize)
	assert.Equal(t, 0, info.RAMSize)
}

func TestParseHeader_mbc3CartTypeReportsBatteryAndRTC(t *testing.T) {
	rom := romOfSize(32*1024, 0x10, 0x00, 0x02)
	info, err := ParseHeader(rom)

	require.NoError(t, err)
	assert.Equal(t, KindMBC3, info.Kind)
	assert.True(t, info.HasBattery)
	assert.True(t, info.HasRTC)
	assert.Equal(t, 8*1024, info.RAMSize)
}

func TestParseHeader_rejectsTruncatedROM(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x10))
	require.Error(t, err)
}

func TestParseHeader_rejectsUnknownCartType(t *testing.T) {
	rom := romOfSize(32*1024, 0xFE, 0x00, 0x00)
	_, err := ParseHeader(rom)

	require.Error(t, err)
	assert.IsType(t, &UnimplementedMbcError{}, err)
}

func TestParseHeader_blankTitleBecomesPlaceholder(t *testing.T) {
	rom := make([]byte, 32*1024)
	rom[cartTypeAddress] = 0x00
	rom[romSizeAddress] = 0x00
	rom[ramSizeAddress] = 0x00
	info, err := ParseHeader(rom)

	require.NoError(t, err)
	assert.Equal(t, "(Untitled)", info.Title)
}

func TestNewCartridge_noMBCReadsROMAndGatesRAMByBounds(t *testing.T) {
	rom := romOfSize(32*1024, 0x00, 0x00, 0x01)
	rom[0x0150] = 0xAB
	cart, err := NewCartridge(rom, nil)
	require.NoError(t, err)

	assert.Equal(t, byte(0xAB), cart.ReadByte(0x0150))

	cart.WriteByte(0xA000, 0x42)
	assert.Equal(t, byte(0x42), cart.ReadByte(0xA000))
}

func TestMBC1_bankSwitchSelectsCorrectROMWindow(t *testing.T) {
	rom := make([]byte, 4*romBankSize)
	rom[romBankSize*2+5] = 0x99 // a marker byte inside bank 2
	m := &MBC1{rom: rom}

	m.WriteROM(0x2000, 0x02) // select ROM bank 2
	assert.Equal(t, byte(0x99), m.ReadROM(0x4000+5))
}

func TestMBC1_bankZeroAliasesToBankOne(t *testing.T) {
	rom := make([]byte, 4*romBankSize)
	rom[romBankSize+7] = 0x77
	m := &MBC1{rom: rom}

	m.WriteROM(0x2000, 0x00) // writing 0 selects bank 1, never bank 0
	assert.Equal(t, byte(0x77), m.ReadROM(0x4000+7))
}

func TestMBC1_romModeCombinesLowBankAndUpperBitsIntoHighBank(t *testing.T) {
	rom := make([]byte, 64*romBankSize)
	bank := uint32(0x01 | 0x01<<5) // low bank 1, upper bits 1 -> bank 0x21
	rom[bank*romBankSize+5] = 0x66
	m := &MBC1{rom: rom}

	m.WriteROM(0x2000, 0x01) // low 5 bits of the bank register
	m.WriteROM(0x4000, 0x01) // upper 2 bits, shared with RAM bank in mode 1

	assert.Equal(t, byte(0x66), m.ReadROM(0x4000+5))
}

func TestMBC1_ramDisabledByDefaultReadsFF(t *testing.T) {
	m := &MBC1{rom: make([]byte, romBankSize), ram: make([]byte, ramBankSize)}
	assert.Equal(t, byte(0xFF), m.ReadRAM(0xA000))

	m.WriteROM(0x0000, 0x0A) // enable RAM
	m.WriteRAM(0xA000, 0x55)
	assert.Equal(t, byte(0x55), m.ReadRAM(0xA000))
}

func TestMBC2_builtInRAMIsNibbleWideAndUpperBitsReadAsSet(t *testing.T) {
	m := &MBC2{rom: make([]byte, romBankSize), ram: make([]byte, 512)}
	m.WriteROM(0x0000, 0x0A) // RAM enable (bit 8 of address clear)
	m.WriteRAM(0xA000, 0xFF)

	assert.Equal(t, byte(0xFF), m.ReadRAM(0xA000)) // low nibble set, high forced to 1s
	assert.Equal(t, byte(0x0F), m.ram[0])           // only the low nibble is actually stored
}

func TestMBC3_latchSequenceSnapshotsRTCRegisters(t *testing.T) {
	m := &MBC3{rom: make([]byte, romBankSize), ram: make([]byte, ramBankSize), rtc: newRTC()}
	m.ramTimerEnable = true

	m.WriteROM(0x6000, 0x00) // arm latch
	m.WriteROM(0x6000, 0x01) // fire latch

	m.ramBank = rtcSeconds
	assert.Equal(t, byte(0), m.ReadRAM(0xA000))
}

func TestMBC3_writingRTCRegistersUpdatesDuration(t *testing.T) {
	r := newRTC()
	r.write(rtcDaysLo, 0x05)
	r.write(rtcHours, 0x03)

	assert.Equal(t, 5, r.duration.days)
	assert.Equal(t, 3, r.duration.hours)
}

func TestMBC5_bankSelectUsesNineBitsWithNoBankZeroAlias(t *testing.T) {
	rom := make([]byte, 3*romBankSize)
	rom[0] = 0x11 // bank 0 is directly addressable, unlike MBC1/3
	m := &MBC5{rom: rom}

	m.WriteROM(0x2000, 0x00)
	assert.Equal(t, byte(0x11), m.ReadROM(0x4000))
}
