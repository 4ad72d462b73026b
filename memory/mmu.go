// Package memory implements the cartridge/MBC (C1), timer (C3), joypad
// (C5), OAM DMA controller (C6), and the MMU/bus (C7) that fans reads and
// writes out to them and to the PPU.
package memory

import (
	"github.com/nullstep/pocketcore/addr"
	"github.com/nullstep/pocketcore/serial"
	"github.com/nullstep/pocketcore/video"
)

// VideoBus is the subset of *video.PPU the bus needs; kept as an interface
// so memory tests can fake it without constructing a full PPU.
type VideoBus interface {
	ReadVRAM(offset uint16) byte
	WriteVRAM(offset uint16, value byte)
	ReadOAM(offset uint16) byte
	WriteOAM(offset uint16, value byte)
	ReadOAMRaw(offset int) byte
	WriteOAMRaw(offset int, value byte)
	ReadVRAMRaw(offset int) byte
	WriteVRAMRaw(offset int, value byte)
	ReadRegister(addr uint16) byte
	WriteRegister(addr uint16, value byte)
	Tick(cycles int)
}

// MMU is the total address-decode bus (C7): every 16-bit address maps to
// exactly one region, for both the gated CPU view and the ungated raw view
// used by the OAM DMA engine and the debugger.
type MMU struct {
	Cart   *Cartridge
	PPU    VideoBus
	Timer  *Timer
	Joypad *Joypad
	Serial *serial.Port
	DMA    *OAMDMA

	wram [0x2000]byte
	hram [0x7F]byte
	io   [0x80]byte // scratch for audio and other unmodeled I/O registers

	ifReg, ieReg byte
}

// New wires a fresh bus around the given cartridge and PPU, with timer,
// joypad, serial, and OAM-DMA components all constructed and cross-wired
// to request interrupts through this bus.
func New(cart *Cartridge, ppu VideoBus) *MMU {
	m := &MMU{
		Cart:   cart,
		PPU:    ppu,
		Timer:  NewTimer(),
		Joypad: NewJoypad(),
		Serial: serial.NewPort(),
		DMA:    NewOAMDMA(),
		ifReg:  0xE1,
	}

	m.Timer.RequestInterrupt = func() { m.RequestInterrupt(addr.Timer) }
	m.Joypad.RequestInterrupt = func() { m.RequestInterrupt(addr.Joypad) }
	m.Serial.RequestInterrupt = func() { m.RequestInterrupt(addr.Serial) }
	m.DMA.ReadSource = m.readBus
	m.DMA.WriteOAM = func(offset int, value byte) { m.PPU.WriteOAMRaw(offset, value) }

	return m
}

// videoResetter is the optional PPU capability to reset LCD registers and
// VRAM/OAM to power-on values; the bus only requires VideoBus of its PPU
// field, so this is checked with a type assertion rather than added there.
type videoResetter interface {
	Reset()
}

// Reset restores the bus's own registers (IF/IE, WRAM, HRAM, unmodeled I/O)
// and every wired peripheral to power-on values. The cartridge's ROM/RAM
// contents (and RTC, if present) are cartridge-side and are reset
// separately via Cartridge.Reset, which the caller controls independently
// so that, e.g., a debugger's RAM patches can be preserved across an engine
// reset as spec's lifecycle requires.
func (m *MMU) Reset() {
	m.wram = [0x2000]byte{}
	m.hram = [0x7F]byte{}
	m.io = [0x80]byte{}
	m.ifReg = 0xE1
	m.ieReg = 0

	m.Timer.Reset()
	m.Joypad.Reset()
	m.Serial.Reset()
	m.DMA.Reset()
	if r, ok := m.PPU.(videoResetter); ok {
		r.Reset()
	}
}

// RequestInterrupt sets the corresponding IF bit; it is never cleared
// except by the CPU dispatcher or a debugger write, per spec §7.
func (m *MMU) RequestInterrupt(i addr.Interrupt) {
	m.ifReg |= byte(i)
}

// Tick advances every peripheral driven by the shared clock: PPU, timer,
// serial, and OAM DMA.
func (m *MMU) Tick(cycles int) {
	m.PPU.Tick(cycles)
	m.Timer.Tick(cycles)
	m.Serial.Tick(cycles)
	m.DMA.Tick(cycles)
}

// ReadCPU is the gated accessor the CPU interpreter uses: it honors OAM-DMA
// bus-conflict rules (§4.6/§4.7) on top of the total decode function.
func (m *MMU) ReadCPU(a uint16) byte {
	if m.DMA.BlocksCPUAccess(a) {
		return 0xFF
	}
	return m.readBus(a)
}

// WriteCPU is the gated accessor the CPU interpreter uses for writes.
func (m *MMU) WriteCPU(a uint16, value byte) {
	if m.DMA.BlocksCPUAccess(a) {
		return
	}
	m.writeBus(a, value)
}

// ReadDebug/WriteDebug bypass DMA gating entirely, for the debugger and the
// OAM DMA engine's own source reads.
func (m *MMU) ReadDebug(a uint16) byte  { return m.readBus(a) }
func (m *MMU) WriteDebug(a uint16, v byte) { m.writeBus(a, v) }

func (m *MMU) readBus(a uint16) byte {
	switch {
	case a < 0x8000:
		return m.Cart.ReadByte(a)
	case a < 0xA000:
		return m.PPU.ReadVRAM(a - 0x8000)
	case a < 0xC000:
		return m.Cart.ReadByte(a)
	case a < 0xE000:
		return m.wram[a-0xC000]
	case a < 0xFE00:
		return m.wram[a-0xE000]
	case a <= 0xFE9F:
		return m.PPU.ReadOAM(a - 0xFE00)
	case a < 0xFF00:
		return 0xFF
	case a == addr.P1:
		return m.Joypad.ReadP1()
	case a == addr.SB:
		return m.Serial.ReadSB()
	case a == addr.SC:
		return m.Serial.ReadSC()
	case a == addr.DIV:
		return m.Timer.ReadDIV()
	case a == addr.TIMA:
		return m.Timer.ReadTIMA()
	case a == addr.TMA:
		return m.Timer.ReadTMA()
	case a == addr.TAC:
		return m.Timer.ReadTAC()
	case a == addr.IF:
		return m.ifReg | 0xE0
	case a == addr.DMA:
		return m.DMA.LastPage()
	case a >= addr.LCDC && a <= addr.WX:
		return m.PPU.ReadRegister(a)
	case a < 0xFF80:
		return m.io[a-0xFF00]
	case a < 0xFFFF:
		return m.hram[a-0xFF80]
	case a == addr.IE:
		return m.ieReg | 0xE0
	default:
		return 0xFF
	}
}

func (m *MMU) writeBus(a uint16, value byte) {
	switch {
	case a < 0x8000:
		m.Cart.WriteByte(a, value)
	case a < 0xA000:
		m.PPU.WriteVRAM(a-0x8000, value)
	case a < 0xC000:
		m.Cart.WriteByte(a, value)
	case a < 0xE000:
		m.wram[a-0xC000] = value
	case a < 0xFE00:
		m.wram[a-0xE000] = value
	case a <= 0xFE9F:
		m.PPU.WriteOAM(a-0xFE00, value)
	case a < 0xFF00:
		// unmapped, writes discarded
	case a == addr.P1:
		m.Joypad.WriteP1(value)
	case a == addr.SB:
		m.Serial.WriteSB(value)
	case a == addr.SC:
		m.Serial.WriteSC(value)
	case a == addr.DIV:
		m.Timer.WriteDIV()
	case a == addr.TIMA:
		m.Timer.WriteTIMA(value)
	case a == addr.TMA:
		m.Timer.WriteTMA(value)
	case a == addr.TAC:
		m.Timer.WriteTAC(value)
	case a == addr.IF:
		m.ifReg = value & 0x1F
	case a == addr.DMA:
		m.DMA.Start(value)
	case a >= addr.LCDC && a <= addr.WX:
		m.PPU.WriteRegister(a, value)
	case a < 0xFF80:
		m.io[a-0xFF00] = value
	case a < 0xFFFF:
		m.hram[a-0xFF80] = value
	case a == addr.IE:
		m.ieReg = value & 0x1F
	}
}

// IF/IE are exposed directly for the interrupt dispatcher (C8), which lives
// alongside the CPU but needs write access to clear a serviced bit.
func (m *MMU) IF() byte     { return m.ifReg }
func (m *MMU) SetIF(v byte) { m.ifReg = v & 0x1F }
func (m *MMU) IE() byte     { return m.ieReg }
