// Package video implements the pixel-processing unit (C2): the scanline
// state machine, VRAM/OAM storage, and BG/window/sprite compositing.
package video

import (
	"github.com/nullstep/pocketcore/addr"
	"github.com/nullstep/pocketcore/bit"
)

// Mode is the PPU's current scanline stage; its numeric value matches the
// low two bits of STAT.
type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMSearch
	PixelTransfer
)

const (
	oamSearchCycles     = 80
	pixelTransferCycles = 172
	scanlineCycles      = oamSearchCycles + pixelTransferCycles + 204
	visibleLines        = 144
	totalLines          = 154
	FrameCycles         = scanlineCycles * totalLines
)

// PPU owns VRAM, OAM, the LCD registers, and the double-buffered
// framebuffer, and advances its scanline state machine in lockstep with
// the CPU's bus ticks.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	mode       Mode
	line       int
	cycles     int
	windowLine int

	lcdc, stat, scy, scx, ly, lyc, wx, wy, bgp, obp0, obp1 byte

	front, back  *FrameBuffer
	bgPriority   [FramebufferSize]byte
	spritePrio   spritePriorityBuffer
	frameCount   uint64
	scanlineDone bool

	RequestInterrupt func(addr.Interrupt)
}

// NewPPU returns a PPU with the post-bootrom monochrome register values
// from spec §6.
func NewPPU() *PPU {
	p := &PPU{
		front: &FrameBuffer{},
		back:  &FrameBuffer{},
		lcdc:  0x91,
		stat:  0x85,
		bgp:   0xFC,
		obp0:  0xFF,
		obp1:  0xFF,
		mode:  VBlank,
		line:  144,
		ly:    144,
	}
	p.front.Clear()
	p.back.Clear()
	return p
}

// Reset restores every LCD register, the scanline state machine, and VRAM/
// OAM contents to their post-bootrom power-on values. The framebuffers are
// cleared but the frame counter is not part of power-on state reset here —
// spec's lifecycle only requires components to reset to power-on register
// values, and frame count is a pure byproduct of those.
func (p *PPU) Reset() {
	p.vram = [0x2000]byte{}
	p.oam = [0xA0]byte{}
	p.mode = VBlank
	p.line = 144
	p.cycles = 0
	p.windowLine = 0
	p.lcdc = 0x91
	p.stat = 0x85
	p.scy, p.scx = 0, 0
	p.ly, p.lyc = 144, 0
	p.wx, p.wy = 0, 0
	p.bgp = 0xFC
	p.obp0, p.obp1 = 0xFF, 0xFF
	p.scanlineDone = false
	p.front.Clear()
	p.back.Clear()
}

func (p *PPU) request(i addr.Interrupt) {
	if p.RequestInterrupt != nil {
		p.RequestInterrupt(i)
	}
}

func (p *PPU) lcdEnabled() bool {
	return bit.IsSet(7, p.lcdc)
}

// FrontBuffer is the last fully composed frame; safe to read between
// Tick-driving calls since only the back buffer is mutated mid-frame.
func (p *PPU) FrontBuffer() *FrameBuffer {
	return p.front
}

func (p *PPU) FrameCount() uint64 {
	return p.frameCount
}

// Tick advances the scanline state machine by cycles T-cycles.
func (p *PPU) Tick(cycles int) {
	if !p.lcdEnabled() {
		p.mode = HBlank
		p.line = 0
		p.cycles = 0
		p.ly = 0
		return
	}

	p.cycles += cycles

	switch p.mode {
	case OAMSearch:
		if p.cycles >= oamSearchCycles {
			p.cycles -= oamSearchCycles
			p.setMode(PixelTransfer)
			p.scanlineDone = false
		}
	case PixelTransfer:
		if !p.scanlineDone {
			p.renderScanline()
			p.scanlineDone = true
		}
		if p.cycles >= pixelTransferCycles {
			p.cycles -= pixelTransferCycles
			p.setMode(HBlank)
			if bit.IsSet(3, p.stat) {
				p.request(addr.LCDStat)
			}
		}
	case HBlank:
		hblankCycles := scanlineCycles - oamSearchCycles - pixelTransferCycles
		if p.cycles >= hblankCycles {
			p.cycles -= hblankCycles
			p.setLY(p.line + 1)

			if p.line == visibleLines {
				p.setMode(VBlank)
				p.swapBuffers()
				p.frameCount++
				p.windowLine = 0
				p.request(addr.VBlank)
				if bit.IsSet(4, p.stat) {
					p.request(addr.LCDStat)
				}
			} else {
				p.setMode(OAMSearch)
				if bit.IsSet(5, p.stat) {
					p.request(addr.LCDStat)
				}
			}
		}
	case VBlank:
		if p.cycles >= scanlineCycles {
			p.cycles -= scanlineCycles
			if p.line == totalLines-1 {
				p.setLY(0)
				p.setMode(OAMSearch)
				if bit.IsSet(5, p.stat) {
					p.request(addr.LCDStat)
				}
			} else {
				p.setLY(p.line + 1)
			}
		}
	}
}

func (p *PPU) setMode(mode Mode) {
	p.mode = mode
	p.stat = (p.stat &^ 0x03) | byte(mode)
}

func (p *PPU) setLY(line int) {
	p.line = line
	p.ly = byte(line)
	p.compareLYToLYC()
}

func (p *PPU) compareLYToLYC() {
	if p.ly == p.lyc {
		p.stat = bit.Set(2, p.stat)
		if bit.IsSet(6, p.stat) {
			p.request(addr.LCDStat)
		}
	} else {
		p.stat = bit.Reset(2, p.stat)
	}
}

func (p *PPU) swapBuffers() {
	p.front, p.back = p.back, p.front
}

// ReadVRAM is the CPU-gated accessor: it returns 0xFF during PixelTransfer.
func (p *PPU) ReadVRAM(offset uint16) byte {
	if p.mode == PixelTransfer {
		return 0xFF
	}
	return p.vram[offset]
}

// WriteVRAM drops the write during PixelTransfer.
func (p *PPU) WriteVRAM(offset uint16, value byte) {
	if p.mode == PixelTransfer {
		return
	}
	p.vram[offset] = value
}

// ReadOAM is the CPU-gated accessor: it returns 0xFF during OAMSearch or
// PixelTransfer.
func (p *PPU) ReadOAM(offset uint16) byte {
	if p.mode == OAMSearch || p.mode == PixelTransfer {
		return 0xFF
	}
	return p.oam[offset]
}

func (p *PPU) WriteOAM(offset uint16, value byte) {
	if p.mode == OAMSearch || p.mode == PixelTransfer {
		return
	}
	p.oam[offset] = value
}

// ReadOAMRaw/WriteOAMRaw bypass the CPU gate, for the OAM DMA engine and
// debugger dumps.
func (p *PPU) ReadOAMRaw(offset int) byte    { return p.oam[offset] }
func (p *PPU) WriteOAMRaw(offset int, v byte) { p.oam[offset] = v }
func (p *PPU) ReadVRAMRaw(offset int) byte    { return p.vram[offset] }
func (p *PPU) WriteVRAMRaw(offset int, v byte) { p.vram[offset] = v }

// ReadRegister/WriteRegister handle the LCDC..OBP1 I/O register block.
func (p *PPU) ReadRegister(a uint16) byte {
	switch a {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) WriteRegister(a uint16, value byte) {
	switch a {
	case addr.LCDC:
		p.lcdc = value
	case addr.STAT:
		p.stat = (p.stat & 0x07) | (value &^ 0x07)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only on real hardware
	case addr.LYC:
		p.lyc = value
		p.compareLYToLYC()
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}
