package video

// Snapshot is the CBOR-serializable portion of PPU state: VRAM, OAM, the
// LCD registers, and the scanline state machine's position, but not the
// framebuffers themselves — those are recomputed by the time the next
// frame completes, and omitting them keeps save files small.
type Snapshot struct {
	VRAM []byte
	OAM  []byte

	Mode       Mode
	Line       int
	Cycles     int
	WindowLine int
	FrameCount uint64

	LCDC, STAT, SCY, SCX, LY, LYC, WX, WY, BGP, OBP0, OBP1 byte
}

// Snapshot captures the PPU's serializable state.
func (p *PPU) Snapshot() Snapshot {
	return Snapshot{
		VRAM: append([]byte(nil), p.vram[:]...),
		OAM:  append([]byte(nil), p.oam[:]...),

		Mode: p.mode, Line: p.line, Cycles: p.cycles, WindowLine: p.windowLine,
		FrameCount: p.frameCount,

		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx,
		LY: p.ly, LYC: p.lyc, WX: p.wx, WY: p.wy,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,
	}
}

// Restore replaces VRAM/OAM/registers/scanline position with s. The front
// and back framebuffers are cleared rather than restored; a fresh frame
// composes within one full scanline pass.
func (p *PPU) Restore(s Snapshot) {
	copy(p.vram[:], s.VRAM)
	copy(p.oam[:], s.OAM)

	p.mode, p.line, p.cycles, p.windowLine = s.Mode, s.Line, s.Cycles, s.WindowLine
	p.frameCount = s.FrameCount

	p.lcdc, p.stat, p.scy, p.scx = s.LCDC, s.STAT, s.SCY, s.SCX
	p.ly, p.lyc, p.wx, p.wy = s.LY, s.LYC, s.WX, s.WY
	p.bgp, p.obp0, p.obp1 = s.BGP, s.OBP0, s.OBP1

	p.front.Clear()
	p.back.Clear()
}
