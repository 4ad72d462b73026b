// Package debug implements the inspection and breakpoint surface a
// front-end debugger drives: register/memory peek-and-poke, a sorted
// breakpoint set checked one instruction ahead of execution, and raw VRAM
// dumps, wired directly onto the engine's CPU and bus rather than
// through any new peripheral of its own.
package debug

import (
	"fmt"
	"sort"

	"github.com/nullstep/pocketcore/cpu"
	"github.com/nullstep/pocketcore/memory"
	"github.com/nullstep/pocketcore/video"
)

// AccessType classifies why a breakpoint fired.
type AccessType int

const (
	AccessRead AccessType = iota
	AccessWrite
	AccessExecute
	AccessJump
)

func (t AccessType) String() string {
	switch t {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessExecute:
		return "execute"
	case AccessJump:
		return "jump"
	default:
		return "unknown"
	}
}

// Breakpoint pairs an address with the kind of access that should trip it.
type Breakpoint struct {
	Address uint16
	Kind    AccessType
}

func less(a, b Breakpoint) bool {
	if a.Address != b.Address {
		return a.Address < b.Address
	}
	return a.Kind < b.Kind
}

// bitmapDumper is the subset of *video.PPU the debugger needs for raw VRAM
// visualization; kept as an interface so it's decoupled from the bus's own
// narrower VideoBus interface.
type bitmapDumper interface {
	DumpTiles() video.Bitmap
	DumpBG() video.Bitmap
}

// Debugger wraps a running engine's CPU and bus with inspection and
// breakpoint hooks. It holds no state of its own about execution — pause
// vs. run is the caller's concern; Debugger only tells it when to pause.
type Debugger struct {
	cpu  *cpu.CPU
	bus  *memory.MMU
	cart *memory.Cartridge
	ppu  bitmapDumper

	enabled     bool
	breakpoints []Breakpoint
	callback    func(Breakpoint)
}

// New wires a debugger onto an already-constructed engine's CPU, bus, and
// cartridge. ppu may be nil if tile/background dumps won't be used.
func New(c *cpu.CPU, bus *memory.MMU, cart *memory.Cartridge) *Debugger {
	d := &Debugger{cpu: c, bus: bus, cart: cart}
	if dumper, ok := bus.PPU.(bitmapDumper); ok {
		d.ppu = dumper
	}
	return d
}

func (d *Debugger) Enable()       { d.enabled = true }
func (d *Debugger) Disable()      { d.enabled = false }
func (d *Debugger) Enabled() bool { return d.enabled }

// AddBreakpoint inserts bp into the sorted set, if it isn't already there.
func (d *Debugger) AddBreakpoint(bp Breakpoint) {
	i := sort.Search(len(d.breakpoints), func(i int) bool { return !less(d.breakpoints[i], bp) })
	if i < len(d.breakpoints) && d.breakpoints[i] == bp {
		return
	}
	d.breakpoints = append(d.breakpoints, Breakpoint{})
	copy(d.breakpoints[i+1:], d.breakpoints[i:])
	d.breakpoints[i] = bp
}

// RemoveBreakpoint drops the breakpoint at index, if it exists.
func (d *Debugger) RemoveBreakpoint(index int) (Breakpoint, error) {
	if index < 0 || index >= len(d.breakpoints) {
		return Breakpoint{}, fmt.Errorf("debug: breakpoint index %d out of range", index)
	}
	bp := d.breakpoints[index]
	d.breakpoints = append(d.breakpoints[:index], d.breakpoints[index+1:]...)
	return bp, nil
}

// Breakpoints returns a copy of the current breakpoint set, in address
// order (then access-kind order for equal addresses).
func (d *Debugger) Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(d.breakpoints))
	copy(out, d.breakpoints)
	return out
}

func (d *Debugger) find(bp Breakpoint) (Breakpoint, bool) {
	i := sort.Search(len(d.breakpoints), func(i int) bool { return !less(d.breakpoints[i], bp) })
	if i < len(d.breakpoints) && d.breakpoints[i] == bp {
		return d.breakpoints[i], true
	}
	return Breakpoint{}, false
}

// RegisterBreakpointCallback sets the function invoked whenever DebugStep
// trips a breakpoint. A single slot, like the front-end that drives this
// only ever wants one subscriber.
func (d *Debugger) RegisterBreakpointCallback(cb func(Breakpoint)) { d.callback = cb }
func (d *Debugger) ClearBreakpointCallback()                       { d.callback = nil }


// DebugStep advances the CPU by exactly one Step, first checking whether
// the instruction about to execute would trip a breakpoint. The step
// always happens regardless of the lookahead result — it is the caller's
// job to decide whether to keep stepping after being told a breakpoint
// was hit.
func (d *Debugger) DebugStep() *Breakpoint {
	hit := d.Lookahead()
	d.cpu.Step()
	if hit != nil && d.callback != nil {
		d.callback(*hit)
	}
	return hit
}

// GetRegisters returns a snapshot of the CPU's register file.
func (d *Debugger) GetRegisters() cpu.Registers { return d.cpu.Registers() }

func (d *Debugger) SetRegister(r cpu.Register, value byte)             { d.cpu.SetRegister(r, value) }
func (d *Debugger) SetRegisterPair(rp cpu.RegisterPair, value uint16)   { d.cpu.SetRegisterPair(rp, value) }

// ReadMemory reads a single byte through the bus's ungated debug path.
func (d *Debugger) ReadMemory(address uint16) byte { return d.bus.ReadDebug(address) }

// WriteMemory pokes a single byte. ROM addresses go straight into the
// cartridge image rather than through the MBC's bank-control write
// semantics, so a debugger can edit the program itself.
func (d *Debugger) WriteMemory(address uint16, value byte) {
	if address < 0x8000 {
		d.cart.PatchROM(address, value)
		return
	}
	d.bus.WriteDebug(address, value)
}

// ReadRange reads [start, end] inclusive.
func (d *Debugger) ReadRange(start, end uint16) ([]byte, error) {
	if start > end {
		return nil, fmt.Errorf("debug: range start %#04x is after end %#04x", start, end)
	}
	out := make([]byte, int(end)-int(start)+1)
	for i := range out {
		out[i] = d.bus.ReadDebug(start + uint16(i))
	}
	return out, nil
}

// WriteRange writes values starting at start, through WriteMemory so ROM
// patches still bypass the MBC.
func (d *Debugger) WriteRange(start uint16, values []byte) {
	for i, v := range values {
		d.WriteMemory(start+uint16(i), v)
	}
}

// GetAssembly disassembles a standalone byte sequence — typically one
// already read out via ReadRange — into a sequence of instructions,
// labeled with the address each would occupy starting at base. It reads
// only from code, never touching the bus, so it works equally well on
// bytes that were never resident in this engine's memory.
func (d *Debugger) GetAssembly(code []byte, base uint16) []Line {
	read := func(a uint16) byte {
		idx := int(a) - int(base)
		if idx < 0 || idx >= len(code) {
			return 0
		}
		return code[idx]
	}

	var lines []Line
	pc := base
	end := base + uint16(len(code))
	for pc < end {
		line := disassembleAt(pc, read)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}
	return lines
}

// GetAssemblyAt disassembles count instructions live off the bus starting
// at address, for a front-end that wants to inspect a running region
// directly rather than pulling the bytes out first.
func (d *Debugger) GetAssemblyAt(address uint16, count int) []Line {
	read := d.bus.ReadDebug
	lines := make([]Line, 0, count)
	pc := address
	for i := 0; i < count; i++ {
		line := disassembleAt(pc, read)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}
	return lines
}

// DumpTiles and DumpBG delegate to the PPU's raw-VRAM visualizations, for
// front-ends that want to render them. Both return a zero Bitmap if the
// debugger wasn't constructed with a dumper-capable PPU.
func (d *Debugger) DumpTiles() video.Bitmap {
	if d.ppu == nil {
		return video.Bitmap{}
	}
	return d.ppu.DumpTiles()
}

func (d *Debugger) DumpBG() video.Bitmap {
	if d.ppu == nil {
		return video.Bitmap{}
	}
	return d.ppu.DumpBG()
}

// Reset restores the CPU and bus to their power-on state, per spec's
// lifecycle design: the breakpoint list and any RAM patches made via
// WriteMemory survive the reset untouched, since patches simply live in
// the cartridge ROM/RAM images this reset doesn't reach.
func (d *Debugger) Reset() {
	d.cpu.Reset()
	d.bus.Reset()
	d.cart.Reset()
}
