// Package pocket is the root of the emulation engine: construction, the
// cycle-accurate drive loop, input, framebuffer/frame-counter access, and
// save-state persistence, wiring together pocket/cpu, pocket/memory,
// pocket/video, and pocket/serial.
package pocket

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/nullstep/pocketcore/cpu"
	"github.com/nullstep/pocketcore/memory"
	"github.com/nullstep/pocketcore/serial"
	"github.com/nullstep/pocketcore/video"
)

// masterClockHz is the DMG's 4.194304 MHz T-cycle clock.
const masterClockHz = 4194304

// Key re-exports the eight physical buttons so callers never need to
// import pocket/memory just to name one.
type Key = memory.Key

const (
	KeyRight  = memory.KeyRight
	KeyLeft   = memory.KeyLeft
	KeyUp     = memory.KeyUp
	KeyDown   = memory.KeyDown
	KeyA      = memory.KeyA
	KeyB      = memory.KeyB
	KeySelect = memory.KeySelect
	KeyStart  = memory.KeyStart
)

// Engine is the root struct and entry point for running the emulation,
// generalizing the teacher's single-cartridge `Emulator` to the full
// component set this module implements.
type Engine struct {
	cpu  *cpu.CPU
	mmu  *memory.MMU
	ppu  *video.PPU
	cart *memory.Cartridge
}

// New validates rom, parses its header, and wires every component with
// post-bootrom register defaults; ram, if non-nil, seeds cartridge RAM
// (e.g. restored from a battery save) ahead of the header's declared size.
func New(rom []byte, ram []byte) (*Engine, error) {
	cart, err := memory.NewCartridge(rom, ram)
	if err != nil {
		return nil, err
	}
	return newEngine(cart)
}

func newEngine(cart *memory.Cartridge) (*Engine, error) {
	ppu := video.NewPPU()
	mmu := memory.New(cart, ppu)
	ppu.RequestInterrupt = mmu.RequestInterrupt

	return &Engine{
		cpu:  cpu.New(mmu),
		mmu:  mmu,
		ppu:  ppu,
		cart: cart,
	}, nil
}

// Emulate runs the engine for approximately duration of emulated wall-clock
// time, converting it to a T-cycle budget at the master clock rate and
// executing whole CPU steps until that budget is exhausted.
func (e *Engine) Emulate(duration time.Duration) {
	budget := int64(duration) * masterClockHz / int64(time.Second)

	for budget > 0 {
		budget -= int64(e.cpu.Step())
	}
}

// Reset restores every component to its power-on state, as spec's
// lifecycle describes for an explicit reset request. Cartridge RAM
// contents (and an MBC3's running RTC) are cartridge-side and are left
// untouched; only the console-side registers reset.
func (e *Engine) Reset() {
	e.cpu.Reset()
	e.ppu.Reset()
	e.mmu.Reset()
	e.cart.Reset()
}

// KeyDown latches key as pressed and requests a Joypad interrupt, matching
// the real hardware's high-to-low transition trigger.
func (e *Engine) KeyDown(key Key) { e.mmu.Joypad.Press(key) }

// KeyUp releases key.
func (e *Engine) KeyUp(key Key) { e.mmu.Joypad.Release(key) }

// FrameBuffer returns the 160x144 front buffer of the last fully composed
// frame.
func (e *Engine) FrameBuffer() *video.FrameBuffer { return e.ppu.FrontBuffer() }

// FrameCounter returns the number of completed frames since construction.
func (e *Engine) FrameCounter() uint64 { return e.ppu.FrameCount() }

// CartridgeRAM exposes cartridge RAM for round-trip persistence (battery
// saves); the caller must not resize the returned slice.
func (e *Engine) CartridgeRAM() []byte { return e.cart.RAM() }

// AttachSerialPeer connects peer as the remote end of the link cable.
func (e *Engine) AttachSerialPeer(peer serial.Peer) { e.mmu.Serial.Attach(peer) }

// CreateSerialChannels attaches one end of a bounded in-process channel
// pair as the engine's serial peer and returns the other end: sending a
// byte on it represents a byte arriving from the peer, receiving a byte
// represents a byte the engine sent out.
func (e *Engine) CreateSerialChannels(capacity int) *serial.ChannelPeer {
	local, remote := serial.NewChannelPeer(capacity)
	e.mmu.Serial.Attach(local)
	return remote
}

// CPU exposes the interpreter for the debugger package's register/PC
// access; not for general use.
func (e *Engine) CPU() *cpu.CPU { return e.cpu }

// Bus exposes the gated/ungated memory access the debugger needs.
func (e *Engine) Bus() *memory.MMU { return e.mmu }

// Cartridge exposes the loaded ROM/RAM/MBC for the debugger's ROM-patching
// write path.
func (e *Engine) Cartridge() *memory.Cartridge { return e.cart }

// snapshot is the CBOR-encoded save-state shape: every component's
// serializable state, excluding the immutable ROM image and any live
// serial queues, consistent with spec's persisted-state design note.
type snapshot struct {
	ROMHash   uint64
	CPU       cpu.Snapshot
	PPU       video.Snapshot
	MMU       memory.MMUSnapshot
	Timer     memory.TimerSnapshot
	Joypad    memory.JoypadSnapshot
	DMA       memory.OAMDMASnapshot
	Cartridge memory.CartridgeSnapshot
	Serial    serial.Snapshot
}

// SaveState CBOR-encodes the engine's full state except the ROM image. The
// ROM's xxhash is recorded alongside it, not to reconstruct the ROM but so
// LoadState can refuse to apply a state that doesn't belong to it.
func (e *Engine) SaveState() ([]byte, error) {
	snap := snapshot{
		ROMHash:   xxhash.Sum64(e.cart.ROM()),
		CPU:       e.cpu.Snapshot(),
		PPU:       e.ppu.Snapshot(),
		MMU:       e.mmu.Snapshot(),
		Timer:     e.mmu.Timer.Snapshot(),
		Joypad:    e.mmu.Joypad.Snapshot(),
		DMA:       e.mmu.DMA.Snapshot(),
		Cartridge: e.cart.Snapshot(),
		Serial:    e.mmu.Serial.Snapshot(),
	}

	data, err := cbor.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("pocket: encode save state: %w", err)
	}
	return data, nil
}

// LoadState re-binds rom (never itself serialized) and restores every
// other component from a snapshot produced by SaveState. Any serial peer
// must be re-attached by the caller afterward via AttachSerialPeer.
func LoadState(rom []byte, data []byte) (*Engine, error) {
	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("pocket: decode save state: %w", err)
	}

	if hash := xxhash.Sum64(rom); hash != snap.ROMHash {
		return nil, fmt.Errorf("pocket: save state does not belong to this ROM (hash %x, want %x)", hash, snap.ROMHash)
	}

	cart, err := memory.NewCartridge(rom, nil)
	if err != nil {
		return nil, err
	}
	cart.Restore(snap.Cartridge)

	e, err := newEngine(cart)
	if err != nil {
		return nil, err
	}

	e.ppu.Restore(snap.PPU)
	e.mmu.Restore(snap.MMU)
	e.mmu.Timer.Restore(snap.Timer)
	e.mmu.Joypad.Restore(snap.Joypad)
	e.mmu.DMA.Restore(snap.DMA)
	e.mmu.Serial.Restore(snap.Serial)
	e.cpu.Restore(snap.CPU)

	return e, nil
}
