// Package serial implements the link-cable shift register (C4) plus the
// bounded-queue peer abstractions it exchanges bytes with.
package serial

const (
	bitCycles  = 64 // T-cycles per shifted bit at the normal (non-double) speed
	bitsPerXfer = 8
)

// Peer is a connected serial partner: a pair of bounded byte queues. Send
// pushes a byte this side transmitted out to the peer; Recv drains a byte
// the peer transmitted to this side. A disconnected peer's Recv reports
// ok=false, which the Port treats as "reverted to disconnected."
type Peer interface {
	Send(b byte)
	Recv() (b byte, ok bool)
}

// ChannelPeer is the in-process peer: two bounded channels, matching
// spec §5's "network-backed serial peer via a pair of bounded message
// queues" requirement, usable in-process or fed by a bridge such as NetPeer.
type ChannelPeer struct {
	outbound chan byte // bytes this side sends
	inbound  chan byte // bytes this side receives
}

// NewChannelPeer returns a connected peer pair (a, b): bytes sent on a are
// received on b and vice versa.
func NewChannelPeer(capacity int) (a, b *ChannelPeer) {
	c1 := make(chan byte, capacity)
	c2 := make(chan byte, capacity)
	return &ChannelPeer{outbound: c1, inbound: c2}, &ChannelPeer{outbound: c2, inbound: c1}
}

func (p *ChannelPeer) Send(b byte) {
	select {
	case p.outbound <- b:
	default:
		// bounded queue is full: drop rather than block the cooperative engine.
	}
}

func (p *ChannelPeer) Recv() (byte, bool) {
	b, ok := <-p.inbound
	return b, ok
}

// Close disconnects the peer; subsequent Recv calls on the other end report
// ok=false once any bytes already queued for it have been read.
func (p *ChannelPeer) Close() {
	close(p.outbound)
}

// Port is the SB/SC shift register. It shifts one bit every bitCycles
// T-cycles under the internal clock, exchanging a whole byte with its peer
// once all eight bits have shifted; under the external clock it waits for
// the peer to drive the exchange via ReceiveExternal.
type Port struct {
	sb byte
	sc byte

	cycleCounter int
	bitsShifted  int

	peer      Peer
	connected bool

	RequestInterrupt func()
}

// NewPort returns a disconnected Port; Attach gives it a peer.
func NewPort() *Port {
	return &Port{}
}

// Attach connects peer as the remote end of the link cable.
func (p *Port) Attach(peer Peer) {
	p.peer = peer
	p.connected = peer != nil
}

func (p *Port) ReadSB() byte {
	if !p.connected && p.sc&0x80 != 0 {
		return 0xFF
	}
	return p.sb
}

func (p *Port) WriteSB(value byte) {
	p.sb = value
}

func (p *Port) ReadSC() byte {
	return p.sc | 0x7C
}

// WriteSC starts a new transfer when bit 7 is set, resetting the shift
// counters.
func (p *Port) WriteSC(value byte) {
	p.sc = value & 0x83
	if p.sc&0x80 != 0 {
		p.cycleCounter = 0
		p.bitsShifted = 0
	}
}

func (p *Port) transferActive() bool {
	return p.sc&0x80 != 0
}

func (p *Port) internalClock() bool {
	return p.sc&0x01 != 0
}

// Tick advances the shift register by cycles T-cycles. Only the internal
// clock is self-driven; the external clock waits for ReceiveExternal.
func (p *Port) Tick(cycles int) {
	if !p.transferActive() || !p.internalClock() {
		return
	}

	for i := 0; i < cycles; i++ {
		p.cycleCounter++
		if p.cycleCounter < bitCycles {
			continue
		}
		p.cycleCounter = 0
		p.bitsShifted++
		if p.bitsShifted >= bitsPerXfer {
			p.completeTransfer()
			return
		}
	}
}

// completeTransfer exchanges the full staged byte with the peer: this is
// the one synchronous suspension point spec §5 calls out, made droppable
// by treating a disconnected or closed peer as an immediate 0xFF reply.
func (p *Port) completeTransfer() {
	outgoing := p.sb

	if !p.connected || p.peer == nil {
		p.sb = 0xFF
	} else {
		p.peer.Send(outgoing)
		reply, ok := p.peer.Recv()
		if !ok {
			p.connected = false
			p.sb = 0xFF
		} else {
			p.sb = reply
		}
	}

	p.sc &^= 0x80
	p.bitsShifted = 0
	if p.RequestInterrupt != nil {
		p.RequestInterrupt()
	}
}

// ReceiveExternal is how an externally clocked transfer completes: the
// peer itself drove the 8 shifts and now delivers the resulting byte.
func (p *Port) ReceiveExternal(value byte) {
	if p.internalClock() {
		return
	}
	p.sb = value
	p.sc &^= 0x80
	if p.RequestInterrupt != nil {
		p.RequestInterrupt()
	}
}

// Reset restores SB, SC and the shift counters to their power-on values.
// The attached peer and the connected flag are left as they are.
func (p *Port) Reset() {
	p.sb = 0
	p.sc = 0
	p.cycleCounter = 0
	p.bitsShifted = 0
}

// Snapshot is the CBOR-serializable shift-register state. The attached
// peer itself is never serialized — per the save-state design, live serial
// queues are re-attached by the caller after a load, not restored.
type Snapshot struct {
	SB, SC               byte
	CycleCounter          int
	BitsShifted           int
	Connected             bool
}

func (p *Port) Snapshot() Snapshot {
	return Snapshot{SB: p.sb, SC: p.sc, CycleCounter: p.cycleCounter, BitsShifted: p.bitsShifted, Connected: p.connected}
}

// Restore replaces the shift register's state, but leaves the peer
// attachment as it is — only New/Attach decide connectivity.
func (p *Port) Restore(s Snapshot) {
	p.sb, p.sc, p.cycleCounter, p.bitsShifted = s.SB, s.SC, s.CycleCounter, s.BitsShifted
	p.connected = s.Connected && p.peer != nil
}
