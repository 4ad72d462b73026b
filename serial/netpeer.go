package serial

import (
	"github.com/gorilla/websocket"
)

// NetPeer adapts a websocket connection to the Peer interface, so two
// engine instances (or an engine and a remote opponent) can exchange
// serial bytes over a real transport instead of only an in-process
// channel pair. Each logical byte is sent as its own binary message. This
// trades a little framing overhead for a dead-simple wire format, which is
// fine at link-cable data rates.
type NetPeer struct {
	conn   *websocket.Conn
	inbox  chan byte
	closed chan struct{}
}

// NewNetPeer wraps conn and starts the background reader that feeds Recv.
func NewNetPeer(conn *websocket.Conn, capacity int) *NetPeer {
	p := &NetPeer{
		conn:   conn,
		inbox:  make(chan byte, capacity),
		closed: make(chan struct{}),
	}
	go p.readLoop()
	return p
}

func (p *NetPeer) readLoop() {
	defer close(p.inbox)
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		for _, b := range data {
			select {
			case p.inbox <- b:
			case <-p.closed:
				return
			}
		}
	}
}

// Send transmits a single byte as a binary websocket message. Errors are
// swallowed: a write failure degrades the link to "disconnected" the next
// time Recv observes the closed inbox, matching the drop-on-disconnect
// behavior spec §9 calls for.
func (p *NetPeer) Send(b byte) {
	_ = p.conn.WriteMessage(websocket.BinaryMessage, []byte{b})
}

func (p *NetPeer) Recv() (byte, bool) {
	b, ok := <-p.inbox
	return b, ok
}

// Close tears down the underlying connection and stops the reader.
func (p *NetPeer) Close() error {
	close(p.closed)
	return p.conn.Close()
}
