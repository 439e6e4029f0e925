package connection

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"badam/protocol"
)

// Transport carries protocol envelopes over one persistent bidirectional
// stream. Writes are safe for concurrent use; reads belong to a single
// connection worker.
type Transport interface {
	ReadEnvelope() (protocol.Envelope, error)
	WriteEnvelope(protocol.Envelope) error
	SetReadDeadline(time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// TCPTransport frames envelopes with the length-prefixed codec over a raw
// TCP connection. Reads go through a resumable frame reader so a read
// deadline firing mid-frame never desyncs the stream.
type TCPTransport struct {
	conn    net.Conn
	reader  *protocol.FrameReader
	writeMu sync.Mutex
}

// NewTCPTransport wraps an accepted TCP connection.
func NewTCPTransport(conn net.Conn) *TCPTransport {
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}
	return &TCPTransport{
		conn:   conn,
		reader: protocol.NewFrameReader(bufio.NewReader(conn)),
	}
}

// ReadEnvelope blocks until the next full frame arrives. After a timeout
// the partially read frame stays pending for the next call.
func (t *TCPTransport) ReadEnvelope() (protocol.Envelope, error) {
	return t.reader.ReadEnvelope()
}

// WriteEnvelope frames and writes one envelope.
func (t *TCPTransport) WriteEnvelope(env protocol.Envelope) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return protocol.WriteEnvelope(t.conn, env)
}

// SetReadDeadline bounds the next ReadEnvelope call.
func (t *TCPTransport) SetReadDeadline(deadline time.Time) error {
	return t.conn.SetReadDeadline(deadline)
}

// RemoteAddr returns the peer address.
func (t *TCPTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// Close closes the underlying connection.
func (t *TCPTransport) Close() error {
	return t.conn.Close()
}

// WSTransport carries the same envelopes over a WebSocket, one text
// message per envelope. The WebSocket's own framing replaces the length
// prefix.
type WSTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewWSTransport wraps an upgraded WebSocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// ReadEnvelope blocks until the next message arrives.
func (t *WSTransport) ReadEnvelope() (protocol.Envelope, error) {
	var env protocol.Envelope
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return env, err
	}
	err = json.Unmarshal(data, &env)
	return env, err
}

// WriteEnvelope writes one envelope as a text message.
func (t *WSTransport) WriteEnvelope(env protocol.Envelope) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// SetReadDeadline is a no-op for WebSocket connections: an expired read
// deadline poisons a gorilla connection, so shutdown unblocks WS readers
// by closing the connection instead.
func (t *WSTransport) SetReadDeadline(time.Time) error {
	return nil
}

// RemoteAddr returns the peer address.
func (t *WSTransport) RemoteAddr() net.Addr {
	return t.conn.RemoteAddr()
}

// Close closes the underlying connection.
func (t *WSTransport) Close() error {
	return t.conn.Close()
}
