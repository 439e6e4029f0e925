package server

import "time"

// Config is the configuration surface consumed by the server core.
type Config struct {
	// Addr is the TCP bind address, e.g. "127.0.0.1:62743".
	Addr string

	// WSAddr, when non-empty, enables the WebSocket gateway on this bind
	// address. The gateway carries the identical protocol, one text
	// message per envelope.
	WSAddr string

	// Players is the roster size the game starts at.
	Players int

	// TickInterval is the fixed broadcast period for state snapshots.
	TickInterval time.Duration

	// ReadTimeout bounds each blocking read so connection workers stay
	// responsive to shutdown. It does not limit how long a player may
	// take to move.
	ReadTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:62743"
	}
	if c.Players == 0 {
		c.Players = 2
	}
	if c.TickInterval == 0 {
		c.TickInterval = 50 * time.Millisecond
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = time.Second
	}
	return c
}
