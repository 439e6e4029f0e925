// Package client implements a headless client for the card server: it
// dials, answers the login handshake, and exposes the server's stream of
// snapshots and results. Rendering and move selection live elsewhere.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"badam/protocol"
	"badam/room"
)

// Update is one server-driven change of the client's view.
type Update struct {
	Kind     string
	Snapshot *room.Snapshot // set for GAME_STATE
	Names    []string       // set for START, index-aligned to player id
	Results  []int          // set for RESULTS
}

// Client is one connection to the server.
type Client struct {
	nickname string
	log      logrus.FieldLogger

	conn    net.Conn
	reader  *bufio.Reader
	writeMu sync.Mutex

	updates chan Update
}

// Dial connects to the server and prepares the client for Run. The
// nickname is sent when the server asks for it.
func Dial(addr, nickname string, log logrus.FieldLogger) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}

	return &Client{
		nickname: nickname,
		log:      log.WithField("nickname", nickname),
		conn:     conn,
		reader:   bufio.NewReader(conn),
		updates:  make(chan Update, 16),
	}, nil
}

// Updates delivers start, snapshot, results, and move-acknowledgement
// events in arrival order. The channel closes when Run returns.
func (c *Client) Updates() <-chan Update {
	return c.updates
}

// SendMove submits a card shorthand or "PASS".
func (c *Client) SendMove(move string) error {
	env, err := protocol.NewEnvelope(protocol.Move, move)
	if err != nil {
		return err
	}
	return c.write(env)
}

// Close tears the connection down; a blocked Run unblocks with an error.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Run reads the server stream until the final results arrive, the context
// is canceled, or the connection drops. Login is handled inline: the
// server re-prompts until it has a non-empty nickname.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	defer close(c.updates)

	for {
		env, err := protocol.ReadEnvelope(c.reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read server stream: %w", err)
		}

		finished, err := c.handle(env)
		if err != nil {
			return err
		}
		if finished {
			return nil
		}
	}
}

func (c *Client) handle(env protocol.Envelope) (finished bool, err error) {
	switch env.Type {
	case protocol.RequestNickname:
		reply, err := protocol.NewEnvelope(protocol.SendNickname, c.nickname)
		if err != nil {
			return false, err
		}
		return false, c.write(reply)

	case protocol.Wait:
		c.log.Debug("waiting for players")
		return false, nil

	case protocol.Start:
		var names []string
		if err := env.Decode(&names); err != nil {
			return false, fmt.Errorf("decode start roster: %w", err)
		}
		c.log.WithField("players", names).Info("game started")
		c.publish(Update{Kind: env.Type, Names: names})
		return false, nil

	case protocol.GameState:
		var snap room.Snapshot
		if err := env.Decode(&snap); err != nil {
			return false, fmt.Errorf("decode snapshot: %w", err)
		}
		c.publish(Update{Kind: env.Type, Snapshot: &snap})
		return false, nil

	case protocol.MoveValid, protocol.MoveInvalid:
		c.publish(Update{Kind: env.Type})
		return false, nil

	case protocol.Results:
		var results []int
		if err := env.Decode(&results); err != nil {
			return false, fmt.Errorf("decode results: %w", err)
		}
		c.log.WithField("rank", results).Info("game finished")
		c.publish(Update{Kind: env.Type, Results: results})
		return true, nil

	default:
		c.log.WithField("type", env.Type).Debug("ignoring unknown message")
		return false, nil
	}
}

// publish delivers an update, dropping the oldest pending one if the
// consumer lags; snapshots are full state, so skipped ones are harmless.
func (c *Client) publish(u Update) {
	for {
		select {
		case c.updates <- u:
			return
		default:
			select {
			case <-c.updates:
			default:
			}
		}
	}
}

func (c *Client) write(env protocol.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.WriteEnvelope(c.conn, env)
}
