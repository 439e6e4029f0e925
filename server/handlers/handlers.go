package handlers

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"badam/protocol"
	"badam/room"
	"badam/server/connection"
)

// Router routes in-game messages from a connection to the room and writes
// the acknowledgement back on the same connection.
type Router struct {
	log logrus.FieldLogger

	mu sync.RWMutex
	rm *room.Room
}

// New creates a router. The room is attached later, once the roster fills.
func New(log logrus.FieldLogger) *Router {
	return &Router{log: log}
}

// SetRoom attaches the room the router validates moves against.
func (r *Router) SetRoom(rm *room.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rm = rm
}

// Room returns the attached room, or nil before the game starts.
func (r *Router) Room() *room.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rm
}

// Handle processes one inbound envelope from a playing client.
func (r *Router) Handle(c *connection.Client, env protocol.Envelope) error {
	switch env.Type {
	case protocol.Move:
		return r.handleMove(c, env)

	case protocol.NewGame, protocol.Leave:
		// Reserved kinds with no defined behavior: accepted and ignored.
		r.log.WithFields(logrus.Fields{
			"client": c.ID,
			"type":   env.Type,
		}).Debug("ignoring reserved message kind")
		return nil

	case protocol.SendNickname:
		// Login already completed; a stray nickname is harmless.
		return nil

	default:
		return fmt.Errorf("unknown message kind %q", env.Type)
	}
}

func (r *Router) handleMove(c *connection.Client, env protocol.Envelope) error {
	var move string
	if err := env.Decode(&move); err != nil {
		return fmt.Errorf("decode move: %w", err)
	}

	verdict := protocol.MoveInvalid
	if rm := r.Room(); rm != nil && rm.ApplyMove(c.PlayerIdx, move) {
		verdict = protocol.MoveValid
	}

	r.log.WithFields(logrus.Fields{
		"client":  c.ID,
		"player":  c.PlayerIdx,
		"move":    move,
		"verdict": verdict,
	}).Debug("move handled")

	reply, err := protocol.NewEnvelope(verdict, nil)
	if err != nil {
		return err
	}
	return c.WriteEnvelope(reply)
}
