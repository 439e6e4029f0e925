package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"badam/protocol"
	"badam/room"
	"badam/server/connection"
	"badam/server/handlers"
)

// Server accepts connections, runs the login handshake, holds clients in
// the wait lobby until the roster fills, then creates the room and keeps
// broadcasting snapshots until the game finishes.
//
// Concurrency model: one worker goroutine per connection (login, then the
// inbound read loop) plus one broadcast ticker. The room is the single
// shared mutable object and serializes its own operations.
type Server struct {
	cfg    Config
	log    logrus.FieldLogger
	mgr    *connection.Manager
	router *handlers.Router

	ln   net.Listener
	wsLn net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	startCh   chan struct{} // closed when the roster fills and the room exists
	doneOnce  sync.Once
	doneCh    chan struct{} // closed once final results have been broadcast
}

// New creates a server from the given configuration.
func New(cfg Config, log logrus.FieldLogger) *Server {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		cfg:     cfg,
		log:     log,
		mgr:     connection.NewManager(cfg.Players),
		router:  handlers.New(log),
		ctx:     ctx,
		cancel:  cancel,
		startCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start binds the listeners and launches the accept and broadcast loops.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.WithField("addr", ln.Addr().String()).Info("server listening")

	if s.cfg.WSAddr != "" {
		if err := s.startWS(); err != nil {
			ln.Close()
			return err
		}
	}

	s.wg.Add(2)
	go s.acceptLoop()
	go s.tickLoop()
	return nil
}

// Addr returns the bound TCP address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Done is closed once the final results have been pushed to every client.
func (s *Server) Done() <-chan struct{} {
	return s.doneCh
}

// Stop signals every worker to shut down and waits for all of them to
// drain before returning.
func (s *Server) Stop() {
	s.cancel()
	if s.ln != nil {
		s.ln.Close()
	}
	if s.wsLn != nil {
		s.wsLn.Close()
	}
	s.mgr.CloseAll()
	s.wg.Wait()
	s.log.Info("server stopped")
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		if tcpLn, ok := s.ln.(*net.TCPListener); ok {
			tcpLn.SetDeadline(time.Now().Add(time.Second))
		}

		conn, err := s.ln.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			s.log.WithError(err).Warn("accept failed")
			return
		}

		s.wg.Add(1)
		go s.serveTransport(connection.NewTCPTransport(conn))
	}
}

// serveTransport runs the full lifecycle of one connection: roster
// admission, login, wait lobby, then the in-game read loop.
func (s *Server) serveTransport(t connection.Transport) {
	defer s.wg.Done()

	client := connection.NewClient(t)
	log := s.log.WithFields(logrus.Fields{
		"client": client.ID,
		"remote": t.RemoteAddr().String(),
	})

	if err := s.mgr.Add(client); err != nil {
		log.WithError(err).Warn("connection rejected")
		t.Close()
		return
	}
	log.Info("client connected")

	defer func() {
		s.mgr.Remove(client)
		t.Close()
		log.Info("client disconnected")
	}()

	ready, ok := s.login(client)
	if !ok {
		return
	}
	log.WithField("nickname", client.Nickname).Info("client logged in")

	if ready {
		s.startGame()
	} else if !s.send(client, protocol.Wait, nil) {
		return
	}

	select {
	case <-s.startCh:
	case <-s.ctx.Done():
		return
	}

	client.SetState(connection.StatePlaying)
	s.readLoop(client, log)
}

// login repeats the nickname prompt until the client supplies a non-empty
// name, then reports whether the roster is now complete.
func (s *Server) login(c *connection.Client) (ready, ok bool) {
	c.SetState(connection.StateLoggingIn)

	for {
		if !s.send(c, protocol.RequestNickname, nil) {
			return false, false
		}

		env, err := s.readEnvelope(c)
		if err != nil {
			return false, false
		}
		if env.Type != protocol.SendNickname {
			continue
		}

		var name string
		if err := env.Decode(&name); err != nil {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue // re-prompt
		}

		c.SetState(connection.StateWaiting)
		return s.mgr.SetNickname(c, name), true
	}
}

// readLoop forwards inbound envelopes to the router until the connection
// drops or the server shuts down.
func (s *Server) readLoop(c *connection.Client, log logrus.FieldLogger) {
	for {
		env, err := s.readEnvelope(c)
		if err != nil {
			if s.ctx.Err() == nil && !errors.Is(err, io.EOF) {
				log.WithError(err).Debug("client read failed")
			}
			return
		}

		if err := s.router.Handle(c, env); err != nil {
			log.WithError(err).Debug("message rejected")
		}
	}
}

// readEnvelope blocks for the next inbound envelope, waking up at the
// configured read timeout to observe shutdown.
func (s *Server) readEnvelope(c *connection.Client) (protocol.Envelope, error) {
	for {
		if err := s.ctx.Err(); err != nil {
			return protocol.Envelope{}, err
		}

		c.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		env, err := c.ReadEnvelope()
		if err == nil {
			return env, nil
		}

		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			continue
		}
		return env, err
	}
}

// startGame freezes the roster, creates the room, and releases every
// waiting connection with the START roster broadcast. Runs exactly once.
func (s *Server) startGame() {
	s.startOnce.Do(func() {
		names := s.mgr.Start()

		rm, err := room.New(len(names), nil)
		if err != nil {
			s.log.WithError(err).Error("room creation failed")
			s.cancel()
			return
		}
		s.router.SetRoom(rm)
		s.log.WithField("players", names).Info("room created, game starting")

		for _, c := range s.mgr.Clients() {
			s.send(c, protocol.Start, names)
		}
		close(s.startCh)
	})
}

// send wraps and writes one envelope, reporting success. Write failures
// are logged and left to the connection's own worker to clean up.
func (s *Server) send(c *connection.Client, kind string, payload any) bool {
	env, err := protocol.NewEnvelope(kind, payload)
	if err != nil {
		s.log.WithError(err).WithField("type", kind).Error("encode failed")
		return false
	}
	if err := c.WriteEnvelope(env); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"client": c.ID,
			"type":   kind,
		}).Debug("send failed")
		return false
	}
	return true
}
