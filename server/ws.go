package server

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"badam/server/connection"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local parlor game, no origin policy
	},
}

// startWS opens the WebSocket gateway. Upgraded connections enter the
// exact same lifecycle as raw TCP ones.
func (s *Server) startWS() error {
	ln, err := net.Listen("tcp", s.cfg.WSAddr)
	if err != nil {
		return err
	}
	s.wsLn = ln
	s.log.WithField("addr", ln.Addr().String()).Info("websocket gateway listening")

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	srv := &http.Server{Handler: mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		srv.Serve(ln)
	}()
	return nil
}

// WSAddr returns the bound gateway address, or nil when disabled.
func (s *Server) WSAddr() net.Addr {
	if s.wsLn == nil {
		return nil
	}
	return s.wsLn.Addr()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	s.wg.Add(1)
	go s.serveTransport(connection.NewWSTransport(conn))
}
