package server

import (
	"time"

	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"

	"badam/protocol"
	"badam/room"
	"badam/server/connection"
)

// tickLoop pushes a per-recipient snapshot to every playing client on a
// fixed period. Once the room reports completion it pushes the final
// results exactly once and stops. A failed delivery to one client never
// stops delivery to the others; the next tick's full snapshot corrects
// any missed one.
func (s *Server) tickLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			rm := s.router.Room()
			if rm == nil {
				continue // idle: no room yet
			}

			s.broadcastState(rm)
			if rm.Finished() {
				s.broadcastResults(rm)
				s.doneOnce.Do(func() { close(s.doneCh) })
				return
			}
		}
	}
}

func (s *Server) broadcastState(rm *room.Room) {
	for _, c := range s.mgr.Clients() {
		if c.State() != connection.StatePlaying || c.PlayerIdx < 0 {
			continue
		}
		s.send(c, protocol.GameState, rm.SnapshotFor(c.PlayerIdx))
	}
}

func (s *Server) broadcastResults(rm *room.Room) {
	results, err := rm.Results()
	if err != nil {
		s.log.WithError(err).Error("results unavailable after finish")
		return
	}

	s.log.WithField("rank", results).Info("game finished")
	if logger, ok := s.log.(*logrus.Logger); ok && logger.IsLevelEnabled(logrus.DebugLevel) {
		logger.Debug(litter.Sdump(rm.SnapshotFor(-1)))
	}

	for _, c := range s.mgr.Clients() {
		if c.State() != connection.StatePlaying {
			continue
		}
		s.send(c, protocol.Results, results)
	}
}
