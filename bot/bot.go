// Package bot implements an automated player: given the candidate-move
// set derived from a snapshot it eventually returns one member, or PASS
// when the set is empty.
package bot

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"badam/client"
	"badam/protocol"
	"badam/room"
)

// Bot picks uniformly among its legal cards, with a small think delay so
// games against humans do not resolve instantly.
type Bot struct {
	Name  string
	Delay time.Duration
	rng   *rand.Rand
}

// New creates a bot. A nil rand source falls back to a clock-seeded one.
func New(name string, delay time.Duration, rng *rand.Rand) *Bot {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Bot{Name: name, Delay: delay, rng: rng}
}

// Choose returns the move for the given snapshot: a uniformly random
// member of the candidate set, or PASS when no card is playable.
func (b *Bot) Choose(snap room.Snapshot) (string, error) {
	candidates, err := snap.Candidates()
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return room.Pass, nil
	}
	return candidates[b.rng.Intn(len(candidates))].String(), nil
}

// Play connects to addr and plays a full game. It returns the finish
// order once the server reports results.
func (b *Bot) Play(ctx context.Context, addr string, log logrus.FieldLogger) ([]int, error) {
	c, err := client.Dial(addr, b.Name, log)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(ctx) }()

	var results []int
	answered := false
	for update := range c.Updates() {
		switch update.Kind {
		case protocol.GameState:
			snap := update.Snapshot
			if !snap.MyTurn {
				answered = false
				continue
			}
			if answered {
				continue // move already submitted for this turn
			}

			move, err := b.Choose(*snap)
			if err != nil {
				return nil, err
			}
			if b.Delay > 0 {
				select {
				case <-time.After(b.Delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			if err := c.SendMove(move); err != nil {
				return nil, err
			}
			answered = true

		case protocol.MoveValid, protocol.MoveInvalid:
			// Either way the next snapshot needs a fresh answer: once the
			// field narrows to one active player the turn never leaves
			// them, so MyTurn alone cannot signal a new turn. A stale
			// snapshot answered twice is simply rejected as invalid.
			answered = false

		case protocol.Results:
			results = update.Results
		}
	}

	if err := <-runErr; err != nil {
		return nil, err
	}
	return results, nil
}
