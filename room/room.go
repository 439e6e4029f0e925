package room

import (
	"errors"
	"math/rand"
	"strings"
	"sync"

	"badam/cards"
)

// Room is the authoritative state of one game. All exported operations
// serialize behind a single mutex, so snapshots never observe a partially
// applied move and two concurrent moves can never interleave.
type Room struct {
	mu sync.Mutex

	numPlayers int
	hands      [][]cards.Card
	leftover   uint64 // bit i set = card with dense index i is undealt
	table      Table

	turn        int
	started     bool
	finished    bool
	active      []bool
	activeCount int
	rank        []int
}

// New creates a room for the given player count, shuffles and deals the
// full deck, and resolves the opening state (who holds the seven of
// hearts, which undealt sevens auto-reveal). A nil rand source falls back
// to a clock-seeded one.
func New(numPlayers int, r *rand.Rand) (*Room, error) {
	if numPlayers < 2 || numPlayers > 52 {
		return nil, errors.New("room: player count must be between 2 and 52")
	}
	deck := cards.ShuffleDeck(cards.NewDeck(), r)
	return newFromDeck(deck, numPlayers), nil
}

// newFromDeck deals an already-ordered deck; split out so tests can force
// specific layouts.
func newFromDeck(deck []cards.Card, numPlayers int) *Room {
	rm := &Room{
		numPlayers:  numPlayers,
		table:       NewTable(),
		active:      make([]bool, numPlayers),
		activeCount: numPlayers,
	}

	perPlayer := len(deck) / numPlayers
	rm.hands = make([][]cards.Card, numPlayers)
	for i := 0; i < numPlayers; i++ {
		rm.hands[i] = cards.SortCards(deck[i*perPlayer : (i+1)*perPlayer])
		rm.active[i] = true
	}
	for _, c := range deck[numPlayers*perPlayer:] {
		rm.leftover |= 1 << uint(c.Index())
	}

	// The holder of the seven of hearts opens. When that card sits in the
	// leftover pool instead, no hand matches and seat 0 keeps the turn.
	for i, hand := range rm.hands {
		if containsCard(hand, SevenOfHearts) {
			rm.turn = i
		}
	}

	// An undealt seven cannot block play: reveal it immediately. If the
	// seven of hearts itself was undealt, the game counts as started, since
	// no player could ever play it.
	for si := range cards.Suits {
		seven := cardAt(si, cards.SevenIndex)
		if rm.inLeftover(seven) {
			rm.takeLeftover(seven)
			rm.placeCard(seven)
			if seven.Equals(SevenOfHearts) {
				rm.started = true
			}
		}
	}

	return rm
}

// NumPlayers returns the fixed player count of the room.
func (r *Room) NumPlayers() int {
	return r.numPlayers
}

// Turn returns the index of the player currently allowed to move.
func (r *Room) Turn() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn
}

// Started reports whether the seven of hearts has reached the table.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Finished reports whether every player has emptied their hand.
func (r *Room) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// LegalMoves returns the cards the player could legally play right now.
// An empty result means the player's only legal input is PASS. Whose turn
// it is is not considered here; ApplyMove checks that separately.
func (r *Room) LegalMoves(playerID int) []cards.Card {
	r.mu.Lock()
	defer r.mu.Unlock()

	if playerID < 0 || playerID >= r.numPlayers {
		return nil
	}
	return CandidateMoves(r.table, r.hands[playerID])
}

// ApplyMove validates and applies a move in one atomic step. It returns
// false without mutating anything unless it is the player's turn and the
// move is either a currently legal card (matched case-insensitively) or
// PASS while no legal card exists. A card play removes the card from the
// hand, grows the suit's run, and absorbs every leftover card that the
// growth makes contiguous, in both directions, until blocked.
func (r *Room) ApplyMove(playerID int, move string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished || playerID != r.turn {
		return false
	}

	move = strings.ToUpper(strings.TrimSpace(move))
	legal := CandidateMoves(r.table, r.hands[playerID])

	if len(legal) == 0 {
		if move != Pass {
			return false
		}
	} else {
		var card cards.Card
		found := false
		for _, c := range legal {
			if c.String() == move {
				card = c
				found = true
				break
			}
		}
		if !found {
			return false
		}

		r.removeFromHand(playerID, card)
		if card.Equals(SevenOfHearts) {
			r.started = true
		}
		r.placeCard(card)
	}

	r.advance()
	return true
}

// Results returns the finish order. Valid only once the game is finished.
func (r *Room) Results() ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.finished {
		return nil, errors.New("room: game not finished")
	}
	out := make([]int, len(r.rank))
	copy(out, r.rank)
	return out, nil
}

// SnapshotFor produces the per-recipient view of the room: public table
// state and card counts, plus this recipient's own hand. Other players'
// hands are never exposed; the leftover pool is public by design.
func (r *Room) SnapshotFor(playerID int) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	numCards := make([]int, r.numPlayers)
	for i, hand := range r.hands {
		numCards[i] = len(hand)
	}

	var myCards []string
	if playerID >= 0 && playerID < r.numPlayers {
		for _, c := range r.hands[playerID] {
			myCards = append(myCards, c.String())
		}
	}

	var leftoverCards []string
	for i := 0; i < 52; i++ {
		if r.leftover&(1<<uint(i)) != 0 {
			c, _ := cards.FromIndex(i)
			leftoverCards = append(leftoverCards, c.String())
		}
	}

	return Snapshot{
		Turn:          r.turn,
		MyTurn:        playerID == r.turn,
		Table:         r.table,
		NumCards:      numCards,
		MyCards:       myCards,
		LeftoverCards: leftoverCards,
	}
}

func (r *Room) inLeftover(c cards.Card) bool {
	return r.leftover&(1<<uint(c.Index())) != 0
}

func (r *Room) takeLeftover(c cards.Card) {
	r.leftover &^= 1 << uint(c.Index())
}

func (r *Room) removeFromHand(playerID int, c cards.Card) {
	hand := r.hands[playerID]
	for i, h := range hand {
		if h.Equals(c) {
			r.hands[playerID] = append(hand[:i], hand[i+1:]...)
			return
		}
	}
}

// placeCard extends the suit's run to include the card, then absorbs
// leftover cards adjacent to the new bounds until both directions are
// blocked or the rank boundary is hit.
func (r *Room) placeCard(c cards.Card) {
	si := c.Suit.Index()
	n := c.Rank.Index()

	run := r.table[si]
	switch {
	case run.Empty():
		run = Run{Lo: n, Hi: n}
	case n == run.Lo-1:
		run.Lo = n
	case n == run.Hi+1:
		run.Hi = n
	}

	for run.Lo > 0 && r.inLeftover(cardAt(si, run.Lo-1)) {
		r.takeLeftover(cardAt(si, run.Lo-1))
		run.Lo--
	}
	for run.Hi < len(cards.Ranks)-1 && r.inLeftover(cardAt(si, run.Hi+1)) {
		r.takeLeftover(cardAt(si, run.Hi+1))
		run.Hi++
	}

	r.table[si] = run
}

// advance retires the acting player if their hand emptied, then rotates
// the turn to the next active player. Rotation is only consulted while
// activeCount > 0, so it always terminates on an active player.
func (r *Room) advance() {
	if r.active[r.turn] && len(r.hands[r.turn]) == 0 {
		r.rank = append(r.rank, r.turn)
		r.active[r.turn] = false
		r.activeCount--
	}

	if r.activeCount == 0 {
		r.finished = true
		return
	}

	r.turn = (r.turn + 1) % r.numPlayers
	for !r.active[r.turn] {
		r.turn = (r.turn + 1) % r.numPlayers
	}
}
