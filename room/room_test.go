package room

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badam/cards"
)

// deckWithTail returns the canonical deck reordered so the named cards sit
// at the very end, where they become the leftover pool for uneven deals.
func deckWithTail(t *testing.T, tail ...string) []cards.Card {
	t.Helper()

	tailCards := make([]cards.Card, 0, len(tail))
	inTail := make(map[cards.Card]bool)
	for _, raw := range tail {
		c, err := cards.CardFromString(raw)
		require.NoError(t, err)
		tailCards = append(tailCards, c)
		inTail[c] = true
	}

	var deck []cards.Card
	for _, c := range cards.NewDeck() {
		if !inTail[c] {
			deck = append(deck, c)
		}
	}
	return append(deck, tailCards...)
}

// deckWithHead returns the canonical deck reordered so the named cards
// come first, in the given order, with the rest following canonically.
// Useful to pin exact hands: player 0 is dealt the head of the deck.
func deckWithHead(t *testing.T, head ...string) []cards.Card {
	t.Helper()

	headCards := make([]cards.Card, 0, len(head))
	inHead := make(map[cards.Card]bool)
	for _, raw := range head {
		c, err := cards.CardFromString(raw)
		require.NoError(t, err)
		headCards = append(headCards, c)
		inHead[c] = true
	}

	deck := headCards
	for _, c := range cards.NewDeck() {
		if !inHead[c] {
			deck = append(deck, c)
		}
	}
	return deck
}

// assertConservation checks the global card invariant: hands, leftover
// pool, and table partition the 52-card deck disjointly.
func assertConservation(t *testing.T, rm *Room) {
	t.Helper()

	seen := make(map[int]bool)
	record := func(idx int) {
		assert.False(t, seen[idx], "card index %d appears twice", idx)
		seen[idx] = true
	}

	for _, hand := range rm.hands {
		for _, c := range hand {
			record(c.Index())
		}
	}
	for i := 0; i < 52; i++ {
		if rm.leftover&(1<<uint(i)) != 0 {
			record(i)
		}
	}
	for si, run := range rm.table {
		if run.Empty() {
			continue
		}
		assert.LessOrEqual(t, run.Lo, cards.SevenIndex)
		assert.GreaterOrEqual(t, run.Hi, cards.SevenIndex)
		for j := run.Lo; j <= run.Hi; j++ {
			record(si*13 + j)
		}
	}

	assert.Len(t, seen, 52, "cards lost or duplicated")
}

// assertNoAdjacentLeftover checks the cascade property: no leftover card
// adjacent to a non-empty run may survive a completed move.
func assertNoAdjacentLeftover(t *testing.T, rm *Room) {
	t.Helper()

	for si, run := range rm.table {
		if run.Empty() {
			continue
		}
		if run.Lo > 0 {
			assert.False(t, rm.inLeftover(cardAt(si, run.Lo-1)),
				"leftover %s adjacent to run low bound", cardAt(si, run.Lo-1))
		}
		if run.Hi < 12 {
			assert.False(t, rm.inLeftover(cardAt(si, run.Hi+1)),
				"leftover %s adjacent to run high bound", cardAt(si, run.Hi+1))
		}
	}
}

func TestNewValidatesPlayerCount(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 53} {
		_, err := New(n, nil)
		assert.Error(t, err, "player count %d", n)
	}

	rm, err := New(4, rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	assert.Equal(t, 4, rm.NumPlayers())
}

func TestInitialDeal(t *testing.T) {
	// 3 players: 17 cards each, 1 leftover
	rm := newFromDeck(cards.ShuffleDeck(cards.NewDeck(), rand.New(rand.NewSource(7))), 3)

	for i := 0; i < 3; i++ {
		assert.Len(t, rm.hands[i], 17)
		assert.Equal(t, cards.SortCards(rm.hands[i]), rm.hands[i], "hand %d not sorted", i)
	}
	assertConservation(t, rm)
	assertNoAdjacentLeftover(t, rm)

	// Opening seat holds the seven of hearts, unless it was undealt
	if !rm.started {
		assert.True(t, containsCard(rm.hands[rm.turn], SevenOfHearts))
	}
}

func TestTwoPlayerOpening(t *testing.T) {
	// Canonical order: player 0 gets all hearts and spades, so the seven
	// of hearts and the opening turn belong to player 0.
	rm := newFromDeck(cards.NewDeck(), 2)

	require.Equal(t, 0, rm.Turn())
	assert.False(t, rm.Started())

	// Before any seven is played, the holder's only legal move is 7H and
	// everyone else has none.
	moves := rm.LegalMoves(0)
	require.Len(t, moves, 1)
	assert.Equal(t, "7H", moves[0].String())
	assert.Empty(t, rm.LegalMoves(1))

	// Playing 7H starts the game and opens the hearts run at the seven.
	assert.True(t, rm.ApplyMove(0, "7H"))
	assert.True(t, rm.Started())
	assert.Equal(t, Run{Lo: 6, Hi: 6}, rm.table[cards.Hearts.Index()])
	assert.Equal(t, 1, rm.Turn())
	assertConservation(t, rm)
}

func TestApplyMoveRejections(t *testing.T) {
	rm := newFromDeck(cards.NewDeck(), 2)

	// Not the caller's turn
	assert.False(t, rm.ApplyMove(1, "7H"))

	// PASS while a legal move exists
	assert.False(t, rm.ApplyMove(0, "PASS"))

	// A card the caller does not hold, even though someone else does
	assert.False(t, rm.ApplyMove(0, "7D"))

	// Garbage input
	assert.False(t, rm.ApplyMove(0, ""))
	assert.False(t, rm.ApplyMove(0, "banana"))

	// Out-of-range player ids
	assert.False(t, rm.ApplyMove(-1, "7H"))
	assert.False(t, rm.ApplyMove(2, "7H"))

	// Nothing above mutated anything
	assert.False(t, rm.Started())
	assert.Equal(t, 0, rm.Turn())
	assertConservation(t, rm)
}

func TestApplyMoveCaseInsensitive(t *testing.T) {
	rm := newFromDeck(cards.NewDeck(), 2)
	assert.True(t, rm.ApplyMove(0, " 7h "))
	assert.True(t, rm.Started())
}

func TestPassAdvancesTurnOnly(t *testing.T) {
	// Stack player 0 with every seven and both hearts neighbors, so after
	// the opening player 1 has no extension and no seven to open with.
	rm := newFromDeck(deckWithHead(t,
		"AH", "2H", "3H", "4H", "5H", "6H", "7H", "8H", "9H", "10H", "JH", "QH", "KH",
		"7S", "7D", "7C",
	), 2)
	require.Equal(t, 0, rm.Turn())
	require.True(t, rm.ApplyMove(0, "7H"))

	// Player 1 has no legal move, so PASS is the only accepted input.
	require.Empty(t, rm.LegalMoves(1))
	assert.False(t, rm.ApplyMove(1, "6H"))
	before := rm.SnapshotFor(1)

	assert.True(t, rm.ApplyMove(1, "pass"))
	assert.Equal(t, 0, rm.Turn())

	after := rm.SnapshotFor(1)
	assert.Equal(t, before.Table, after.Table)
	assert.Equal(t, before.NumCards, after.NumCards)
}

func TestCascadeAbsorbsLeftovers(t *testing.T) {
	// 5 players: 10 cards each, leftover = {6H, 8H}.
	rm := newFromDeck(deckWithTail(t, "6H", "8H"), 5)

	require.True(t, rm.inLeftover(cards.Card{Suit: cards.Hearts, Rank: cards.Six}))
	require.True(t, rm.inLeftover(cards.Card{Suit: cards.Hearts, Rank: cards.Eight}))

	// Playing 7H makes both leftovers contiguous; the cascade absorbs them.
	holder := rm.Turn()
	require.True(t, rm.ApplyMove(holder, "7H"))

	assert.Equal(t, Run{Lo: 5, Hi: 7}, rm.table[cards.Hearts.Index()])
	assert.Equal(t, uint64(0), rm.leftover)
	assertConservation(t, rm)
	assertNoAdjacentLeftover(t, rm)
}

func TestLeftoverSevensAutoPlace(t *testing.T) {
	// 5 players: leftover = {7S, 6S}. The undealt seven of spades must be
	// on the table before any move, with the adjacent six absorbed.
	rm := newFromDeck(deckWithTail(t, "7S", "6S"), 5)

	assert.Equal(t, Run{Lo: 5, Hi: 6}, rm.table[cards.Spades.Index()])
	assert.Equal(t, uint64(0), rm.leftover)
	assert.False(t, rm.Started(), "auto-placing a non-hearts seven must not start the game")
	assertConservation(t, rm)

	// The hearts run is still empty, so 7H remains the only legal opening.
	for i := 0; i < 5; i++ {
		for _, c := range rm.LegalMoves(i) {
			assert.Equal(t, "7H", c.String())
		}
	}
}

func TestLeftoverSevenOfHeartsStartsGame(t *testing.T) {
	// If the seven of hearts itself is undealt, nobody could ever play it;
	// auto-placement counts as the game start.
	rm := newFromDeck(deckWithTail(t, "7H", "2C"), 5)

	assert.True(t, rm.Started())
	assert.Equal(t, Run{Lo: 6, Hi: 6}, rm.table[cards.Hearts.Index()])
	// With no hand holding the opener, seat 0 keeps the turn
	assert.Equal(t, 0, rm.Turn())

	// Extension moves are immediately available.
	found := false
	for i := 0; i < 5; i++ {
		if len(rm.LegalMoves(i)) > 0 {
			found = true
		}
	}
	assert.True(t, found, "someone must hold a playable card")
}

func TestSnapshotFor(t *testing.T) {
	rm := newFromDeck(cards.NewDeck(), 2)
	require.True(t, rm.ApplyMove(0, "7H"))

	snap := rm.SnapshotFor(0)
	assert.Equal(t, 1, snap.Turn)
	assert.False(t, snap.MyTurn)
	assert.Equal(t, []int{25, 26}, snap.NumCards)
	assert.Len(t, snap.MyCards, 25)
	assert.NotContains(t, snap.MyCards, "7H")
	assert.Empty(t, snap.LeftoverCards)

	other := rm.SnapshotFor(1)
	assert.True(t, other.MyTurn)
	assert.Len(t, other.MyCards, 26)
	assert.Equal(t, snap.Table, other.Table)
}

func TestResultsOnlyWhenFinished(t *testing.T) {
	rm := newFromDeck(cards.NewDeck(), 2)
	_, err := rm.Results()
	assert.Error(t, err)
}

func TestFullRandomPlayout(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42} {
		for _, numPlayers := range []int{2, 3, 5} {
			rng := rand.New(rand.NewSource(seed))
			rm, err := New(numPlayers, rng)
			require.NoError(t, err)

			moveCount := 0
			for !rm.Finished() {
				require.Less(t, moveCount, 10_000, "game did not terminate")
				turn := rm.Turn()

				// Rotation must always land on an active player
				require.True(t, rm.active[turn])

				moves := rm.LegalMoves(turn)
				if len(moves) == 0 {
					require.True(t, rm.ApplyMove(turn, Pass))
				} else {
					pick := moves[rng.Intn(len(moves))]
					require.True(t, rm.ApplyMove(turn, pick.String()))
				}

				assertConservation(t, rm)
				assertNoAdjacentLeftover(t, rm)
				moveCount++
			}

			// Finish order contains every player exactly once
			results, err := rm.Results()
			require.NoError(t, err)
			assert.Len(t, results, numPlayers)
			seen := make(map[int]bool)
			for _, p := range results {
				assert.False(t, seen[p])
				seen[p] = true
				assert.GreaterOrEqual(t, p, 0)
				assert.Less(t, p, numPlayers)
			}

			// The room is read-only once finished
			assert.False(t, rm.ApplyMove(rm.turn, Pass))
		}
	}
}
