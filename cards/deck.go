package cards

import (
	"math/rand"
	"sort"
	"time"
)

// NewDeck creates a standard deck of 52 cards in canonical order
func NewDeck() []Card {
	var deck []Card
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// ShuffleDeck returns a uniformly shuffled copy of the deck. A nil rand
// source falls back to one seeded from the wall clock.
func ShuffleDeck(deck []Card, r *rand.Rand) []Card {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	shuffled := make([]Card, len(deck))
	copy(shuffled, deck)

	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}

// SortCards returns a copy of the cards sorted by (suit, rank) for
// deterministic display.
func SortCards(cs []Card) []Card {
	sorted := make([]Card, len(cs))
	copy(sorted, cs)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index() < sorted[j].Index()
	})

	return sorted
}
