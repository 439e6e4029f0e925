package room

import (
	"badam/cards"
)

// Pass is the literal a player submits when they have no playable card.
const Pass = "PASS"

// SevenOfHearts opens the game.
var SevenOfHearts = cards.Card{Suit: cards.Hearts, Rank: cards.Seven}

// Run is the contiguous interval of revealed rank indices for one suit.
// A negative Lo marks the run as empty (no ranks revealed yet). Once
// non-empty, a run only ever grows outward and always contains the seven.
type Run struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Empty reports whether no rank of the suit has been revealed yet.
func (r Run) Empty() bool {
	return r.Lo < 0
}

// Len returns the number of revealed ranks in the run.
func (r Run) Len() int {
	if r.Empty() {
		return 0
	}
	return r.Hi - r.Lo + 1
}

// Table holds one run per suit, indexed by canonical suit order.
type Table [4]Run

// NewTable creates a table with all four runs empty.
func NewTable() Table {
	var t Table
	for i := range t {
		t[i] = Run{Lo: -1, Hi: -1}
	}
	return t
}

// cardAt returns the card for a (suit index, rank index) pair.
func cardAt(suit, rank int) cards.Card {
	return cards.Card{Suit: cards.Suits[suit], Rank: cards.Ranks[rank]}
}

// CandidateMoves returns the cards from hand that could legally be played
// onto the table. Before the Hearts run opens, the seven of hearts is the
// only playable card. Afterwards each non-empty run accepts the ranks just
// outside its bounds, and each still-empty suit accepts its own seven.
// An empty result means the player's only legal input is PASS.
//
// The same rule drives both the authoritative room and clients deriving
// their options from a snapshot.
func CandidateMoves(t Table, hand []cards.Card) []cards.Card {
	var playable []cards.Card

	if t[cards.Hearts.Index()].Empty() {
		playable = append(playable, SevenOfHearts)
	} else {
		for si, run := range t {
			if run.Empty() {
				playable = append(playable, cardAt(si, cards.SevenIndex))
				continue
			}
			if run.Lo > 0 {
				playable = append(playable, cardAt(si, run.Lo-1))
			}
			if run.Hi < len(cards.Ranks)-1 {
				playable = append(playable, cardAt(si, run.Hi+1))
			}
		}
	}

	var legal []cards.Card
	for _, c := range playable {
		if containsCard(hand, c) {
			legal = append(legal, c)
		}
	}
	return legal
}

func containsCard(hand []cards.Card, c cards.Card) bool {
	for _, h := range hand {
		if h.Equals(c) {
			return true
		}
	}
	return false
}
