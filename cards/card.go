package cards

import (
	"fmt"
	"strings"
)

// Suit represents a card suit. The declaration order (Hearts, Spades,
// Diamonds, Clubs) is the canonical order used for sorting and indexing.
type Suit string

const (
	Hearts   Suit = "H"
	Spades   Suit = "S"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

// Suits lists all suits in canonical order.
var Suits = []Suit{Hearts, Spades, Diamonds, Clubs}

// Index returns the position of the suit in canonical order, or -1.
func (s Suit) Index() int {
	for i, suit := range Suits {
		if s == suit {
			return i
		}
	}
	return -1
}

// Rank represents a card rank
type Rank string

const (
	Ace   Rank = "A"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
)

// Ranks lists all ranks in ascending order, Ace low.
var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// SevenIndex is the position of the Seven within Ranks.
const SevenIndex = 6

// Index returns the position of the rank within Ranks, or -1.
func (r Rank) Index() int {
	for i, rank := range Ranks {
		if r == rank {
			return i
		}
	}
	return -1
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// String returns the shorthand representation of a card, e.g. "7H" or "10C".
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Index returns the dense position of the card in 0..51 (suit-major).
func (c Card) Index() int {
	return c.Suit.Index()*len(Ranks) + c.Rank.Index()
}

// Equals checks if two cards are equal
func (c Card) Equals(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}

// FromIndex returns the card at the given dense index in 0..51.
func FromIndex(i int) (Card, error) {
	if i < 0 || i >= len(Suits)*len(Ranks) {
		return Card{}, fmt.Errorf("card index out of range: %d", i)
	}
	return Card{Suit: Suits[i/len(Ranks)], Rank: Ranks[i%len(Ranks)]}, nil
}

// CardFromString creates a card from its shorthand representation.
// e.g. "7H" or "7h" -> Card{Suit: Hearts, Rank: Seven}
func CardFromString(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card shorthand: %q", s)
	}

	var suit Suit
	switch s[len(s)-1:] {
	case "H":
		suit = Hearts
	case "S":
		suit = Spades
	case "D":
		suit = Diamonds
	case "C":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid card suit: %q", s[len(s)-1:])
	}

	var rank Rank
	switch s[:len(s)-1] {
	case "A":
		rank = Ace
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "10":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	default:
		return Card{}, fmt.Errorf("invalid card rank: %q", s[:len(s)-1])
	}

	return Card{Suit: suit, Rank: rank}, nil
}
