package room

import "badam/cards"

// Snapshot is the per-recipient serialization of room state pushed to a
// client on every broadcast tick. Field names match the wire format.
type Snapshot struct {
	Turn          int      `json:"turn"`
	MyTurn        bool     `json:"my_turn"`
	Table         Table    `json:"table"`
	NumCards      []int    `json:"num_cards"`
	MyCards       []string `json:"my_cards"`
	LeftoverCards []string `json:"leftover_cards"`
}

// Hand parses the recipient's own cards back into card values.
func (s Snapshot) Hand() ([]cards.Card, error) {
	var hand []cards.Card
	for _, raw := range s.MyCards {
		c, err := cards.CardFromString(raw)
		if err != nil {
			return nil, err
		}
		hand = append(hand, c)
	}
	return hand, nil
}

// Candidates returns the cards from the recipient's hand that the table
// currently accepts; empty means PASS is the only legal input.
func (s Snapshot) Candidates() ([]cards.Card, error) {
	hand, err := s.Hand()
	if err != nil {
		return nil, err
	}
	return CandidateMoves(s.Table, hand), nil
}
