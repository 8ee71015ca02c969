package deck

// CardSet represents a set of cards using a bitset for fast membership checks.
// Each card maps to a bit: index = (rank-2)*4 + suit
type CardSet uint64

func cardIndex(card Card) int {
	return int(card.Rank-Two)*4 + int(card.Suit)
}

// Add adds a card to the set
func (cs *CardSet) Add(card Card) {
	*cs |= 1 << cardIndex(card)
}

// Contains checks if a card is in the set
func (cs CardSet) Contains(card Card) bool {
	return cs&(1<<cardIndex(card)) != 0
}

// NewCardSet creates a CardSet from one or more card slices
func NewCardSet(groups ...[]Card) CardSet {
	var cs CardSet
	for _, cards := range groups {
		for _, card := range cards {
			cs.Add(card)
		}
	}
	return cs
}

// Standard builds a full deck from the given ranks and suits in a fixed
// order. Pass nil for either to use the standard 13 ranks / 4 suits.
func Standard(ranks []Rank, suits []Suit) []Card {
	if len(ranks) == 0 {
		ranks = Ranks
	}
	if len(suits) == 0 {
		suits = Suits
	}
	cards := make([]Card, 0, len(ranks)*len(suits))
	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// Without returns the cards from full that are not in the excluded set.
func Without(full []Card, excluded CardSet) []Card {
	out := make([]Card, 0, len(full))
	for _, card := range full {
		if !excluded.Contains(card) {
			out = append(out, card)
		}
	}
	return out
}
