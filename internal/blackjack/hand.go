package blackjack

import "github.com/cardsim/probability/internal/deck"

// HandValue is the derived score of a blackjack hand.
type HandValue struct {
	Value     int
	Soft      bool // an ace is still counted as 11
	Busted    bool
	Blackjack bool // two-card natural
}

// Evaluate scores a blackjack hand. Aces count as 11 until the total
// exceeds 21, then demote one at a time to 1. Blackjack is declared only
// for a two-card ace + ten-value 21; a 3+ card 21 is never a natural.
func Evaluate(cards []deck.Card) HandValue {
	total := 0
	softAces := 0
	for _, c := range cards {
		total += c.Rank.BlackjackValue()
		if c.IsAce() {
			softAces++
		}
	}
	for total > 21 && softAces > 0 {
		total -= 10
		softAces--
	}

	hv := HandValue{
		Value:  total,
		Soft:   softAces > 0,
		Busted: total > 21,
	}
	if len(cards) == 2 && total == 21 {
		hv.Blackjack = (cards[0].IsAce() && cards[1].Rank.BlackjackValue() == 10) ||
			(cards[1].IsAce() && cards[0].Rank.BlackjackValue() == 10)
	}
	return hv
}
