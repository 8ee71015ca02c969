package deck

import rand "math/rand/v2"

// DrawOne removes and returns a uniformly random card from working,
// shrinking the slice in place. The second return is false when the
// working deck is empty.
func DrawOne(working *[]Card, rng *rand.Rand) (Card, bool) {
	n := len(*working)
	if n == 0 {
		return Card{}, false
	}
	idx := rng.IntN(n)
	card := (*working)[idx]
	// Swap the drawn card to the end and truncate, order is irrelevant
	// for a randomised deck.
	(*working)[idx] = (*working)[n-1]
	*working = (*working)[:n-1]
	return card, true
}

// DrawN draws up to n random cards from working, stopping early if the
// deck empties. Callers must check the returned length against n before
// trusting the draw.
func DrawN(working *[]Card, n int, rng *rand.Rand) []Card {
	if n <= 0 {
		return nil
	}
	drawn := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, ok := DrawOne(working, rng)
		if !ok {
			break
		}
		drawn = append(drawn, card)
	}
	return drawn
}

// Clone returns an independent copy of cards for per-trial mutation.
func Clone(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
