// Package evaluator defines the hand-ranking capability the hold'em
// equity engine depends on. The engine treats rankings as a black box:
// any implementation that can score a 5-7 card hand and pick the tied
// winners among several scored hands is substitutable.
package evaluator

import (
	"fmt"

	"github.com/paulhankin/poker"

	"github.com/cardsim/probability/internal/deck"
)

// RankedHand is an opaque rankable hand produced by a Ranker. Only the
// Ranker that created it knows how to compare it.
type RankedHand interface{}

// Ranker scores hands and identifies the subset tied for best.
type Ranker interface {
	// Solve builds a rankable hand from 5-7 cards.
	Solve(cards []deck.Card) (RankedHand, error)
	// Winners returns the indices of the hands tied for best.
	Winners(hands []RankedHand) []int
}

// LibraryRanker ranks hands with the paulhankin/poker evaluator.
type LibraryRanker struct{}

// NewLibraryRanker returns the default Ranker implementation.
func NewLibraryRanker() *LibraryRanker {
	return &LibraryRanker{}
}

type libraryHand struct {
	score int16
}

// toLib converts a domain card to the library's representation.
// Library ranks run 1..13 with Ace=1.
func toLib(c deck.Card) (poker.Card, error) {
	var s poker.Suit
	switch c.Suit {
	case deck.Clubs:
		s = poker.Club
	case deck.Diamonds:
		s = poker.Diamond
	case deck.Hearts:
		s = poker.Heart
	case deck.Spades:
		s = poker.Spade
	default:
		return 0, fmt.Errorf("unknown suit %d", c.Suit)
	}

	r := poker.Rank(c.Rank)
	if c.Rank == deck.Ace {
		r = poker.Rank(1)
	}
	return poker.MakeCard(s, r)
}

// Solve scores 5-7 cards. Higher library scores are stronger hands.
func (r *LibraryRanker) Solve(cards []deck.Card) (RankedHand, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return nil, fmt.Errorf("cannot rank %d cards: need 5-7", len(cards))
	}

	libCards := make([]poker.Card, len(cards))
	for i, c := range cards {
		lc, err := toLib(c)
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", c, err)
		}
		libCards[i] = lc
	}

	switch len(libCards) {
	case 7:
		var a7 [7]poker.Card
		copy(a7[:], libCards)
		return libraryHand{score: poker.Eval7(&a7)}, nil
	case 5:
		var a5 [5]poker.Card
		copy(a5[:], libCards)
		return libraryHand{score: poker.Eval5(&a5)}, nil
	default:
		return libraryHand{score: bestFiveOfSix(libCards)}, nil
	}
}

// bestFiveOfSix scores a 6-card hand by evaluating every 5-card subset.
func bestFiveOfSix(cards []poker.Card) int16 {
	var best int16
	var five [5]poker.Card
	for skip := 0; skip < len(cards); skip++ {
		i := 0
		for j, c := range cards {
			if j == skip {
				continue
			}
			five[i] = c
			i++
		}
		if score := poker.Eval5(&five); skip == 0 || score > best {
			best = score
		}
	}
	return best
}

// Winners returns the indices of the hands tied for the best score.
// Hands not produced by this ranker are ignored.
func (r *LibraryRanker) Winners(hands []RankedHand) []int {
	var winners []int
	var best int16
	for i, h := range hands {
		lh, ok := h.(libraryHand)
		if !ok {
			continue
		}
		switch {
		case len(winners) == 0 || lh.score > best:
			winners = winners[:0]
			winners = append(winners, i)
			best = lh.score
		case lh.score == best:
			winners = append(winners, i)
		}
	}
	return winners
}
