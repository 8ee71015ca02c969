package blackjack

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardsim/probability/internal/deck"
)

func testEngine(cfg Config) *Engine {
	return New(cfg, log.New(io.Discard))
}

func seedPtr(v int64) *int64 { return &v }

func TestCalculateEmptyDeck(t *testing.T) {
	e := testEngine(DefaultConfig())
	state := &State{
		Players: []Player{{ID: "p1", Hands: []Hand{{Cards: deck.MustParseCards("Ts6s"), Bet: 10}}}},
	}

	result, err := e.Calculate(context.Background(), state, Options{})
	require.NoError(t, err)
	assert.Equal(t, "emptyDeck", result.Note)
	assert.Empty(t, result.Players)
	assert.Zero(t, result.Samples)
}

func TestNaturalBeatsDealerDrawn21(t *testing.T) {
	e := testEngine(DefaultConfig())
	state := &State{
		Deck: Deck{Remaining: deck.MustParseCards("2c2d2h2s")},
		// Dealer already holds a three-card 21: stands, but no natural.
		Dealer: Dealer{Cards: deck.MustParseCards("7h7s7d")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("AsKs"), Bet: 10}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(1)})
	require.NoError(t, err)

	pr := result.Players["p1"]
	assert.Equal(t, 1.0, pr.Win, "natural must beat a drawn 21, not push")
	assert.Zero(t, pr.Push)
	assert.Zero(t, pr.Lose)
}

func TestDealerNaturalBeatsDrawn21(t *testing.T) {
	e := testEngine(DefaultConfig())
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d2h2s")},
		Dealer: Dealer{Cards: deck.MustParseCards("AdQd")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("7c7h7s"), Bet: 10, Locked: true}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Lose)
}

func TestBustDominance(t *testing.T) {
	e := testEngine(DefaultConfig())

	// Both player and dealer are forced to bust: the only cards left are
	// kings, and both sit on 16.
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("KsKhKdKc")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th6h")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("Ts6s"), Bet: 10}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(3)})
	require.NoError(t, err)

	pr := result.Players["p1"]
	assert.Equal(t, 1.0, pr.Lose, "player bust loses even when the dealer busts")
	assert.Zero(t, pr.Win)
}

func TestBustedInputHandAlwaysLoses(t *testing.T) {
	e := testEngine(DefaultConfig())
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("KsKhKdKc")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th6h")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("Ts9s5h"), Bet: 10, Busted: true}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Lose)
}

func TestForcedResultShortCircuits(t *testing.T) {
	e := testEngine(DefaultConfig())
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d")},
		Dealer: Dealer{Cards: deck.MustParseCards("AdQd")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("5h5s"), Bet: 10, Result: OutcomeWin}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Win,
		"a forced result wins outright over any dealer comparison")
}

func TestWeightFidelity(t *testing.T) {
	e := testEngine(DefaultConfig())

	// Two hands with fixed outcomes: the 1000-bet hand wins, the 10-bet
	// hand loses. The win fraction must reflect the 100x weight ratio.
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th7h")},
		Players: []Player{{
			ID: "p1",
			Hands: []Hand{
				{Cards: deck.MustParseCards("AsKs"), Bet: 1000, Result: OutcomeWin},
				{Cards: deck.MustParseCards("Ts6s"), Bet: 10, Result: OutcomeLose},
			},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(5)})
	require.NoError(t, err)

	pr := result.Players["p1"]
	assert.InDelta(t, 1000.0/1010.0, pr.Win, 1e-9)
	assert.InDelta(t, 10.0/1010.0, pr.Lose, 1e-9)
	assert.InDelta(t, 1.0, pr.Win+pr.Push+pr.Lose, 1e-9)

	// Per-sub-hand counters stay unweighted.
	require.Len(t, pr.Hands, 2)
	assert.Equal(t, 1.0, pr.Hands[0].Win)
	assert.Equal(t, 1.0, pr.Hands[1].Lose)
}

func TestBetClampedToConfiguredCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBetWeight = 100
	e := testEngine(cfg)

	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th7h")},
		Players: []Player{{
			ID: "p1",
			Hands: []Hand{
				{Cards: deck.MustParseCards("AsKs"), Bet: 1_000_000, Result: OutcomeWin},
				{Cards: deck.MustParseCards("Ts6s"), Bet: 0, Result: OutcomeLose},
			},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(5)})
	require.NoError(t, err)

	// 1_000_000 clamps down to 100, zero clamps up to 1.
	pr := result.Players["p1"]
	assert.InDelta(t, 100.0/101.0, pr.Win, 1e-9)
	assert.InDelta(t, 1.0/101.0, pr.Lose, 1e-9)
}

func TestIterationClamping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SamplesMax = 5000
	e := testEngine(cfg)

	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th7h")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("AsKs"), Bet: 1, Result: OutcomeWin}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{
		Iterations: 10_000_000,
		Seed:       seedPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 5000, result.Samples)
	assert.Equal(t, 5000, result.Players["p1"].Samples)

	result, err = e.Calculate(context.Background(), state, Options{
		Iterations: 1,
		Seed:       seedPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, cfg.SamplesMin, result.Samples)
}

func TestProbabilityConservation(t *testing.T) {
	e := testEngine(DefaultConfig())

	remaining := deck.Without(deck.Standard(nil, nil),
		deck.NewCardSet(deck.MustParseCards("Ts6s6c5h9d")))
	state := &State{
		Deck:   Deck{Remaining: remaining},
		Dealer: Dealer{Cards: deck.MustParseCards("6c")},
		Players: []Player{
			{ID: "p1", Hands: []Hand{{Cards: deck.MustParseCards("Ts6s"), Bet: 25}}},
			{ID: "p2", Hands: []Hand{{Cards: deck.MustParseCards("5h9d"), Bet: 50}}},
		},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(11)})
	require.NoError(t, err)

	for id, pr := range result.Players {
		assert.InDelta(t, 1.0, pr.Win+pr.Push+pr.Lose, 1e-9, "player %s", id)
		assert.GreaterOrEqual(t, pr.Lose, 0.0, "player %s", id)
		for i, hs := range pr.Hands {
			assert.InDelta(t, 1.0, hs.Win+hs.Push+hs.Lose, 1e-9, "player %s hand %d", id, i)
		}
	}
}

func TestSplitAceReceivesOneCardAtMost(t *testing.T) {
	e := testEngine(DefaultConfig())

	// A split ace on 2s would keep hitting (13, then low totals), but the
	// rule caps it at one draw. With only deuces left it lands on 13 and
	// loses to the dealer's 20 every time.
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d2h2s")},
		Dealer: Dealer{Cards: deck.MustParseCards("ThQh")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("As"), Bet: 10, FromSplitAce: true}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Lose)
}

func TestDoubleDownHandNeverHits(t *testing.T) {
	e := testEngine(DefaultConfig())

	// Doubled hand sits on 11 but may not draw; dealer stands on 17.
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d2h2s")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th7h")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("6s5s"), Bet: 10, DoubleDown: true}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Lose)
}

func TestPlayerWithoutHandsOmitted(t *testing.T) {
	e := testEngine(DefaultConfig())
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th7h")},
		Players: []Player{
			{ID: "p1", Hands: []Hand{{Cards: deck.MustParseCards("AsKs"), Bet: 10}}},
			{ID: "empty"},
		},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(8)})
	require.NoError(t, err)
	assert.Contains(t, result.Players, "p1")
	assert.NotContains(t, result.Players, "empty")
}

func TestCancellationAtYieldPoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 1
	e := testEngine(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("2c2d")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th7h")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("AsKs"), Bet: 10}},
		}},
	}

	_, err := e.Calculate(ctx, state, Options{Seed: seedPtr(8)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDealerHitSoft17(t *testing.T) {
	// Dealer on soft 17 with only fours left: hitting makes 21, standing
	// stays on 17. The player is locked on 18.
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("4c4d4h4s")},
		Dealer: Dealer{Cards: deck.MustParseCards("Ah6h")},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("Ts8s"), Bet: 10, Locked: true}},
		}},
	}

	standing := testEngine(DefaultConfig())
	result, err := standing.Calculate(context.Background(), state, Options{Seed: seedPtr(6)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Win, "dealer stands on soft 17, player's 18 wins")

	cfg := DefaultConfig()
	cfg.Dealer.HitSoft17 = true
	hitting := testEngine(cfg)
	result, err = hitting.Calculate(context.Background(), state, Options{Seed: seedPtr(6)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Lose, "dealer draws to 21, player's 18 loses")
}

func TestDealerForcedResultSkipsPlay(t *testing.T) {
	e := testEngine(DefaultConfig())

	// Dealer carries a resolved 20; with only fives left it would
	// otherwise draw from 10. The player's 19 must lose against it.
	resolved := Evaluate(deck.MustParseCards("ThQh"))
	state := &State{
		Deck:   Deck{Remaining: deck.MustParseCards("5c5d5h5s")},
		Dealer: Dealer{Cards: deck.MustParseCards("Th"), Result: &resolved},
		Players: []Player{{
			ID:    "p1",
			Hands: []Hand{{Cards: deck.MustParseCards("Ts9s"), Bet: 10, Locked: true}},
		}},
	}

	result, err := e.Calculate(context.Background(), state, Options{Seed: seedPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Players["p1"].Lose)
}
