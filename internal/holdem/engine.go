// Package holdem estimates per-player showdown equity for Texas Hold'em,
// either by a single deterministic evaluation when the board is complete
// or by Monte Carlo completion of the missing community cards.
package holdem

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cardsim/probability/internal/deck"
	"github.com/cardsim/probability/internal/evaluator"
	"github.com/cardsim/probability/internal/randutil"
	"github.com/cardsim/probability/internal/sim"
)

const boardSize = 5

// Player is one seat as known at calculation time.
type Player struct {
	ID      string
	Cards   []deck.Card
	Folded  bool
	Removed bool
	AllIn   bool
}

// Eligible reports whether the player takes part in equity computation.
func (p Player) Eligible() bool {
	return p.ID != "" && !p.Folded && !p.Removed && len(p.Cards) >= 2
}

// Deck is the pool of cards not yet known to any actor. When nil or
// empty the engine reconstructs it from the configured deck composition
// minus every visible card.
type Deck struct {
	Remaining []deck.Card
}

// State is the table snapshot one calculation runs against.
type State struct {
	Players    []Player
	BoardCards []deck.Card
	Deck       *Deck
	DeadCards  []deck.Card
}

// Config bounds the trial count and fixes the deck composition.
type Config struct {
	SamplesDefault int
	SamplesMin     int
	SamplesMax     int
	YieldEvery     int
	Ranks          []deck.Rank
	Suits          []deck.Suit
}

// DefaultConfig returns a standard 52-card composition with moderate
// sample bounds.
func DefaultConfig() Config {
	return Config{
		SamplesDefault: 2000,
		SamplesMin:     100,
		SamplesMax:     20000,
		YieldEvery:     200,
		Ranks:          deck.Ranks,
		Suits:          deck.Suits,
	}
}

// Options are per-call overrides.
type Options struct {
	Iterations int
	Seed       *int64
}

// PlayerResult is one player's equity over all successful trials.
type PlayerResult struct {
	Win      float64
	Tie      float64
	Lose     float64
	Samples  int
	Eligible bool
}

// Result is the outcome of one Calculate call. A non-empty Note marks a
// degenerate result that carries no statistical information.
type Result struct {
	Players map[string]PlayerResult
	Samples int
	Note    string
}

// Engine runs hold'em equity calculations.
type Engine struct {
	cfg    Config
	log    *log.Logger
	ranker evaluator.Ranker
	yield  sim.YieldFunc
}

// New creates an engine. A nil ranker falls back to the library-backed
// default; a nil logger falls back to the default logger.
func New(cfg Config, ranker evaluator.Ranker, logger *log.Logger) *Engine {
	if ranker == nil {
		ranker = evaluator.NewLibraryRanker()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cfg: cfg, log: logger, ranker: ranker, yield: sim.Yield}
}

func (e *Engine) clampIterations(requested int) int {
	n := requested
	if n <= 0 {
		n = e.cfg.SamplesDefault
	}
	if n < e.cfg.SamplesMin {
		n = e.cfg.SamplesMin
	}
	if n > e.cfg.SamplesMax {
		n = e.cfg.SamplesMax
	}
	return n
}

// Calculate estimates win/tie/lose per eligible player. With a complete
// board it performs a single deterministic showdown; otherwise it runs
// Monte Carlo trials that complete the board from the unseen pool.
func (e *Engine) Calculate(ctx context.Context, state *State, opts Options) (*Result, error) {
	eligible := make([]Player, 0, len(state.Players))
	for _, p := range state.Players {
		if p.Eligible() {
			eligible = append(eligible, p)
		}
	}

	if len(eligible) == 0 {
		return e.degenerate(state, "noEligiblePlayers"), nil
	}

	pool := e.unseenPool(state)
	missing := boardSize - len(state.BoardCards)
	if missing < 0 {
		missing = 0
	}

	if missing == 0 {
		return e.showdown(state, eligible)
	}

	if len(pool) < missing {
		e.log.Warn("insufficient deck to complete board",
			"missing", missing, "remaining", len(pool))
		return e.degenerate(state, "insufficientDeck"), nil
	}

	return e.monteCarlo(ctx, state, eligible, pool, missing, opts)
}

// unseenPool returns the cards the calculation may draw from: the
// caller-supplied pool when present, otherwise a full configured deck
// minus board, dead and hole cards.
func (e *Engine) unseenPool(state *State) []deck.Card {
	if state.Deck != nil && len(state.Deck.Remaining) > 0 {
		return state.Deck.Remaining
	}
	seen := deck.NewCardSet(state.BoardCards, state.DeadCards)
	for _, p := range state.Players {
		for _, c := range p.Cards {
			seen.Add(c)
		}
	}
	return deck.Without(deck.Standard(e.cfg.Ranks, e.cfg.Suits), seen)
}

// degenerate builds a lose-all result for runs that cannot sample.
func (e *Engine) degenerate(state *State, note string) *Result {
	result := &Result{
		Players: make(map[string]PlayerResult, len(state.Players)),
		Samples: 1,
		Note:    note,
	}
	for _, p := range state.Players {
		if p.ID == "" {
			continue
		}
		result.Players[p.ID] = PlayerResult{Lose: 1}
	}
	return result
}

// showdown evaluates a fully-known board once.
func (e *Engine) showdown(state *State, eligible []Player) (*Result, error) {
	outcome, err := e.evaluateBoard(eligible, state.BoardCards)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Players: make(map[string]PlayerResult, len(state.Players)),
		Samples: 1,
	}
	for i, p := range eligible {
		pr := PlayerResult{Samples: 1, Eligible: true}
		switch outcome[i] {
		case trialWin:
			pr.Win = 1
		case trialTie:
			pr.Tie = 1
		default:
			pr.Lose = 1
		}
		result.Players[p.ID] = pr
	}
	fillIneligible(result, state.Players)
	return result, nil
}

type trialOutcome int

const (
	trialLose trialOutcome = iota
	trialWin
	trialTie
)

// evaluateBoard ranks every eligible player's hole+board hand and marks
// the winner set: a sole winner wins, several winners tie, the rest lose.
func (e *Engine) evaluateBoard(eligible []Player, board []deck.Card) ([]trialOutcome, error) {
	hands := make([]evaluator.RankedHand, len(eligible))
	for i, p := range eligible {
		cards := make([]deck.Card, 0, len(p.Cards)+len(board))
		cards = append(cards, p.Cards...)
		cards = append(cards, board...)
		hand, err := e.ranker.Solve(cards)
		if err != nil {
			return nil, err
		}
		hands[i] = hand
	}

	outcome := make([]trialOutcome, len(eligible))
	winners := e.ranker.Winners(hands)
	for _, idx := range winners {
		if idx < 0 || idx >= len(outcome) {
			continue
		}
		if len(winners) == 1 {
			outcome[idx] = trialWin
		} else {
			outcome[idx] = trialTie
		}
	}
	return outcome, nil
}

// monteCarlo completes the board randomly per trial. Trials whose
// evaluation fails are skipped and do not count toward samples.
func (e *Engine) monteCarlo(ctx context.Context, state *State, eligible []Player, pool []deck.Card, missing int, opts Options) (*Result, error) {
	iterations := e.clampIterations(opts.Iterations)

	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	rng := randutil.New(seed)

	yieldEvery := e.cfg.YieldEvery
	if yieldEvery <= 0 {
		yieldEvery = 200
	}

	type tally struct{ win, tie, lose int }
	tallies := make([]tally, len(eligible))
	successful := 0

	board := make([]deck.Card, len(state.BoardCards), boardSize)
	copy(board, state.BoardCards)

	for trial := 0; trial < iterations; trial++ {
		if (trial+1)%yieldEvery == 0 {
			if err := e.yield(ctx); err != nil {
				return nil, err
			}
		}

		working := deck.Clone(pool)
		drawn := deck.DrawN(&working, missing, rng)
		if len(drawn) != missing {
			continue
		}
		board = append(board[:len(state.BoardCards)], drawn...)

		outcome, err := e.evaluateBoard(eligible, board)
		if err != nil {
			e.log.Debug("skipping failed trial", "err", err)
			continue
		}

		for i, o := range outcome {
			switch o {
			case trialWin:
				tallies[i].win++
			case trialTie:
				tallies[i].tie++
			default:
				tallies[i].lose++
			}
		}
		successful++
	}

	result := &Result{
		Players: make(map[string]PlayerResult, len(state.Players)),
		Samples: successful,
	}
	denom := float64(max(successful, 1))
	for i, p := range eligible {
		pr := PlayerResult{
			Win:      float64(tallies[i].win) / denom,
			Tie:      float64(tallies[i].tie) / denom,
			Samples:  successful,
			Eligible: true,
		}
		// With zero successful trials both fractions are zero and the
		// player reports a plain loss rather than a division by zero.
		pr.Lose = clampNonNegative(1 - pr.Win - pr.Tie)
		result.Players[p.ID] = pr
	}
	fillIneligible(result, state.Players)
	return result, nil
}

// fillIneligible adds lose-all, zero-sample entries for players that did
// not take part in the computation.
func fillIneligible(result *Result, players []Player) {
	for _, p := range players {
		if p.ID == "" {
			continue
		}
		if _, ok := result.Players[p.ID]; !ok {
			result.Players[p.ID] = PlayerResult{Lose: 1}
		}
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
