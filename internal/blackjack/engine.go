// Package blackjack estimates per-hand win/push/lose probabilities by
// simulating player and dealer play against a snapshot of unseen cards.
package blackjack

import (
	"context"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cardsim/probability/internal/deck"
	"github.com/cardsim/probability/internal/randutil"
	"github.com/cardsim/probability/internal/sim"
)

// Outcome is the resolution of a single player hand against the dealer.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomePush Outcome = "push"
	OutcomeLose Outcome = "lose"
)

// Hand is one player hand as known at simulation time. Result, when set,
// short-circuits simulation for hands whose outcome prior gameplay has
// already fixed.
type Hand struct {
	Cards        []deck.Card
	Bet          float64
	Locked       bool
	Busted       bool
	FromSplitAce bool
	DoubleDown   bool
	Result       Outcome
}

// Player holds the hands belonging to one seat.
type Player struct {
	ID    string
	Hands []Hand
}

// Dealer is the dealer's known cards. A non-nil Result means the dealer
// is already resolved and plays no further cards.
type Dealer struct {
	Cards  []deck.Card
	Result *HandValue
}

// Deck is the pool of cards not yet known to any actor. Callers must
// exclude every visible card before passing it in; the engine never
// mutates the slice.
type Deck struct {
	Remaining []deck.Card
}

// State is the game snapshot one simulation runs against.
type State struct {
	Deck    Deck
	Dealer  Dealer
	Players []Player
}

// Strategy controls the hit rule for one actor.
type Strategy struct {
	StandOnValue int
	HitSoft17    bool
}

// Config bounds the trial count and fixes both actors' strategies.
type Config struct {
	SamplesDefault int
	SamplesMin     int
	SamplesMax     int
	ChunkSize      int
	Player         Strategy
	Dealer         Strategy
	MaxBetWeight   float64
}

// DefaultConfig returns the conventional house rules: both actors stand
// on 17 and neither hits a soft 17.
func DefaultConfig() Config {
	return Config{
		SamplesDefault: 1000,
		SamplesMin:     100,
		SamplesMax:     10000,
		ChunkSize:      100,
		Player:         Strategy{StandOnValue: 17},
		Dealer:         Strategy{StandOnValue: 17},
		MaxBetWeight:   1_000_000,
	}
}

// Options are per-call overrides.
type Options struct {
	Iterations int
	Seed       *int64
}

// HandStats are unweighted per-sub-hand outcome fractions.
type HandStats struct {
	Win  float64
	Push float64
	Lose float64
}

// PlayerResult is one player's aggregated probabilities.
type PlayerResult struct {
	Win     float64
	Push    float64
	Lose    float64
	Samples int
	Hands   []HandStats
}

// Result is the outcome of one Calculate call. A non-empty Note marks a
// degenerate result that carries no statistical information.
type Result struct {
	Players map[string]PlayerResult
	Samples int
	Note    string
}

// Engine runs blackjack simulations.
type Engine struct {
	cfg   Config
	log   *log.Logger
	yield sim.YieldFunc
}

// New creates an engine. A nil logger falls back to the default logger.
func New(cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cfg: cfg, log: logger, yield: sim.Yield}
}

// playerAccumulator collects weighted outcomes over all trials.
type playerAccumulator struct {
	weights     []float64
	totalWeight float64
	win         float64
	push        float64
	lose        float64
	handCounts  []handCounter
}

type handCounter struct {
	win  int
	push int
	lose int
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

func (e *Engine) clampWeight(bet float64) float64 {
	if bet < 1 {
		return 1
	}
	if bet > e.cfg.MaxBetWeight {
		return e.cfg.MaxBetWeight
	}
	return bet
}

// Calculate runs repeated independent trials against the snapshot and
// returns weight-normalised win/push/lose fractions per player. An empty
// unseen-card snapshot yields a degenerate result with note "emptyDeck":
// no trial can run meaningfully from zero information.
func (e *Engine) Calculate(ctx context.Context, state *State, opts Options) (*Result, error) {
	iterations := e.clampIterations(opts.Iterations)

	if len(state.Deck.Remaining) == 0 {
		e.log.Warn("empty deck snapshot, skipping blackjack simulation")
		return &Result{Players: map[string]PlayerResult{}, Note: "emptyDeck"}, nil
	}

	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	rng := randutil.New(seed)

	accs := make(map[string]*playerAccumulator, len(state.Players))
	for _, p := range state.Players {
		if p.ID == "" || len(p.Hands) == 0 {
			continue
		}
		acc := &playerAccumulator{
			weights:    make([]float64, len(p.Hands)),
			handCounts: make([]handCounter, len(p.Hands)),
		}
		for i, h := range p.Hands {
			w := e.clampWeight(h.Bet)
			acc.weights[i] = w
			acc.totalWeight += w
		}
		accs[p.ID] = acc
	}

	chunk := e.cfg.ChunkSize
	if chunk <= 0 {
		chunk = 100
	}

	// Scratch space for the played-out value of every undecided hand,
	// reused across trials.
	played := make(map[string][]HandValue, len(accs))
	for _, p := range state.Players {
		if _, ok := accs[p.ID]; ok {
			played[p.ID] = make([]HandValue, len(p.Hands))
		}
	}

	for trial := 0; trial < iterations; trial++ {
		working := deck.Clone(state.Deck.Remaining)

		// Player hands draw first, then the dealer draws from whatever
		// the hands left in the working deck.
		for _, p := range state.Players {
			values, ok := played[p.ID]
			if !ok {
				continue
			}
			for i, h := range p.Hands {
				if h.Result != "" || h.Busted {
					continue
				}
				values[i] = e.playOut(&working, h, rng)
			}
		}

		dealerHV := e.playDealer(&working, &state.Dealer, rng)

		for _, p := range state.Players {
			acc, ok := accs[p.ID]
			if !ok {
				continue
			}
			for i, h := range p.Hands {
				outcome := resolveHand(h, played[p.ID][i], dealerHV)
				switch outcome {
				case OutcomeWin:
					acc.win += acc.weights[i]
					acc.handCounts[i].win++
				case OutcomePush:
					acc.push += acc.weights[i]
					acc.handCounts[i].push++
				default:
					acc.lose += acc.weights[i]
					acc.handCounts[i].lose++
				}
			}
		}

		if (trial+1)%chunk == 0 {
			if err := e.yield(ctx); err != nil {
				return nil, err
			}
		}
	}

	result := &Result{
		Players: make(map[string]PlayerResult, len(accs)),
		Samples: iterations,
	}
	for id, acc := range accs {
		denom := acc.totalWeight * float64(iterations)
		pr := PlayerResult{
			Win:     acc.win / denom,
			Push:    acc.push / denom,
			Samples: iterations,
			Hands:   make([]HandStats, len(acc.handCounts)),
		}
		pr.Lose = clampNonNegative(1 - pr.Win - pr.Push)
		for i, hc := range acc.handCounts {
			pr.Hands[i] = HandStats{
				Win:  float64(hc.win) / float64(iterations),
				Push: float64(hc.push) / float64(iterations),
				Lose: float64(hc.lose) / float64(iterations),
			}
		}
		result.Players[id] = pr
	}
	return result, nil
}

// resolveHand settles one hand against the dealer. A forced result from
// prior gameplay wins outright over any comparison; an input busted flag
// is an automatic loss.
func resolveHand(h Hand, player, dealer HandValue) Outcome {
	if h.Result != "" {
		return h.Result
	}
	if h.Busted {
		return OutcomeLose
	}
	return resolve(player, dealer)
}

// playOut draws cards for a player hand per the configured player
// strategy and returns the final evaluation.
func (e *Engine) playOut(working *[]deck.Card, h Hand, rng *rand.Rand) HandValue {
	cards := deck.Clone(h.Cards)
	hv := Evaluate(cards)

	// Locked and doubled hands take no further action.
	if h.Locked || h.DoubleDown {
		return hv
	}

	draws := 0
	for shouldHit(hv, e.cfg.Player) {
		// A hand made by splitting aces may receive one card at most.
		if h.FromSplitAce && draws >= 1 {
			break
		}
		card, ok := deck.DrawOne(working, rng)
		if !ok {
			break
		}
		cards = append(cards, card)
		draws++
		hv = Evaluate(cards)
	}
	return hv
}

func (e *Engine) playDealer(working *[]deck.Card, dealer *Dealer, rng *rand.Rand) HandValue {
	if dealer.Result != nil {
		return *dealer.Result
	}
	cards := deck.Clone(dealer.Cards)
	hv := Evaluate(cards)
	for shouldHit(hv, e.cfg.Dealer) {
		card, ok := deck.DrawOne(working, rng)
		if !ok {
			break
		}
		cards = append(cards, card)
		hv = Evaluate(cards)
	}
	return hv
}

// shouldHit applies the hit rule: hit below the stand value, stand above
// it, and on the stand value itself hit only a soft total when the
// strategy says so.
func shouldHit(hv HandValue, strat Strategy) bool {
	if hv.Busted {
		return false
	}
	if hv.Value < strat.StandOnValue {
		return true
	}
	if hv.Value == strat.StandOnValue {
		return hv.Soft && strat.HitSoft17
	}
	return false
}

// resolve compares a played-out player hand against the dealer. Player
// busts lose outright, even when the dealer also busts. Naturals are
// compared before numeric values so a two-card 21 beats a drawn 21.
func resolve(player, dealer HandValue) Outcome {
	if player.Busted {
		return OutcomeLose
	}
	if dealer.Busted {
		return OutcomeWin
	}
	if player.Blackjack != dealer.Blackjack {
		if player.Blackjack {
			return OutcomeWin
		}
		return OutcomeLose
	}
	switch {
	case player.Value > dealer.Value:
		return OutcomeWin
	case player.Value < dealer.Value:
		return OutcomeLose
	default:
		return OutcomePush
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
