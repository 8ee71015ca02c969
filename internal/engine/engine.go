// Package engine is the probability engine facade: it dispatches
// calculation requests to the blackjack or hold'em engine, times each
// run and keeps bounded rolling telemetry.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardsim/probability/internal/blackjack"
	"github.com/cardsim/probability/internal/evaluator"
	"github.com/cardsim/probability/internal/holdem"
)

// GameType selects which engine a request is dispatched to.
type GameType string

const (
	GameBlackjack   GameType = "blackjack"
	GameTexasHoldem GameType = "texasHoldem"
)

// Configuration errors fail fast and are never retried.
var (
	ErrUnknownGameType = errors.New("unknown game type")
	ErrNilState        = errors.New("missing game state")
)

// Request carries the game type and the matching state snapshot.
type Request struct {
	Type      GameType
	Blackjack *blackjack.State
	Holdem    *holdem.State
}

// Options are per-call overrides. Reason is a free-text tag propagated
// into telemetry.
type Options struct {
	Iterations int
	Reason     string
	Seed       *int64
}

// Envelope is the uniform result wrapper returned for every game type.
// Exactly one of Blackjack/Holdem is set.
type Envelope struct {
	Type       GameType
	UpdatedAt  string
	DurationMs int64
	Blackjack  *blackjack.Result
	Holdem     *holdem.Result
	Reason     string
}

// Engine dispatches probability calculations and owns the telemetry
// store.
type Engine struct {
	blackjack *blackjack.Engine
	holdem    *holdem.Engine
	telemetry *Telemetry
	clock     quartz.Clock
	log       *log.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger *log.Logger
	ranker evaluator.Ranker
	clock  quartz.Clock
}

// WithLogger sets the logger shared by the facade and both engines.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRanker substitutes the hand-ranking capability used by the
// hold'em engine.
func WithRanker(r evaluator.Ranker) Option {
	return func(o *options) { o.ranker = r }
}

// WithClock substitutes the clock used for timing and telemetry
// timestamps.
func WithClock(c quartz.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New constructs the facade and both engines from one configuration.
func New(cfg Config, opts ...Option) *Engine {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}

	return &Engine{
		blackjack: blackjack.New(cfg.Blackjack, o.logger),
		holdem:    holdem.New(cfg.Holdem, o.ranker, o.logger),
		telemetry: NewTelemetry(cfg.TelemetryWindow, o.clock),
		clock:     o.clock,
		log:       o.logger,
	}
}

// Calculate dispatches to the engine matching the request type, times
// the run, and records telemetry on success. Engine errors propagate
// unrecorded.
func (e *Engine) Calculate(ctx context.Context, req Request, opts Options) (*Envelope, error) {
	start := e.clock.Now()

	envelope := &Envelope{Type: req.Type, Reason: opts.Reason}
	var samples int

	switch req.Type {
	case GameBlackjack:
		if req.Blackjack == nil {
			return nil, fmt.Errorf("%w for %s", ErrNilState, req.Type)
		}
		result, err := e.blackjack.Calculate(ctx, req.Blackjack, blackjack.Options{
			Iterations: opts.Iterations,
			Seed:       opts.Seed,
		})
		if err != nil {
			return nil, err
		}
		envelope.Blackjack = result
		samples = result.Samples

	case GameTexasHoldem:
		if req.Holdem == nil {
			return nil, fmt.Errorf("%w for %s", ErrNilState, req.Type)
		}
		result, err := e.holdem.Calculate(ctx, req.Holdem, holdem.Options{
			Iterations: opts.Iterations,
			Seed:       opts.Seed,
		})
		if err != nil {
			return nil, err
		}
		envelope.Holdem = result
		samples = result.Samples

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, req.Type)
	}

	elapsed := e.clock.Since(start)
	envelope.DurationMs = elapsed.Milliseconds()
	envelope.UpdatedAt = e.clock.Now().UTC().Format(time.RFC3339)

	e.telemetry.Record(req.Type, samples, elapsed, opts.Reason)
	return envelope, nil
}

// Metrics returns a read-only telemetry snapshot.
func (e *Engine) Metrics() Metrics {
	return e.telemetry.Snapshot()
}

// ResetTelemetry clears telemetry state, for test isolation.
func (e *Engine) ResetTelemetry() {
	e.telemetry.Reset()
}
