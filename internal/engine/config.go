package engine

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cardsim/probability/internal/blackjack"
	"github.com/cardsim/probability/internal/deck"
	"github.com/cardsim/probability/internal/holdem"
)

// Config is the complete engine configuration, supplied once at
// construction.
type Config struct {
	Blackjack       blackjack.Config
	Holdem          holdem.Config
	TelemetryWindow int
}

// DefaultConfig returns the built-in defaults for both engines.
func DefaultConfig() Config {
	return Config{
		Blackjack:       blackjack.DefaultConfig(),
		Holdem:          holdem.DefaultConfig(),
		TelemetryWindow: DefaultTelemetryWindow,
	}
}

// fileConfig mirrors the HCL configuration file layout.
type fileConfig struct {
	Blackjack *blackjackBlock `hcl:"blackjack,block"`
	Holdem    *holdemBlock    `hcl:"holdem,block"`
	Telemetry *telemetryBlock `hcl:"telemetry,block"`
}

type strategyBlock struct {
	StandOnValue int  `hcl:"stand_on_value,optional"`
	HitSoft17    bool `hcl:"hit_soft17,optional"`
}

type blackjackBlock struct {
	SamplesDefault int            `hcl:"samples_default,optional"`
	SamplesMin     int            `hcl:"samples_min,optional"`
	SamplesMax     int            `hcl:"samples_max,optional"`
	ChunkSize      int            `hcl:"chunk_size,optional"`
	MaxBetWeight   float64        `hcl:"max_bet_weight,optional"`
	Player         *strategyBlock `hcl:"player,block"`
	Dealer         *strategyBlock `hcl:"dealer,block"`
}

type holdemBlock struct {
	SamplesDefault int      `hcl:"samples_default,optional"`
	SamplesMin     int      `hcl:"samples_min,optional"`
	SamplesMax     int      `hcl:"samples_max,optional"`
	YieldEvery     int      `hcl:"yield_every,optional"`
	Ranks          []string `hcl:"ranks,optional"`
	Suits          []string `hcl:"suits,optional"`
}

type telemetryBlock struct {
	Window int `hcl:"window,optional"`
}

// LoadConfig loads engine configuration from an HCL file, applying
// defaults for anything the file leaves unset. A missing file yields the
// pure defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if fc.Blackjack != nil {
		applyBlackjack(&cfg.Blackjack, fc.Blackjack)
	}
	if fc.Holdem != nil {
		if err := applyHoldem(&cfg.Holdem, fc.Holdem); err != nil {
			return cfg, err
		}
	}
	if fc.Telemetry != nil && fc.Telemetry.Window > 0 {
		cfg.TelemetryWindow = fc.Telemetry.Window
	}
	return cfg, nil
}

func applyBlackjack(cfg *blackjack.Config, b *blackjackBlock) {
	if b.SamplesDefault > 0 {
		cfg.SamplesDefault = b.SamplesDefault
	}
	if b.SamplesMin > 0 {
		cfg.SamplesMin = b.SamplesMin
	}
	if b.SamplesMax > 0 {
		cfg.SamplesMax = b.SamplesMax
	}
	if b.ChunkSize > 0 {
		cfg.ChunkSize = b.ChunkSize
	}
	if b.MaxBetWeight > 0 {
		cfg.MaxBetWeight = b.MaxBetWeight
	}
	if b.Player != nil {
		applyStrategy(&cfg.Player, b.Player)
	}
	if b.Dealer != nil {
		applyStrategy(&cfg.Dealer, b.Dealer)
	}
}

func applyStrategy(s *blackjack.Strategy, b *strategyBlock) {
	if b.StandOnValue > 0 {
		s.StandOnValue = b.StandOnValue
	}
	s.HitSoft17 = b.HitSoft17
}

func applyHoldem(cfg *holdem.Config, h *holdemBlock) error {
	if h.SamplesDefault > 0 {
		cfg.SamplesDefault = h.SamplesDefault
	}
	if h.SamplesMin > 0 {
		cfg.SamplesMin = h.SamplesMin
	}
	if h.SamplesMax > 0 {
		cfg.SamplesMax = h.SamplesMax
	}
	if h.YieldEvery > 0 {
		cfg.YieldEvery = h.YieldEvery
	}
	if len(h.Ranks) > 0 {
		ranks := make([]deck.Rank, 0, len(h.Ranks))
		for _, s := range h.Ranks {
			r, err := deck.ParseRank(s)
			if err != nil {
				return fmt.Errorf("holdem ranks: %w", err)
			}
			ranks = append(ranks, r)
		}
		cfg.Ranks = ranks
	}
	if len(h.Suits) > 0 {
		suits := make([]deck.Suit, 0, len(h.Suits))
		for _, s := range h.Suits {
			suit, err := deck.ParseSuit(s)
			if err != nil {
				return fmt.Errorf("holdem suits: %w", err)
			}
			suits = append(suits, suit)
		}
		cfg.Suits = suits
	}
	return nil
}
