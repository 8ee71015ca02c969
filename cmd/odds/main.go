package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/cardsim/probability/internal/blackjack"
	"github.com/cardsim/probability/internal/deck"
	"github.com/cardsim/probability/internal/engine"
	"github.com/cardsim/probability/internal/holdem"
)

type CLI struct {
	Config  string `help:"Path to HCL config file" type:"path"`
	Verbose bool   `short:"v" help:"Verbose logging"`

	Holdem    HoldemCmd    `cmd:"" help:"Estimate Texas Hold'em equity per player"`
	Blackjack BlackjackCmd `cmd:"" help:"Estimate blackjack win/push/lose per hand"`
}

type HoldemCmd struct {
	Hands      []string `arg:"" required:"" help:"Hole cards per player (e.g. 'AsKd' '7h7c')"`
	Board      string   `short:"b" help:"Community board cards (e.g. 'Td7s8h')"`
	Dead       string   `help:"Dead cards excluded from the deck"`
	Iterations int      `short:"i" help:"Number of Monte Carlo iterations"`
	Seed       *int64   `help:"Random seed for reproducible results"`
}

type BlackjackCmd struct {
	Hands      []string `arg:"" required:"" help:"Player hands as cards[:bet] (e.g. 'AhTs:50')"`
	Dealer     string   `short:"d" required:"" help:"Dealer's visible cards (e.g. '6c')"`
	Iterations int      `short:"i" help:"Number of simulation trials"`
	Seed       *int64   `help:"Random seed for reproducible results"`
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	handStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

type appContext struct {
	engine *engine.Engine
	logger *log.Logger
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("odds"),
		kong.Description("Card-game probability estimation"))

	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := engine.LoadConfig(cli.Config)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		ctx.Exit(1)
	}

	app := &appContext{
		engine: engine.New(cfg, engine.WithLogger(logger)),
		logger: logger,
	}
	ctx.FatalIfErrorf(ctx.Run(app))
}

func (c *HoldemCmd) Run(app *appContext) error {
	var players []holdem.Player
	for i, hand := range c.Hands {
		cards, err := deck.ParseCards(hand)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		players = append(players, holdem.Player{
			ID:    fmt.Sprintf("player%d", i+1),
			Cards: cards,
		})
	}

	var board, dead []deck.Card
	var err error
	if c.Board != "" {
		if board, err = deck.ParseCards(c.Board); err != nil {
			return fmt.Errorf("board: %w", err)
		}
		if len(board) > 5 {
			return fmt.Errorf("board cannot have more than 5 cards")
		}
	}
	if c.Dead != "" {
		if dead, err = deck.ParseCards(c.Dead); err != nil {
			return fmt.Errorf("dead cards: %w", err)
		}
	}

	envelope, err := app.engine.Calculate(context.Background(), engine.Request{
		Type: engine.GameTexasHoldem,
		Holdem: &holdem.State{
			Players:    players,
			BoardCards: board,
			DeadCards:  dead,
		},
	}, engine.Options{Iterations: c.Iterations, Seed: c.Seed, Reason: "cli"})
	if err != nil {
		return err
	}

	result := envelope.Holdem
	fmt.Println(headerStyle.Render(fmt.Sprintf("Equity over %d samples (%dms)",
		result.Samples, envelope.DurationMs)))
	if result.Note != "" {
		fmt.Println(noteStyle.Render("note: " + result.Note))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tHAND\tWIN\tTIE\tLOSE")
	for _, p := range players {
		pr := result.Players[p.ID]
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%.1f%%\t%.1f%%\n",
			p.ID, handStyle.Render(cardsString(p.Cards)),
			pr.Win*100, pr.Tie*100, pr.Lose*100)
	}
	return w.Flush()
}

func (c *BlackjackCmd) Run(app *appContext) error {
	dealerCards, err := deck.ParseCards(c.Dealer)
	if err != nil {
		return fmt.Errorf("dealer: %w", err)
	}

	visible := deck.NewCardSet(dealerCards)
	var hands []blackjack.Hand
	for i, arg := range c.Hands {
		cardPart, bet, err := splitBet(arg)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		cards, err := deck.ParseCards(cardPart)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		for _, card := range cards {
			visible.Add(card)
		}
		hands = append(hands, blackjack.Hand{Cards: cards, Bet: bet})
	}

	remaining := deck.Without(deck.Standard(nil, nil), visible)

	envelope, err := app.engine.Calculate(context.Background(), engine.Request{
		Type: engine.GameBlackjack,
		Blackjack: &blackjack.State{
			Deck:    blackjack.Deck{Remaining: remaining},
			Dealer:  blackjack.Dealer{Cards: dealerCards},
			Players: []blackjack.Player{{ID: "player", Hands: hands}},
		},
	}, engine.Options{Iterations: c.Iterations, Seed: c.Seed, Reason: "cli"})
	if err != nil {
		return err
	}

	result := envelope.Blackjack
	fmt.Println(headerStyle.Render(fmt.Sprintf("Blackjack outcome over %d trials (%dms)",
		result.Samples, envelope.DurationMs)))
	if result.Note != "" {
		fmt.Println(noteStyle.Render("note: " + result.Note))
		return nil
	}

	pr := result.Players["player"]
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HAND\tWIN\tPUSH\tLOSE")
	for i, hs := range pr.Hands {
		fmt.Fprintf(w, "%s\t%.1f%%\t%.1f%%\t%.1f%%\n",
			handStyle.Render(c.Hands[i]), hs.Win*100, hs.Push*100, hs.Lose*100)
	}
	fmt.Fprintf(w, "%s\t%.1f%%\t%.1f%%\t%.1f%%\n",
		"weighted", pr.Win*100, pr.Push*100, pr.Lose*100)
	if err := w.Flush(); err != nil {
		return err
	}

	printMetrics(app)
	return nil
}

func cardsString(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, "")
}

// splitBet separates "AhTs:50" into its card and bet parts. A missing
// bet defaults to 1 so every hand counts at least one trial weight.
func splitBet(arg string) (string, float64, error) {
	cards, betPart, found := strings.Cut(arg, ":")
	if !found {
		return cards, 1, nil
	}
	bet, err := strconv.ParseFloat(betPart, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid bet %q: %w", betPart, err)
	}
	return cards, bet, nil
}

func printMetrics(app *appContext) {
	metrics := app.engine.Metrics()
	types := make([]string, 0, len(metrics.PerGameType))
	for t := range metrics.PerGameType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		c := metrics.PerGameType[engine.GameType(t)]
		app.logger.Debug("telemetry",
			"type", t, "runs", c.Runs,
			"samples", c.TotalSamples, "durationMs", c.TotalDurationMs)
	}
}
