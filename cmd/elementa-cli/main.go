package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/peterkuimelis/elementa/internal/config"
	"github.com/peterkuimelis/elementa/internal/game"
	"github.com/peterkuimelis/elementa/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, os.Args[2:])
	case "host":
		err = runLAN(ctx, "host", os.Args[2:])
	case "join":
		err = runLAN(ctx, "join", os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  elementa play [--seed N] [--deck N] [--config FILE]")
	fmt.Println("  elementa host [--relay URL] [--config FILE]")
	fmt.Println("  elementa join [--relay URL] [--config FILE] CODE")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play against the computer opponent")
	fmt.Println("  host    Open a room on the relay and wait for an opponent")
	fmt.Println("  join    Join a room by its code")
}

func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	lvl, _ := cfg.App.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	return cfg, logger, nil
}

func runPlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	seed := fs.Int64("seed", 0, "match seed (0 = random)")
	deck := fs.Int("deck", 1, "deck number to use (from the decks file)")
	configFile := fs.String("config", "", "path to config YAML")
	fs.Parse(args)

	cfg, _, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	name, defs, err := game.DeckByNumber(cfg.Decks.File, *deck)
	if err != nil {
		return err
	}
	fmt.Printf("Playing with deck %q against the computer.\n", name)

	human := net.NewTerminalController(0, os.Stdin, os.Stdout)
	ai := game.NewAIController(1, *seed, cfg.AI.AttackThreshold)
	duel := game.NewDuel(game.DuelConfig{
		Decks:             [2][]game.Archetype{defs, nil},
		Seed:              *seed,
		MaxTurns:          cfg.Game.MaxTurns,
		HandSize:          cfg.Game.HandSize,
		TurnTimeout:       cfg.Game.TurnTimeout,
		PresentationDelay: cfg.Game.PresentationDelay,
	}, human, ai)

	winner, err := duel.Run(ctx)
	fmt.Println()
	fmt.Println(duel.State.Result)
	if err != nil {
		return err
	}
	switch winner {
	case 0:
		fmt.Println("You win!")
	case 1:
		fmt.Println("You lose.")
	}
	return nil
}

func runLAN(ctx context.Context, mode string, args []string) error {
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	relayURL := fs.String("relay", "", "relay websocket URL (default from config)")
	configFile := fs.String("config", "", "path to config YAML")
	fs.Parse(args)

	cfg, logger, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	url := *relayURL
	if url == "" {
		url = cfg.Relay.URL
	}

	var code string
	if mode == "join" {
		if fs.NArg() == 0 {
			return fmt.Errorf("join needs a room code")
		}
		code = fs.Arg(0)
		for _, extra := range fs.Args()[1:] {
			code += extra // codes may be typed with spaces
		}
	}

	client, err := net.Dial(ctx, url, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	session := &net.Session{
		Code: code,
		Local: func(seat int) game.PlayerController {
			return net.NewTerminalController(seat, os.Stdin, os.Stdout)
		},
		TurnTimeout:       cfg.Game.TurnTimeout,
		PresentationDelay: cfg.Game.PresentationDelay,
		MaxTurns:          cfg.Game.MaxTurns,
		HandSize:          cfg.Game.HandSize,
		Out:               os.Stdout,
		Log:               logger,
	}
	res, err := session.Play(ctx, client)
	if res.State != nil {
		fmt.Println()
		fmt.Println(res.Text)
		if res.Winner == res.Role.Seat() {
			fmt.Println("You win!")
		} else if res.Winner >= 0 {
			fmt.Println("You lose.")
		}
	}
	return err
}
