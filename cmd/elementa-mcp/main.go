package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/elementa/internal/config"
	"github.com/peterkuimelis/elementa/internal/game"
	elementamcp "github.com/peterkuimelis/elementa/internal/mcp"
)

func main() {
	configFile := flag.String("config", "", "path to config YAML")
	agentDeck := flag.Int("deck", 1, "deck number for the agent (from the decks file)")
	flag.Parse()

	if err := run(*configFile, *agentDeck); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string, agentDeck int) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	_, defs, err := game.DeckByNumber(cfg.Decks.File, agentDeck)
	if err != nil {
		return err
	}

	defaults := elementamcp.SessionConfig{
		MaxTurns:    cfg.Game.MaxTurns,
		HandSize:    cfg.Game.HandSize,
		AIThreshold: cfg.AI.AttackThreshold,
	}
	// the agent keeps its deck whichever seat it takes
	tools := elementamcp.NewTools(defaults)
	tools.AgentDeck = defs

	s := server.NewMCPServer("elementa", "1.0.0")
	tools.Register(s)
	return server.ServeStdio(s)
}
