package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/redis/go-redis/v9"

	"github.com/peterkuimelis/elementa/internal/config"
	"github.com/peterkuimelis/elementa/internal/room"
	"github.com/peterkuimelis/elementa/internal/web"
)

func main() {
	configFile := flag.String("config", "", "path to config YAML")
	addr := flag.String("addr", "", "listen address (default from config)")
	flag.Parse()

	if err := run(*configFile, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, addr string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	lvl, _ := cfg.App.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	if addr == "" {
		addr = cfg.Relay.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var registry room.CodeRegistry = room.NewMemoryCodeRegistry()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		registry = room.NewRedisCodeRegistry(client, cfg.Relay.CodeTTL)
		logger.Info("room codes shared through redis", "addr", cfg.Redis.Addr)
	}

	manager, err := room.NewManager(room.Config{
		CodeDigits: cfg.Relay.CodeDigits,
		Registry:   registry,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	srv, err := web.NewServer(web.Config{
		Manager:   manager,
		DecksFile: cfg.Decks.File,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, addr)
}
