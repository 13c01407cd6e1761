package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ELEMENTA_RELAY_ADDR.
const EnvPrefix = "ELEMENTA"

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	Game  GameConfig  `mapstructure:"game"`
	AI    AIConfig    `mapstructure:"ai"`
	Relay RelayConfig `mapstructure:"relay"`
	Redis RedisConfig `mapstructure:"redis"`
	Decks DecksConfig `mapstructure:"decks"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type GameConfig struct {
	TurnTimeout       time.Duration `mapstructure:"turn_timeout"`
	PresentationDelay time.Duration `mapstructure:"presentation_delay"`
	MaxTurns          int           `mapstructure:"max_turns"`
	HandSize          int           `mapstructure:"hand_size"`
}

type AIConfig struct {
	AttackThreshold int `mapstructure:"attack_threshold"`
}

type RelayConfig struct {
	Addr       string        `mapstructure:"addr"`
	URL        string        `mapstructure:"url"`
	CodeDigits int           `mapstructure:"code_digits"`
	CodeTTL    time.Duration `mapstructure:"code_ttl"` // Redis reservation lifetime
}

// RedisConfig enables the shared room code registry when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DecksConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("game.turn_timeout", 12*time.Second)
	v.SetDefault("game.presentation_delay", time.Duration(0))
	v.SetDefault("game.max_turns", 400)
	v.SetDefault("game.hand_size", 4)
	v.SetDefault("ai.attack_threshold", 5)
	v.SetDefault("relay.addr", ":8080")
	v.SetDefault("relay.url", "ws://localhost:8080/ws")
	v.SetDefault("relay.code_digits", 6)
	v.SetDefault("relay.code_ttl", 24*time.Hour)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("decks.file", "")
}

// Load reads configuration from configPath (optional), then applies
// ELEMENTA_* environment overrides on top of the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Game.HandSize <= 0 {
		errs = append(errs, fmt.Errorf("game.hand_size must be positive, got %d", c.Game.HandSize))
	}
	if c.Game.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("game.max_turns must be positive, got %d", c.Game.MaxTurns))
	}
	if c.Relay.CodeDigits < 1 || c.Relay.CodeDigits > 9 {
		errs = append(errs, fmt.Errorf("relay.code_digits must be 1-9, got %d", c.Relay.CodeDigits))
	}
	if _, err := c.App.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses the configured log level.
func (a AppConfig) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(a.LogLevel)); err != nil {
		return 0, fmt.Errorf("app.log_level: %w", err)
	}
	return lvl, nil
}
