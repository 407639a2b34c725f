package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/peterkuimelis/tcglive/internal/game"
)

// Config holds server configuration. Every field can be set from the
// environment and overridden by a flag.
type Config struct {
	HTTPAddr       string   `env:"TCGLIVE_HTTP_ADDR"       envDefault:":8080"`
	TCPAddr        string   `env:"TCGLIVE_TCP_ADDR"        envDefault:":9000"`
	LogLevel       string   `env:"TCGLIVE_LOG_LEVEL"       envDefault:"info"`
	CatalogFile    string   `env:"TCGLIVE_CATALOG"`
	DecksFile      string   `env:"TCGLIVE_DECKS"`
	StreamerDeck   string   `env:"TCGLIVE_STREAMER_DECK"   envDefault:"Starter"`
	ViewersDeck    string   `env:"TCGLIVE_VIEWERS_DECK"    envDefault:"Starter"`
	FirstPlayer    string   `env:"TCGLIVE_FIRST_PLAYER"    envDefault:"viewers"`
	Seed           int64    `env:"TCGLIVE_SEED"`
	AllowedOrigins []string `env:"TCGLIVE_ALLOWED_ORIGINS" envSeparator:","`
	OTelEndpoint   string   `env:"TCGLIVE_OTEL_ENDPOINT"`
	EventLog       bool     `env:"TCGLIVE_EVENT_LOG"`
}

// Parse loads the environment, then applies flags from args.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	origins := strings.Join(cfg.AllowedOrigins, ",")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP and WebSocket listen address (empty disables)")
	fs.StringVar(&cfg.TCPAddr, "tcp-addr", cfg.TCPAddr, "TCP listen address for terminal clients (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "card catalog YAML (default: built in)")
	fs.StringVar(&cfg.DecksFile, "decks", cfg.DecksFile, "decks YAML (default: built in)")
	fs.StringVar(&cfg.StreamerDeck, "streamer-deck", cfg.StreamerDeck, "deck name for the streamer")
	fs.StringVar(&cfg.ViewersDeck, "viewers-deck", cfg.ViewersDeck, "deck name for the viewers")
	fs.StringVar(&cfg.FirstPlayer, "first", cfg.FirstPlayer, "who takes the first turn: streamer or viewers")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "shuffle seed (0 picks a random seed per game)")
	fs.StringVar(&origins, "allowed-origins", origins, "comma-separated WebSocket origin patterns")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint (empty disables tracing)")
	fs.BoolVar(&cfg.EventLog, "event-log", cfg.EventLog, "write every game event to stderr")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.AllowedOrigins = splitList(origins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := game.ParseRole(c.FirstPlayer); err != nil {
		return fmt.Errorf("invalid first player %q: %w", c.FirstPlayer, err)
	}
	if c.HTTPAddr == "" && c.TCPAddr == "" {
		return errors.New("at least one of the HTTP and TCP addresses is required")
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// First returns the configured first player.
func (c Config) First() game.Role {
	r, _ := game.ParseRole(c.FirstPlayer)
	return r
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
