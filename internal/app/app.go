package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/peterkuimelis/tcglive/internal/config"
	"github.com/peterkuimelis/tcglive/internal/game"
	"github.com/peterkuimelis/tcglive/internal/log"
	"github.com/peterkuimelis/tcglive/internal/session"
)

// App wires the catalog, the deck lists and the game sessions shared by
// every transport.
type App struct {
	Catalog *game.Catalog
	Decks   game.DeckFile
	Manager *session.Manager

	streamerDeck []string
	viewersDeck  []string
	first        game.Role
	seed         int64
	events       io.Writer
}

// New loads the catalog and decks named by cfg. When events is non-nil every
// game writes its event log there, one line per event prefixed by game ID.
func New(cfg config.Config, logger *slog.Logger, events io.Writer) (*App, error) {
	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	decks, err := loadDecks(cfg.DecksFile)
	if err != nil {
		return nil, err
	}
	streamer, err := decks.DeckByName(cfg.StreamerDeck, cat)
	if err != nil {
		return nil, fmt.Errorf("streamer deck: %w", err)
	}
	viewers, err := decks.DeckByName(cfg.ViewersDeck, cat)
	if err != nil {
		return nil, fmt.Errorf("viewers deck: %w", err)
	}

	a := &App{
		Catalog:      cat,
		Decks:        decks,
		streamerDeck: streamer,
		viewersDeck:  viewers,
		first:        cfg.First(),
		seed:         cfg.Seed,
		events:       events,
	}
	a.Manager = session.NewManager(a.NewEngine, logger)
	logger.Info("catalog loaded", "cards", cat.Len(), "decks", len(decks.Decks),
		"streamer_deck", cfg.StreamerDeck, "viewers_deck", cfg.ViewersDeck)
	return a, nil
}

// NewEngine starts a fresh game with the configured decks. It is the
// session manager's engine factory.
func (a *App) NewEngine(gameID string) (*game.Engine, error) {
	var logger log.EventLogger = log.NewMemoryLogger()
	if a.events != nil {
		logger = log.NewPrefixedTextLogger(a.events, "["+gameID+"] ")
	}
	return game.NewEngine(game.Config{
		Catalog:      a.Catalog,
		StreamerDeck: a.streamerDeck,
		ViewersDeck:  a.viewersDeck,
		Logger:       logger,
		Seed:         a.seed,
		FirstPlayer:  a.first,
	})
}

// Close stops every running game.
func (a *App) Close() {
	a.Manager.Close()
}

func loadCatalog(path string) (*game.Catalog, error) {
	if path == "" {
		return game.DefaultCatalog()
	}
	return game.LoadCatalog(path)
}

func loadDecks(path string) (game.DeckFile, error) {
	if path == "" {
		return game.DefaultDecks()
	}
	return game.LoadDeckFile(path)
}
