package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/peterkuimelis/tcglive/internal/log"
)

// fillerCard pads test decks below the cards a test cares about.
const fillerCard = "lightning_bolt"

// makePaddedDeck creates a deck with specified cards on top (drawn first) and filler to reach a minimum size.
// topCards are ordered so that index 0 is drawn first.
func makePaddedDeck(topCards []string, minSize int) []string {
	deck := make([]string, 0, minSize)

	// Filler goes at bottom (drawn last)
	for i := 0; i < minSize-len(topCards); i++ {
		deck = append(deck, fillerCard)
	}

	// Top cards go at end of slice (drawn first); reverse order so index 0 is drawn first
	for i := len(topCards) - 1; i >= 0; i-- {
		deck = append(deck, topCards[i])
	}

	return deck
}

// newTestEngine builds an unshuffled engine. Both decks are 20 filler cards
// unless the config names them.
func newTestEngine(t *testing.T, cfg Config) (*Engine, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	cfg.NoShuffle = true // deterministic tests
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.StreamerDeck == nil {
		cfg.StreamerDeck = makePaddedDeck(nil, 20)
	}
	if cfg.ViewersDeck == nil {
		cfg.ViewersDeck = makePaddedDeck(nil, 20)
	}
	if cfg.FirstPlayer == "" {
		cfg.FirstPlayer = RoleStreamer
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, logger
}

// setHand replaces a player's hand.
func setHand(e *Engine, r Role, ids ...string) {
	e.State.Player(r).Hand = append([]string(nil), ids...)
}

// setMana sets current and max mana.
func setMana(e *Engine, r Role, mana, maxMana int) {
	p := e.State.Player(r)
	p.Mana = mana
	p.MaxMana = maxMana
}

// summonReady puts a creature on the board that is able to attack.
func summonReady(t *testing.T, e *Engine, r Role, cardID string) *Creature {
	t.Helper()
	card, err := e.Catalog.Lookup(cardID)
	if err != nil {
		t.Fatalf("lookup %s: %v", cardID, err)
	}
	c := e.State.Player(r).Summon(card, e.State.NextID())
	c.CanAttack = true
	return c
}

func stateBytes(t *testing.T, e *Engine) []byte {
	t.Helper()
	b, err := json.Marshal(e.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return b
}

// mustApply applies an intent that is expected to succeed.
func mustApply(t *testing.T, e *Engine, in Intent) []log.GameEvent {
	t.Helper()
	events, err := e.Apply(in)
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(e.Logger.Events()))
		t.Fatalf("%s: unexpected error: %v", in, err)
	}
	return events
}

// mustReject applies an intent that must fail with want and leave the state
// byte-for-byte unchanged.
func mustReject(t *testing.T, e *Engine, in Intent, want error) {
	t.Helper()
	before := stateBytes(t, e)
	events, err := e.Apply(in)
	if !errors.Is(err, want) {
		t.Fatalf("%s: expected %v, got %v", in, want, err)
	}
	if len(events) != 0 {
		t.Errorf("%s: rejected intent returned %d events", in, len(events))
	}
	if after := stateBytes(t, e); string(after) != string(before) {
		t.Errorf("%s: state changed on rejection\nbefore: %s\nafter:  %s", in, before, after)
	}
}

func countOf(ids []string, id string) int {
	n := 0
	for _, x := range ids {
		if x == id {
			n++
		}
	}
	return n
}

func hasEvent(events []log.GameEvent, t log.EventType) bool {
	return len(log.OfType(events, t)) > 0
}
