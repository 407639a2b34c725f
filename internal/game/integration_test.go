package game

import (
	"io"
	"os"
	"testing"

	"github.com/peterkuimelis/tcglive/internal/log"
)

// greedyTurn plays one turn for the current player: every affordable card in
// hand order, then every ready creature at its first legal target, then
// EndTurn. A rose arrives from the audience every third turn.
func greedyTurn(t *testing.T, e *Engine) {
	t.Helper()
	gs := e.State
	p := gs.Current()

	if gs.Turn%3 == 0 {
		mustApply(t, e, GiftIntent("rose", "lurker"))
	}

	for played := true; played && !gs.Over; {
		played = false
		for _, id := range p.Hand {
			card, _ := e.Catalog.Lookup(id)
			if card.Cost <= p.Mana {
				mustApply(t, e, PlayCard(p.Role, id))
				played = true
				break
			}
		}
	}

	for _, c := range append([]*Creature(nil), p.Board...) {
		if gs.Over {
			return
		}
		if !c.CanAttack || c.Dead() || p.Creature(c.ID) == nil {
			continue
		}
		targets, err := e.AttackTargets(p.Role, c.ID)
		if err != nil {
			t.Fatalf("AttackTargets(%s): %v", c, err)
		}
		mustApply(t, e, AttackWith(p.Role, c.ID, targets[0]))
	}
	if !gs.Over {
		mustApply(t, e, EndTurn(p.Role))
	}
}

func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()
	for _, p := range e.State.Players {
		if p.Health < 0 || p.Health > p.MaxHealth {
			t.Fatalf("T%d %s: health %d out of range", e.State.Turn, p.Role, p.Health)
		}
		if p.Mana < 0 || p.Mana > p.MaxMana || p.MaxMana > MaxMana {
			t.Fatalf("T%d %s: mana %d/%d out of range", e.State.Turn, p.Role, p.Mana, p.MaxMana)
		}
		if len(p.Hand) > MaxHandSize {
			t.Fatalf("T%d %s: hand size %d", e.State.Turn, p.Role, len(p.Hand))
		}
		for _, c := range p.Board {
			if c.Dead() {
				t.Fatalf("T%d %s: dead creature %s left on board", e.State.Turn, p.Role, c)
			}
		}
	}
}

func exhausted(gs *GameState) bool {
	for _, p := range gs.Players {
		if len(p.Deck) > 0 || len(p.Hand) > 0 || len(p.Board) > 0 {
			return false
		}
	}
	return true
}

// TestTranscriptStarterVsBurn plays a seeded Starter vs Burn game to the end
// with a greedy script for both sides, checking the state after every turn.
// Run with -v to see the full event log.
func TestTranscriptStarterVsBurn(t *testing.T) {
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	decks, err := DefaultDecks()
	if err != nil {
		t.Fatal(err)
	}
	starter, err := decks.DeckByName("Starter", cat)
	if err != nil {
		t.Fatal(err)
	}
	burn, err := decks.DeckByName("Burn", cat)
	if err != nil {
		t.Fatal(err)
	}

	var w io.Writer = io.Discard
	if testing.Verbose() {
		w = os.Stdout
	}
	logger := log.NewTextLogger(w)
	e, err := NewEngine(Config{
		Catalog:      cat,
		StreamerDeck: starter,
		ViewersDeck:  burn,
		Logger:       logger,
		Seed:         2024,
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 500 && !e.State.Over && !exhausted(e.State); i++ {
		greedyTurn(t, e)
		checkInvariants(t, e)
	}

	events := logger.Events()
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("event %d: seq %d after %d", i, events[i].Seq, events[i-1].Seq)
		}
	}
	if !hasEvent(events, log.EventShuffle) || !hasEvent(events, log.EventNewTurn) {
		t.Errorf("transcript is missing shuffle or turn events")
	}

	if e.State.Over {
		wins := len(logger.EventsOfType(log.EventWin)) + len(logger.EventsOfType(log.EventDraw_Tie))
		if wins != 1 {
			t.Errorf("expected exactly one game-over event, got %d", wins)
		}
		mustReject(t, e, EndTurn(e.State.CurrentPlayer), ErrGameOver)
		t.Logf("%s after %d turns", e.State.Result, e.State.Turn)
	} else {
		t.Logf("both sides ran out of cards on turn %d", e.State.Turn)
	}
}
