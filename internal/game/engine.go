package game

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/peterkuimelis/tcglive/internal/log"
)

// Config holds configuration for creating a new game.
type Config struct {
	Catalog      *Catalog // nil for the built-in catalog
	StreamerDeck []string // card IDs; the last element is the top of the deck
	ViewersDeck  []string
	Logger       log.EventLogger
	Seed         int64 // RNG seed (0 for random)
	NoShuffle    bool  // skip deck shuffle (for deterministic tests)
	FirstPlayer  Role  // who acts on turn 1 (default viewers)
}

// Engine is the single authority over one game's state. It is not safe for
// concurrent use; callers serialize intents (see internal/session).
type Engine struct {
	State   *GameState
	Catalog *Catalog
	Logger  log.EventLogger
	rng     *rand.Rand
	seq     int

	// events emitted by the intent being applied
	pending []log.GameEvent
}

// NewEngine validates both decks against the catalog, shuffles them and deals
// the opening hands.
func NewEngine(cfg Config) (*Engine, error) {
	cat := cfg.Catalog
	if cat == nil {
		var err error
		if cat, err = DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	first := cfg.FirstPlayer
	if first == "" {
		first = RoleViewers
	}
	if !first.Valid() {
		return nil, fmt.Errorf("first player: %w: %q", ErrUnknownRole, first)
	}
	decks := [2][]string{cfg.StreamerDeck, cfg.ViewersDeck}
	for i, deck := range decks {
		for _, id := range deck {
			if _, err := cat.Lookup(id); err != nil {
				return nil, fmt.Errorf("%s deck: %w", Roles[i], err)
			}
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = rand.Uint64()
	}

	e := &Engine{
		State:   NewGameState(first),
		Catalog: cat,
		Logger:  logger,
		rng:     rand.New(rand.NewPCG(seed, seed)),
	}
	gs := e.State
	for i, p := range gs.Players {
		p.Deck = slices.Clone(decks[i])
	}

	e.emit(log.NewGameStartEvent(gs.Turn, string(gs.Phase), string(first)))
	if !cfg.NoShuffle {
		for _, p := range gs.Players {
			p.ShuffleDeck(e.rng)
			e.emit(log.NewShuffleEvent(gs.Turn, string(gs.Phase), string(p.Role)))
		}
	}

	// Opening hands: short decks deal what they have.
	for i := 0; i < InitialHandSize; i++ {
		for _, p := range gs.Players {
			if id, err := p.Draw(); err == nil {
				e.emit(log.NewDrawEvent(gs.Turn, string(gs.Phase), string(p.Role), cat.Name(id)))
			}
		}
	}
	e.pending = nil
	return e, nil
}

// Apply validates an intent and, if it is legal, applies it. It returns the
// events the intent produced. On error the state is unchanged.
func (e *Engine) Apply(in Intent) ([]log.GameEvent, error) {
	if e.State.Over {
		return nil, ErrGameOver
	}
	e.pending = nil

	var err error
	switch in.Type {
	case IntentPlayCard:
		err = e.playCard(in)
	case IntentDrawCard:
		err = e.drawCard(in)
	case IntentEndTurn:
		err = e.endTurn(in)
	case IntentGift:
		err = e.applyGift(in)
	case IntentAttack:
		err = e.attack(in)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownIntent, in.Type)
	}
	events := e.pending
	e.pending = nil
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Snapshot returns a read-only copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	return e.State.Snapshot()
}

// checkTurn rejects intents from the participant who is not acting.
func (e *Engine) checkTurn(r Role) error {
	if !r.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}
	if r != e.State.CurrentPlayer {
		return fmt.Errorf("%w: it is %s's turn", ErrNotYourTurn, e.State.CurrentPlayer)
	}
	return nil
}

func (e *Engine) playCard(in Intent) error {
	gs := e.State
	if err := e.checkTurn(in.Player); err != nil {
		return err
	}
	p := gs.Player(in.Player)
	card, err := e.Catalog.Lookup(in.CardID)
	if err != nil {
		return err
	}
	if p.HandIndex(card.ID) < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card.ID)
	}
	if p.Mana < card.Cost {
		return fmt.Errorf("%w: %s costs %d, %s has %d", ErrInsufficientMana, card.Name, card.Cost, p.Role, p.Mana)
	}
	var target Target
	if card.Type == CardTypeSpell {
		if target, err = e.spellTarget(p, card, in.Target); err != nil {
			return err
		}
	}

	// Validation done; everything below mutates.
	p.Mana -= card.Cost
	if err := p.RemoveFromHand(card.ID); err != nil {
		return err
	}
	e.emit(log.NewCardPlayedEvent(gs.Turn, string(gs.Phase), string(p.Role), card.Name, card.Cost, p.Mana))

	switch card.Type {
	case CardTypeCreature:
		c := p.Summon(card, gs.NextID())
		e.emit(log.NewSummonEvent(gs.Turn, string(gs.Phase), string(p.Role), card.Name, c.ID, c.Attack(), c.CurrentHealth))
	case CardTypeSpell:
		e.castSpell(p, card, target)
	case CardTypeSupport:
		e.applySupport(p, card)
	}
	e.checkWin()
	return nil
}

func (e *Engine) drawCard(in Intent) error {
	gs := e.State
	if err := e.checkTurn(in.Player); err != nil {
		return err
	}
	p := gs.Player(in.Player)
	id, err := p.Draw()
	if err != nil {
		// Soft failure: reported as an event, never as a rejection.
		e.emit(log.NewDrawFailedEvent(gs.Turn, string(gs.Phase), string(p.Role), err.Error()))
		return nil
	}
	e.emit(log.NewDrawEvent(gs.Turn, string(gs.Phase), string(p.Role), e.Catalog.Name(id)))
	return nil
}

func (e *Engine) endTurn(in Intent) error {
	gs := e.State
	if err := e.checkTurn(in.Player); err != nil {
		return err
	}

	gs.CurrentPlayer = gs.CurrentPlayer.Opponent()
	gs.Turn++
	p := gs.Current()
	p.GainMaxMana(1)
	p.Mana = p.MaxMana
	for _, c := range p.Board {
		c.CanAttack = true
	}
	e.emit(log.NewTurnEvent(gs.Turn, string(p.Role), p.Mana, p.MaxMana))

	if id, err := p.Draw(); err == nil {
		e.emit(log.NewDrawEvent(gs.Turn, string(gs.Phase), string(p.Role), e.Catalog.Name(id)))
	}
	return nil
}

// checkWin ends the game once a hero has no health left.
func (e *Engine) checkWin() {
	gs := e.State
	if !gs.CheckWinCondition() {
		return
	}
	if gs.Winner == "" {
		e.emit(log.NewTieEvent(gs.Turn, string(gs.Phase), gs.Result))
		return
	}
	e.emit(log.NewWinEvent(gs.Turn, string(gs.Phase), string(gs.Winner), gs.Result))
}

// emit logs a game event and records it for the intent being applied.
func (e *Engine) emit(event log.GameEvent) {
	e.seq++
	event.Seq = e.seq
	e.Logger.Log(event)
	e.pending = append(e.pending, event)
}
