package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

const (
	MaxHealth       = 30
	StartingMana    = 1
	MaxMana         = 10
	MaxHandSize     = 10
	InitialHandSize = 3
)

// Player represents one participant's entire state.
type Player struct {
	Role      Role
	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int
	Shield    int // damage points absorbed before health

	Deck  []string // card IDs; top of deck is last element (pop from end)
	Hand  []string
	Board []*Creature
}

func newPlayer(r Role) *Player {
	return &Player{
		Role:      r,
		Health:    MaxHealth,
		MaxHealth: MaxHealth,
		Mana:      StartingMana,
		MaxMana:   StartingMana,
	}
}

// DeckCount returns the number of cards remaining in the deck.
func (p *Player) DeckCount() int {
	return len(p.Deck)
}

// HandCount returns the number of cards in hand.
func (p *Player) HandCount() int {
	return len(p.Hand)
}

// Draw removes the top card from the deck and adds it to the hand.
// Nothing changes when the deck is empty or the hand is full.
func (p *Player) Draw() (string, error) {
	if len(p.Deck) == 0 {
		return "", ErrDeckEmpty
	}
	if len(p.Hand) >= MaxHandSize {
		return "", ErrHandFull
	}
	id := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	p.Hand = append(p.Hand, id)
	return id, nil
}

// AddToHand puts a card into the hand from outside the deck.
func (p *Player) AddToHand(cardID string) error {
	if len(p.Hand) >= MaxHandSize {
		return ErrHandFull
	}
	p.Hand = append(p.Hand, cardID)
	return nil
}

// HandIndex returns the position of the first copy of cardID, or -1.
func (p *Player) HandIndex(cardID string) int {
	return slices.Index(p.Hand, cardID)
}

// RemoveFromHand removes the first copy of cardID from the hand.
func (p *Player) RemoveFromHand(cardID string) error {
	i := p.HandIndex(cardID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	p.Hand = slices.Delete(p.Hand, i, i+1)
	return nil
}

// Summon puts a fresh instance of a creature card on the board. New creatures
// have summoning sickness.
func (p *Player) Summon(card *Card, id int) *Creature {
	c := &Creature{
		Card:          card,
		ID:            id,
		Owner:         p.Role,
		CurrentHealth: card.Health,
		CanAttack:     false,
	}
	p.Board = append(p.Board, c)
	return c
}

// Creature returns the board creature with the given instance ID, or nil.
func (p *Player) Creature(id int) *Creature {
	for _, c := range p.Board {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// RemoveCreature takes a creature off the board.
func (p *Player) RemoveCreature(id int) {
	p.Board = slices.DeleteFunc(p.Board, func(c *Creature) bool { return c.ID == id })
}

// Taunts returns the creatures that must be attacked first.
func (p *Player) Taunts() []*Creature {
	var result []*Creature
	for _, c := range p.Board {
		if c.Card.HasKeyword(KeywordTaunt) {
			result = append(result, c)
		}
	}
	return result
}

// GainMaxMana raises max mana without passing the ceiling and returns the
// amount actually gained.
func (p *Player) GainMaxMana(n int) int {
	before := p.MaxMana
	p.MaxMana = min(p.MaxMana+n, MaxMana)
	return p.MaxMana - before
}

// GainMana refills mana up to max mana and returns the amount gained.
func (p *Player) GainMana(n int) int {
	before := p.Mana
	p.Mana = min(p.Mana+n, p.MaxMana)
	return p.Mana - before
}

// TakeDamage applies damage to the hero, draining the shield first.
func (p *Player) TakeDamage(n int) (absorbed, dealt int) {
	absorbed = min(p.Shield, n)
	p.Shield -= absorbed
	dealt = min(n-absorbed, p.Health)
	p.Health -= dealt
	return absorbed, dealt
}

// Heal restores hero health up to the maximum and returns the amount healed.
func (p *Player) Heal(n int) int {
	before := p.Health
	p.Health = min(p.Health+n, p.MaxHealth)
	return p.Health - before
}

// ShuffleDeck randomizes the deck order.
func (p *Player) ShuffleDeck(rng *rand.Rand) {
	Shuffle(p.Deck, rng)
}

// Shuffle permutes a deck in place with an unbiased Fisher-Yates shuffle.
func Shuffle(deck []string, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// --- GameState ---

// GameState holds the complete state of a game.
type GameState struct {
	Players       [2]*Player
	Turn          int // 1-based turn counter
	CurrentPlayer Role
	Phase         Phase

	// ID counter for creature instances
	nextID int

	// Game result
	Over   bool
	Winner Role // empty on a draw or while the game runs
	Result string
}

// NewGameState creates a fresh game state with first to act on turn 1.
func NewGameState(first Role) *GameState {
	return &GameState{
		Players:       [2]*Player{newPlayer(RoleStreamer), newPlayer(RoleViewers)},
		Turn:          1,
		CurrentPlayer: first,
		Phase:         PhaseMain,
	}
}

// NextID generates a unique creature instance ID.
func (gs *GameState) NextID() int {
	gs.nextID++
	return gs.nextID
}

// Player returns the state for a role, or nil for an unknown role.
func (gs *GameState) Player(r Role) *Player {
	if !r.Valid() {
		return nil
	}
	return gs.Players[r.index()]
}

// Current returns the Player whose turn it is.
func (gs *GameState) Current() *Player {
	return gs.Player(gs.CurrentPlayer)
}

// FindCreature looks up a creature on either board.
func (gs *GameState) FindCreature(id int) (*Creature, *Player) {
	for _, p := range gs.Players {
		if c := p.Creature(id); c != nil {
			return c, p
		}
	}
	return nil, nil
}

// CheckWinCondition checks if either hero's health has hit 0.
// Returns true if the game is over.
func (gs *GameState) CheckWinCondition() bool {
	if gs.Over {
		return true
	}
	streamerDead := gs.Players[0].Health <= 0
	viewersDead := gs.Players[1].Health <= 0

	switch {
	case streamerDead && viewersDead:
		gs.Over = true
		gs.Winner = ""
		gs.Result = "Draw: both heroes reached 0 health"
	case streamerDead:
		gs.Over = true
		gs.Winner = RoleViewers
		gs.Result = "viewers win: streamer's health reached 0"
	case viewersDead:
		gs.Over = true
		gs.Winner = RoleStreamer
		gs.Result = "streamer wins: viewers' health reached 0"
	}
	return gs.Over
}
