package game

import "slices"

// PlayerSnapshot is the public view of a hero.
type PlayerSnapshot struct {
	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`
	Mana      int `json:"mana"`
	MaxMana   int `json:"maxMana"`
	Shield    int `json:"shield"`
}

// CreatureSnapshot is the public view of a board creature.
type CreatureSnapshot struct {
	InstanceID    int    `json:"instanceId"`
	CardID        string `json:"cardId"`
	Attack        int    `json:"attack"`
	Health        int    `json:"health"`
	CurrentHealth int    `json:"currentHealth"`
	CanAttack     bool   `json:"canAttack"`
}

// Snapshot is a detached copy of the game state for presentation adapters.
// Cards are referenced by ID only; adapters resolve display data through the
// catalog.
type Snapshot struct {
	Players       map[Role]PlayerSnapshot     `json:"players"`
	Turn          int                         `json:"turn"`
	CurrentPlayer Role                        `json:"currentPlayer"`
	Phase         Phase                       `json:"phase"`
	Board         map[Role][]CreatureSnapshot `json:"board"`
	Hands         map[Role][]string           `json:"hands"`
	Decks         map[Role][]string           `json:"decks"`
	Over          bool                        `json:"over"`
	Winner        Role                        `json:"winner,omitempty"`
	Result        string                      `json:"result,omitempty"`
}

// Snapshot copies the state. Later mutations never show through.
func (gs *GameState) Snapshot() Snapshot {
	s := Snapshot{
		Players:       make(map[Role]PlayerSnapshot, 2),
		Turn:          gs.Turn,
		CurrentPlayer: gs.CurrentPlayer,
		Phase:         gs.Phase,
		Board:         make(map[Role][]CreatureSnapshot, 2),
		Hands:         make(map[Role][]string, 2),
		Decks:         make(map[Role][]string, 2),
		Over:          gs.Over,
		Winner:        gs.Winner,
		Result:        gs.Result,
	}
	for _, p := range gs.Players {
		s.Players[p.Role] = PlayerSnapshot{
			Health:    p.Health,
			MaxHealth: p.MaxHealth,
			Mana:      p.Mana,
			MaxMana:   p.MaxMana,
			Shield:    p.Shield,
		}
		board := make([]CreatureSnapshot, 0, len(p.Board))
		for _, c := range p.Board {
			board = append(board, CreatureSnapshot{
				InstanceID:    c.ID,
				CardID:        c.Card.ID,
				Attack:        c.Attack(),
				Health:        c.Card.Health,
				CurrentHealth: c.CurrentHealth,
				CanAttack:     c.CanAttack,
			})
		}
		s.Board[p.Role] = board
		s.Hands[p.Role] = append(make([]string, 0, len(p.Hand)), p.Hand...)
		s.Decks[p.Role] = append(make([]string, 0, len(p.Deck)), p.Deck...)
	}
	return s
}

// Player returns the snapshot of one hero.
func (s Snapshot) Player(r Role) PlayerSnapshot {
	return s.Players[r]
}

// Creature finds a creature on either board by instance ID.
func (s Snapshot) Creature(id int) (CreatureSnapshot, Role, bool) {
	for _, r := range Roles {
		if i := slices.IndexFunc(s.Board[r], func(c CreatureSnapshot) bool { return c.InstanceID == id }); i >= 0 {
			return s.Board[r][i], r, true
		}
	}
	return CreatureSnapshot{}, "", false
}
