package game

import (
	"fmt"
	"slices"
)

// --- Enums ---

// Role identifies one side of a match.
type Role string

const (
	RoleStreamer Role = "streamer"
	RoleViewers  Role = "viewers"
)

// Roles lists both participants in seat order.
var Roles = [2]Role{RoleStreamer, RoleViewers}

// Valid reports whether r is one of the two participants.
func (r Role) Valid() bool {
	return r == RoleStreamer || r == RoleViewers
}

// Opponent returns the other participant.
func (r Role) Opponent() Role {
	if r == RoleStreamer {
		return RoleViewers
	}
	return RoleStreamer
}

func (r Role) index() int {
	if r == RoleStreamer {
		return 0
	}
	return 1
}

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

type Phase string

const PhaseMain Phase = "main"

type CardType string

const (
	CardTypeCreature CardType = "creature"
	CardTypeSpell    CardType = "spell"
	CardTypeSupport  CardType = "support"
)

type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
)

// Keyword is a creature ability printed on the card.
type Keyword string

const (
	KeywordTaunt  Keyword = "taunt"  // enemies must attack this first
	KeywordFlying Keyword = "flying" // ignores taunt when attacking
	KeywordQuick  Keyword = "quick"  // flavor only; summoned creatures still wait a turn
)

// SpellKind selects how a spell's amount is applied to its target.
type SpellKind string

const (
	SpellDamage SpellKind = "damage"
	SpellHeal   SpellKind = "heal"
)

// --- Card definition (static, from the catalog) ---

type Card struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Type     CardType  `yaml:"type"`
	Cost     int       `yaml:"cost"`
	Attack   int       `yaml:"attack,omitempty"`
	Health   int       `yaml:"health,omitempty"`
	Effect   string    `yaml:"effect"`
	Rarity   Rarity    `yaml:"rarity"`
	Emoji    string    `yaml:"emoji,omitempty"`
	Keywords []Keyword `yaml:"keywords,omitempty"`
	Spell    SpellKind `yaml:"spell,omitempty"`
	Amount   int       `yaml:"amount,omitempty"`
}

func (c *Card) String() string {
	return c.Name
}

// HasKeyword reports whether the card carries the given keyword.
func (c *Card) HasKeyword(k Keyword) bool {
	return slices.Contains(c.Keywords, k)
}

// --- Creature (runtime instance on a board) ---

type Creature struct {
	Card          *Card
	ID            int // unique instance ID within a game
	Owner         Role
	CurrentHealth int
	CanAttack     bool
}

func (c *Creature) String() string {
	if c == nil {
		return "(empty)"
	}
	return fmt.Sprintf("%s #%d (%d/%d)", c.Card.Name, c.ID, c.Card.Attack, c.CurrentHealth)
}

// Attack returns the creature's attack value.
func (c *Creature) Attack() int {
	return c.Card.Attack
}

// Dead reports whether the creature must leave the board.
func (c *Creature) Dead() bool {
	return c.CurrentHealth <= 0
}

// --- Targets ---

type TargetKind string

const (
	TargetNone     TargetKind = ""
	TargetHero     TargetKind = "hero"
	TargetCreature TargetKind = "creature"
)

// Target names a single hero or creature for spells and attacks.
type Target struct {
	Kind     TargetKind `json:"kind,omitempty"`
	Player   Role       `json:"player,omitempty"`   // hero owner
	Creature int        `json:"creature,omitempty"` // creature instance ID
}

// HeroTarget targets a participant's hero.
func HeroTarget(r Role) Target {
	return Target{Kind: TargetHero, Player: r}
}

// CreatureTarget targets a creature by instance ID.
func CreatureTarget(id int) Target {
	return Target{Kind: TargetCreature, Creature: id}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetHero:
		return string(t.Player)
	case TargetCreature:
		return fmt.Sprintf("creature #%d", t.Creature)
	default:
		return "no target"
	}
}

// --- Intent types ---

type IntentType int

const (
	IntentPlayCard IntentType = iota
	IntentDrawCard
	IntentEndTurn
	IntentGift
	IntentAttack
)

func (t IntentType) String() string {
	switch t {
	case IntentPlayCard:
		return "Play Card"
	case IntentDrawCard:
		return "Draw Card"
	case IntentEndTurn:
		return "End Turn"
	case IntentGift:
		return "Gift"
	case IntentAttack:
		return "Attack"
	default:
		return "Unknown"
	}
}

// Intent is a requested state transition submitted by a participant or an
// external trigger.
type Intent struct {
	Type     IntentType
	Player   Role
	CardID   string // PlayCard
	Target   Target // PlayCard (spells), Attack
	Attacker int    // Attack: creature instance ID
	Gift     string // Gift
	Viewer   string // Gift
}

func (i Intent) String() string {
	switch i.Type {
	case IntentPlayCard:
		return fmt.Sprintf("%s plays %s", i.Player, i.CardID)
	case IntentAttack:
		return fmt.Sprintf("%s attacks %s with #%d", i.Player, i.Target, i.Attacker)
	case IntentGift:
		return fmt.Sprintf("%s sends %s", i.Viewer, i.Gift)
	default:
		return fmt.Sprintf("%s: %s", i.Player, i.Type)
	}
}

// PlayCard builds a PlayCard intent without an explicit target.
func PlayCard(player Role, cardID string) Intent {
	return Intent{Type: IntentPlayCard, Player: player, CardID: cardID}
}

// PlayCardAt builds a PlayCard intent aimed at a target.
func PlayCardAt(player Role, cardID string, target Target) Intent {
	return Intent{Type: IntentPlayCard, Player: player, CardID: cardID, Target: target}
}

func DrawCard(player Role) Intent {
	return Intent{Type: IntentDrawCard, Player: player}
}

func EndTurn(player Role) Intent {
	return Intent{Type: IntentEndTurn, Player: player}
}

// GiftIntent builds an ApplyGiftEffect intent. Gifts always act for the viewers.
func GiftIntent(gift, viewer string) Intent {
	return Intent{Type: IntentGift, Player: RoleViewers, Gift: gift, Viewer: viewer}
}

func AttackWith(player Role, attacker int, target Target) Intent {
	return Intent{Type: IntentAttack, Player: player, Attacker: attacker, Target: target}
}
