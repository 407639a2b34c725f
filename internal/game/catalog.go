package game

import (
	"embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/cards.yaml data/decks.yaml
var dataFS embed.FS

// CatalogFile represents the top-level YAML structure of a card catalog.
type CatalogFile struct {
	Cards []*Card `yaml:"cards"`
}

// Catalog is the read-only set of card definitions, keyed by card ID.
type Catalog struct {
	cards map[string]*Card
	order []string
}

// NewCatalog validates definitions and indexes them by ID.
func NewCatalog(cards []*Card) (*Catalog, error) {
	c := &Catalog{cards: make(map[string]*Card, len(cards))}
	for _, card := range cards {
		if err := validateCard(card); err != nil {
			return nil, err
		}
		if _, dup := c.cards[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", card.ID)
		}
		c.cards[card.ID] = card
		c.order = append(c.order, card.ID)
	}
	return c, nil
}

func validateCard(c *Card) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("card without id")
	}
	if c.Name == "" {
		return fmt.Errorf("card %q: missing name", c.ID)
	}
	if c.Cost < 0 {
		return fmt.Errorf("card %q: negative cost %d", c.ID, c.Cost)
	}
	switch c.Rarity {
	case RarityCommon, RarityUncommon, RarityRare:
	default:
		return fmt.Errorf("card %q: unknown rarity %q", c.ID, c.Rarity)
	}
	switch c.Type {
	case CardTypeCreature:
		if c.Attack < 0 || c.Health <= 0 {
			return fmt.Errorf("card %q: creature needs attack >= 0 and health > 0", c.ID)
		}
	case CardTypeSpell:
		if c.Spell != SpellDamage && c.Spell != SpellHeal {
			return fmt.Errorf("card %q: unknown spell kind %q", c.ID, c.Spell)
		}
		if c.Amount <= 0 {
			return fmt.Errorf("card %q: spell amount must be positive", c.ID)
		}
	case CardTypeSupport:
	default:
		return fmt.Errorf("card %q: unknown type %q", c.ID, c.Type)
	}
	return nil
}

// ParseCatalog parses catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	return NewCatalog(cf.Cards)
}

// LoadCatalog reads a catalog YAML file from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	data, err := dataFS.ReadFile("data/cards.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return ParseCatalog(data)
})

// DefaultCatalog returns the built-in card catalog.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// Lookup returns the definition for a card ID.
func (c *Catalog) Lookup(id string) (*Card, error) {
	card, ok := c.cards[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	return card, nil
}

// Name returns the display name for a card ID, falling back to the ID.
func (c *Catalog) Name(id string) string {
	if card, ok := c.cards[id]; ok {
		return card.Name
	}
	return id
}

// IDs returns all card IDs in catalog order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// ByRarity returns the IDs of all cards with the given rarity, in catalog order.
func (c *Catalog) ByRarity(r Rarity) []string {
	var ids []string
	for _, id := range c.order {
		if c.cards[id].Rarity == r {
			ids = append(ids, id)
		}
	}
	return ids
}

// Len returns the number of card definitions.
func (c *Catalog) Len() int {
	return len(c.order)
}
