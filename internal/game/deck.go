package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// ParseDeckFile parses deck YAML.
func ParseDeckFile(data []byte) (DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	return df, nil
}

// LoadDeckFile reads a deck YAML file from disk.
func LoadDeckFile(path string) (DeckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DeckFile{}, err
	}
	return ParseDeckFile(data)
}

// DefaultDecks returns the built-in deck lists.
func DefaultDecks() (DeckFile, error) {
	data, err := dataFS.ReadFile("data/decks.yaml")
	if err != nil {
		return DeckFile{}, fmt.Errorf("read embedded decks: %w", err)
	}
	return ParseDeckFile(data)
}

// Expand turns a deck list into card IDs, checking every ID against the catalog.
func (e DeckEntry) Expand(cat *Catalog) ([]string, error) {
	var ids []string
	for _, entry := range e.Cards {
		if _, err := cat.Lookup(entry.ID); err != nil {
			return nil, fmt.Errorf("deck %q: %w", e.Name, err)
		}
		for i := 0; i < entry.Count; i++ {
			ids = append(ids, entry.ID)
		}
	}
	return ids, nil
}

// DeckByName returns the expanded deck with the given name.
func (df DeckFile) DeckByName(name string, cat *Catalog) ([]string, error) {
	for _, d := range df.Decks {
		if d.Name == name {
			return d.Expand(cat)
		}
	}
	return nil, fmt.Errorf("deck %q not found", name)
}

// DeckByNumber returns the Nth deck (1-indexed) from the deck file.
func (df DeckFile) DeckByNumber(n int, cat *Catalog) (string, []string, error) {
	if n < 1 || n > len(df.Decks) {
		return "", nil, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	d := df.Decks[n-1]
	ids, err := d.Expand(cat)
	if err != nil {
		return "", nil, err
	}
	return d.Name, ids, nil
}
