package web

import (
	"github.com/peterkuimelis/tcglive/internal/game"
	tcgnet "github.com/peterkuimelis/tcglive/internal/net"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Cost     int      `json:"cost"`
	Attack   int      `json:"attack,omitempty"`
	Health   int      `json:"health,omitempty"`
	Effect   string   `json:"effect,omitempty"`
	Rarity   string   `json:"rarity"`
	Emoji    string   `json:"emoji,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number int      `json:"number"`
	Name   string   `json:"name"`
	Size   int      `json:"size"`
	Cards  []string `json:"cards"` // unique card IDs in list order
}

// CreateGameRequest is the body of POST /api/games. An empty GameID gets a
// generated one.
type CreateGameRequest struct {
	GameID string `json:"game_id"`
}

// GameResponse carries a game's ID and its current state.
type GameResponse struct {
	GameID string        `json:"game_id"`
	State  game.Snapshot `json:"state"`
}

// GiftRequest is the body of POST /api/games/:id/gifts, the hook a live
// stream integration calls for each gift.
type GiftRequest struct {
	Gift   string `json:"gift"`
	Viewer string `json:"viewer"`
}

// GiftResponse lists the notifications the gift produced; it is empty for
// gifts that have no effect.
type GiftResponse struct {
	GameID        string                 `json:"game_id"`
	Notifications []tcgnet.ServerMessage `json:"notifications"`
	State         game.Snapshot          `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func toCardInfo(c *game.Card) CardInfo {
	ci := CardInfo{
		ID:     c.ID,
		Name:   c.Name,
		Type:   string(c.Type),
		Cost:   c.Cost,
		Attack: c.Attack,
		Health: c.Health,
		Effect: c.Effect,
		Rarity: string(c.Rarity),
		Emoji:  c.Emoji,
	}
	for _, k := range c.Keywords {
		ci.Keywords = append(ci.Keywords, string(k))
	}
	return ci
}

func toDeckInfo(n int, d game.DeckEntry) DeckInfo {
	di := DeckInfo{Number: n, Name: d.Name, Cards: []string{}}
	seen := make(map[string]bool)
	for _, c := range d.Cards {
		di.Size += c.Count
		if !seen[c.ID] {
			di.Cards = append(di.Cards, c.ID)
			seen[c.ID] = true
		}
	}
	return di
}
