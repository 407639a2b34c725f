package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/peterkuimelis/tcglive/internal/game"
	tcgnet "github.com/peterkuimelis/tcglive/internal/net"
	"github.com/peterkuimelis/tcglive/internal/session"
)

// ToolResponse is the JSON envelope returned by all game tools.
type ToolResponse struct {
	GameID        string         `json:"game_id"`
	Notifications []Notification `json:"notifications"`
	State         *game.Snapshot `json:"state,omitempty"`
	GameOver      bool           `json:"game_over"`
	Winner        game.Role      `json:"winner,omitempty"`
	Result        string         `json:"result,omitempty"`
	Cards         []CardSummary  `json:"cards,omitempty"` // list_cards only
}

// Notification is one outbound message caused by the tool call.
type Notification struct {
	Type    string             `json:"type"`
	Message string             `json:"message"`
	Events  []tcgnet.EventView `json:"events,omitempty"`
}

// CardSummary is a catalog entry as presented to the model.
type CardSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Cost   int    `json:"cost"`
	Attack int    `json:"attack,omitempty"`
	Health int    `json:"health,omitempty"`
	Effect string `json:"effect,omitempty"`
}

func newToolResponse(gameID string, notes []session.Notification, state game.Snapshot) *ToolResponse {
	resp := &ToolResponse{
		GameID:        gameID,
		Notifications: []Notification{},
		State:         &state,
		GameOver:      state.Over,
		Winner:        state.Winner,
		Result:        state.Result,
	}
	for _, n := range notes {
		resp.Notifications = append(resp.Notifications, Notification{
			Type:    string(n.Type),
			Message: n.Message,
			Events:  tcgnet.NewEventViews(n.Events),
		})
	}
	return resp
}

func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
