package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peterkuimelis/tcglive/internal/game"
	"github.com/peterkuimelis/tcglive/internal/log"
	"github.com/peterkuimelis/tcglive/internal/session"
)

// Message types for the JSON protocol. The same envelopes travel over TCP
// (one JSON object per line) and WebSocket (one object per frame).

// --- Client → Server messages ---

const (
	MsgJoinGame = "join_game"
	MsgPlayCard = "play_card"
	MsgDrawCard = "draw_card"
	MsgEndTurn  = "end_turn"
	MsgAttack   = "attack"
	MsgGift     = "tiktok_gift"
	MsgSync     = "sync"
)

// Protocol errors that are not game rule violations.
var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrNotJoined      = errors.New("join a game first")
	ErrBadMessage     = errors.New("malformed message")
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join_game"; Role may also override the connection's role per message
	GameID string    `json:"game_id,omitempty"`
	Role   game.Role `json:"role,omitempty"`

	// For "play_card"
	CardID string `json:"card_id,omitempty"`

	// For "play_card" (spells) and "attack"
	Target *game.Target `json:"target,omitempty"`

	// For "attack"
	AttackerID int `json:"attacker_id,omitempty"`

	// For "tiktok_gift"
	Gift   string `json:"gift,omitempty"`
	Viewer string `json:"viewer,omitempty"`
}

// DecodeClientMessage parses one framed message. Errors wrap ErrBadMessage
// so the connection can report them and keep reading.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	return msg, nil
}

// Intent converts a message into a game intent. role is the connection's
// joined role, used unless the message names its own.
func (m ClientMessage) Intent(role game.Role) (game.Intent, error) {
	if m.Role != "" {
		role = m.Role
	}
	var target game.Target
	if m.Target != nil {
		target = *m.Target
	}
	switch m.Type {
	case MsgPlayCard:
		return game.PlayCardAt(role, m.CardID, target), nil
	case MsgDrawCard:
		return game.DrawCard(role), nil
	case MsgEndTurn:
		return game.EndTurn(role), nil
	case MsgAttack:
		return game.AttackWith(role, m.AttackerID, target), nil
	case MsgGift:
		return game.GiftIntent(m.Gift, m.Viewer), nil
	default:
		return game.Intent{}, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages. Type is
// one of the session notification types.
type ServerMessage struct {
	Type    string         `json:"type"`
	GameID  string         `json:"game_id,omitempty"`
	Role    game.Role      `json:"role,omitempty"` // set on the join reply
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"` // for "error"
	Events  []EventView    `json:"events,omitempty"`
	State   *game.Snapshot `json:"state,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  string `json:"player,omitempty"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// NewEventViews converts logged events for the wire.
func NewEventViews(events []log.GameEvent) []EventView {
	if len(events) == 0 {
		return nil
	}
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{
			Seq:     e.Seq,
			Turn:    e.Turn,
			Phase:   e.Phase,
			Player:  e.Player,
			Type:    e.Type.String(),
			Card:    e.Card,
			Details: e.Details,
		})
	}
	return views
}

// FromNotification builds the wire message for a session notification.
func FromNotification(n session.Notification) ServerMessage {
	state := n.State
	return ServerMessage{
		Type:    string(n.Type),
		GameID:  n.GameID,
		Message: n.Message,
		Code:    n.Code,
		Events:  NewEventViews(n.Events),
		State:   &state,
	}
}

// ErrorMessage reports a rejected message to its sender. state may be nil
// when the connection has not joined a game.
func ErrorMessage(gameID string, err error, state *game.Snapshot) ServerMessage {
	return ServerMessage{
		Type:    string(session.NotifyError),
		GameID:  gameID,
		Message: err.Error(),
		Code:    errorCode(err),
		State:   state,
	}
}

func errorCode(err error) string {
	if code := game.ErrorCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, ErrUnknownMessage):
		return "unknown_message"
	case errors.Is(err, ErrNotJoined):
		return "not_joined"
	case errors.Is(err, ErrBadMessage):
		return "bad_message"
	case errors.Is(err, session.ErrUnknownGame):
		return "unknown_game"
	case errors.Is(err, session.ErrClosed):
		return "game_closed"
	default:
		return "internal"
	}
}
