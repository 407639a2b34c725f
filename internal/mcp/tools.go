package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/tcglive/internal/game"
	"github.com/peterkuimelis/tcglive/internal/session"
)

// Tools drives games held by a session manager. An MCP client can play either
// side, or both, and can send gifts on behalf of the audience.
type Tools struct {
	manager *session.Manager
	catalog *game.Catalog
}

func NewTools(manager *session.Manager, catalog *game.Catalog) *Tools {
	return &Tools{manager: manager, catalog: catalog}
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer, manager *session.Manager, catalog *game.Catalog) *Tools {
	t := NewTools(manager, catalog)
	s.AddTool(createGameTool(), t.handleCreateGame)
	s.AddTool(listCardsTool(), t.handleListCards)
	s.AddTool(playCardTool(), t.handlePlayCard)
	s.AddTool(drawCardTool(), t.handleDrawCard)
	s.AddTool(endTurnTool(), t.handleEndTurn)
	s.AddTool(attackTool(), t.handleAttack)
	s.AddTool(giftTool(), t.handleGift)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
	return t
}

// --- Tool definitions ---

func gameIDParam() mcp.ToolOption {
	return mcp.WithString("game_id", mcp.Required(), mcp.Description("ID returned by create_game"))
}

func playerParam() mcp.ToolOption {
	return mcp.WithString("player", mcp.Required(), mcp.Enum("streamer", "viewers"),
		mcp.Description("Side taking the action; it must be that side's turn"))
}

func createGameTool() mcp.Tool {
	return mcp.NewTool("create_game",
		mcp.WithDescription("Start a new streamer-vs-viewers game. Both heroes start at 30 health; each side is dealt 3 cards. "+
			"Returns the game ID and the initial state."),
		mcp.WithString("game_id", mcp.Description("Optional ID for the game; a UUID is generated when omitted")),
	)
}

func listCardsTool() mcp.Tool {
	return mcp.NewTool("list_cards",
		mcp.WithDescription("List every card in the catalog with its cost, stats and effect. Hands and boards refer to cards by ID. Read-only."),
	)
}

func playCardTool() mcp.Tool {
	return mcp.NewTool("play_card",
		mcp.WithDescription("Play a card from the player's hand, paying its mana cost. Creatures are summoned and cannot attack until the next turn. "+
			"Damage spells default to the enemy hero and heal spells to the player's own hero."),
		gameIDParam(),
		playerParam(),
		mcp.WithString("card_id", mcp.Required(), mcp.Description("Card ID from the player's hand, e.g. 'fireball'")),
		mcp.WithString("target_kind", mcp.Enum("hero", "creature"), mcp.Description("Spell target kind (optional)")),
		mcp.WithString("target_player", mcp.Enum("streamer", "viewers"), mcp.Description("Hero to target when target_kind is 'hero'")),
		mcp.WithNumber("target_creature", mcp.Description("Creature instance ID when target_kind is 'creature'")),
	)
}

func drawCardTool() mcp.Tool {
	return mcp.NewTool("draw_card",
		mcp.WithDescription("Draw the top card of the player's deck. An empty deck or a full hand (10 cards) is reported, not an error."),
		gameIDParam(),
		playerParam(),
	)
}

func endTurnTool() mcp.Tool {
	return mcp.NewTool("end_turn",
		mcp.WithDescription("End the player's turn. The opponent gains a mana crystal (max 10), refills mana, readies creatures and draws a card."),
		gameIDParam(),
		playerParam(),
	)
}

func attackTool() mcp.Tool {
	return mcp.NewTool("attack",
		mcp.WithDescription("Attack with a ready creature. Enemy taunt creatures must be attacked first unless the attacker has flying. "+
			"Creature combat is simultaneous."),
		gameIDParam(),
		playerParam(),
		mcp.WithNumber("attacker_id", mcp.Required(), mcp.Description("Instance ID of the attacking creature")),
		mcp.WithString("target_kind", mcp.Required(), mcp.Enum("hero", "creature"), mcp.Description("Attack the enemy hero or a creature")),
		mcp.WithNumber("target_creature", mcp.Description("Defending creature instance ID when target_kind is 'creature'")),
	)
}

func giftTool() mcp.Tool {
	return mcp.NewTool("tiktok_gift",
		mcp.WithDescription("Apply a TikTok gift for the viewers, on any turn. rose (🌹) draws a card, rocket (🚀) gives 2 mana, "+
			"lion (🦁) adds a random rare card to the viewers' hand. Unknown gifts have no effect."),
		gameIDParam(),
		mcp.WithString("gift", mcp.Required(), mcp.Description("Gift name or emoji")),
		mcp.WithString("viewer", mcp.Description("Name of the viewer who sent it")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current state of a game without changing it. Read-only."),
		gameIDParam(),
	)
}

// --- Tool handlers ---

func (t *Tools) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := t.manager.Create(request.GetString("game_id", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	state, err := sess.Snapshot(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read state: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(newToolResponse(sess.ID, nil, state))), nil
}

func (t *Tools) handleListCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp := &ToolResponse{Notifications: []Notification{}}
	for _, id := range t.catalog.IDs() {
		c, err := t.catalog.Lookup(id)
		if err != nil {
			return mcp.NewToolResultErrorf("Catalog error: %v", err), nil
		}
		resp.Cards = append(resp.Cards, CardSummary{
			ID:     c.ID,
			Name:   c.Name,
			Type:   string(c.Type),
			Cost:   c.Cost,
			Attack: c.Attack,
			Health: c.Health,
			Effect: c.Effect,
		})
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, err := requirePlayer(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cardID, err := request.RequireString("card_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := parseTarget(request, player)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.submit(ctx, request, game.PlayCardAt(player, cardID, target))
}

func (t *Tools) handleDrawCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, err := requirePlayer(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.submit(ctx, request, game.DrawCard(player))
}

func (t *Tools) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, err := requirePlayer(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.submit(ctx, request, game.EndTurn(player))
}

func (t *Tools) handleAttack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	player, err := requirePlayer(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attacker := request.GetInt("attacker_id", -1)
	if attacker < 0 {
		return mcp.NewToolResultError("attacker_id is required"), nil
	}
	target, err := parseTarget(request, player)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if target.Kind == game.TargetNone {
		return mcp.NewToolResultError("target_kind is required"), nil
	}
	return t.submit(ctx, request, game.AttackWith(player, attacker, target))
}

func (t *Tools) handleGift(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gift, err := request.RequireString("gift")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return t.submit(ctx, request, game.GiftIntent(gift, request.GetString("viewer", "")))
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := t.session(request)
	if errResult != nil {
		return errResult, nil
	}
	n, err := sess.State(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to read state: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(newToolResponse(sess.ID, []session.Notification{n}, n.State))), nil
}

func (t *Tools) submit(ctx context.Context, request mcp.CallToolRequest, in game.Intent) (*mcp.CallToolResult, error) {
	sess, errResult := t.session(request)
	if errResult != nil {
		return errResult, nil
	}
	notes, state, err := sess.SubmitState(ctx, in)
	if err != nil {
		if code := game.ErrorCode(err); code != "" {
			return mcp.NewToolResultErrorf("Rejected (%s): %v", code, err), nil
		}
		return mcp.NewToolResultErrorf("Error: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(newToolResponse(sess.ID, notes, state))), nil
}

func (t *Tools) session(request mcp.CallToolRequest) (*session.Session, *mcp.CallToolResult) {
	id, err := request.RequireString("game_id")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	sess, err := t.manager.Get(id)
	if err != nil {
		return nil, mcp.NewToolResultErrorf("%v. Use create_game first.", err)
	}
	return sess, nil
}

func requirePlayer(request mcp.CallToolRequest) (game.Role, error) {
	s, err := request.RequireString("player")
	if err != nil {
		return "", err
	}
	return game.ParseRole(s)
}

// parseTarget reads the optional target arguments. A hero target without a
// player means the enemy hero.
func parseTarget(request mcp.CallToolRequest, player game.Role) (game.Target, error) {
	switch kind := request.GetString("target_kind", ""); kind {
	case "":
		return game.Target{}, nil
	case "hero":
		r := player.Opponent()
		if p := request.GetString("target_player", ""); p != "" {
			parsed, err := game.ParseRole(p)
			if err != nil {
				return game.Target{}, err
			}
			r = parsed
		}
		return game.HeroTarget(r), nil
	case "creature":
		id := request.GetInt("target_creature", -1)
		if id < 0 {
			return game.Target{}, fmt.Errorf("target_creature is required when target_kind is 'creature'")
		}
		return game.CreatureTarget(id), nil
	default:
		return game.Target{}, fmt.Errorf("unknown target_kind %q", kind)
	}
}
