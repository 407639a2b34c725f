package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/tcglive/internal/game"
	"github.com/peterkuimelis/tcglive/internal/session"
)

func newTools(t *testing.T) *Tools {
	t.Helper()
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	deck := func(top ...string) []string {
		d := make([]string, 0, 20)
		for len(d)+len(top) < 20 {
			d = append(d, "lightning_bolt")
		}
		return append(d, top...)
	}
	m := session.NewManager(func(string) (*game.Engine, error) {
		return game.NewEngine(game.Config{
			Catalog:      cat,
			StreamerDeck: deck("fire_imp", "forest_guardian", "young_dragon"),
			ViewersDeck:  deck(),
			NoShuffle:    true,
			FirstPlayer:  game.RoleStreamer,
		})
	}, nil)
	t.Cleanup(m.Close)
	return RegisterTools(server.NewMCPServer("tcglive-test", "0.0.0"), m, cat)
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func decode(t *testing.T, res *mcp.CallToolResult) ToolResponse {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var resp ToolResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &resp))
	return resp
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestCreateGameAndState(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()

	res, err := tools.handleCreateGame(ctx, call(map[string]any{"game_id": "m1"}))
	require.NoError(t, err)
	created := decode(t, res)
	assert.Equal(t, "m1", created.GameID)
	require.NotNil(t, created.State)
	assert.Equal(t, []string{"young_dragon", "forest_guardian", "fire_imp"}, created.State.Hands[game.RoleStreamer])

	res, err = tools.handleCreateGame(ctx, call(map[string]any{"game_id": "m1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.handleGetGameState(ctx, call(map[string]any{"game_id": "m1"}))
	require.NoError(t, err)
	state := decode(t, res)
	require.Len(t, state.Notifications, 1)
	assert.Equal(t, "gameState", state.Notifications[0].Type)
	assert.False(t, state.GameOver)
}

func TestListCards(t *testing.T) {
	tools := newTools(t)
	res, err := tools.handleListCards(context.Background(), call(nil))
	require.NoError(t, err)
	resp := decode(t, res)
	assert.Len(t, resp.Cards, 8)
}

func TestPlayTurnsThroughTools(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()
	_, err := tools.handleCreateGame(ctx, call(map[string]any{"game_id": "m2"}))
	require.NoError(t, err)

	// Turn 1: the streamer has 1 mana, not enough for a creature.
	res, err := tools.handlePlayCard(ctx, call(map[string]any{"game_id": "m2", "player": "streamer", "card_id": "fire_imp"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "insufficient_mana")

	res, err = tools.handleEndTurn(ctx, call(map[string]any{"game_id": "m2", "player": "viewers"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "not_your_turn")

	for _, p := range []string{"streamer", "viewers"} {
		res, err = tools.handleEndTurn(ctx, call(map[string]any{"game_id": "m2", "player": p}))
		require.NoError(t, err)
		assert.Equal(t, "turnEnded", decode(t, res).Notifications[0].Type)
	}

	// Turn 3: 2 mana for the imp.
	res, err = tools.handlePlayCard(ctx, call(map[string]any{"game_id": "m2", "player": "streamer", "card_id": "fire_imp"}))
	require.NoError(t, err)
	played := decode(t, res)
	assert.Equal(t, "cardPlayed", played.Notifications[0].Type)
	require.Len(t, played.State.Board[game.RoleStreamer], 1)
	imp := played.State.Board[game.RoleStreamer][0]
	assert.False(t, imp.CanAttack)

	res, err = tools.handleAttack(ctx, call(map[string]any{"game_id": "m2", "player": "streamer", "attacker_id": imp.InstanceID, "target_kind": "hero"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "cannot_attack")

	for _, p := range []string{"streamer", "viewers"} {
		_, err = tools.handleEndTurn(ctx, call(map[string]any{"game_id": "m2", "player": p}))
		require.NoError(t, err)
	}

	res, err = tools.handleAttack(ctx, call(map[string]any{"game_id": "m2", "player": "streamer", "attacker_id": imp.InstanceID, "target_kind": "hero"}))
	require.NoError(t, err)
	attack := decode(t, res)
	assert.Equal(t, "attack", attack.Notifications[0].Type)
	assert.Equal(t, game.MaxHealth-imp.Attack, attack.State.Players[game.RoleViewers].Health)
}

func TestGiftTool(t *testing.T) {
	tools := newTools(t)
	ctx := context.Background()
	_, err := tools.handleCreateGame(ctx, call(map[string]any{"game_id": "m3"}))
	require.NoError(t, err)

	res, err := tools.handleGift(ctx, call(map[string]any{"game_id": "m3", "gift": "🚀", "viewer": "kai"}))
	require.NoError(t, err)
	resp := decode(t, res)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "tiktokGiftEffect", resp.Notifications[0].Type)
	assert.Contains(t, resp.Notifications[0].Message, "kai")

	res, err = tools.handleGift(ctx, call(map[string]any{"game_id": "missing", "gift": "rose"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestParseTarget(t *testing.T) {
	target, err := parseTarget(call(map[string]any{"target_kind": "hero"}), game.RoleViewers)
	require.NoError(t, err)
	assert.Equal(t, game.HeroTarget(game.RoleStreamer), target)

	target, err = parseTarget(call(map[string]any{"target_kind": "hero", "target_player": "viewers"}), game.RoleViewers)
	require.NoError(t, err)
	assert.Equal(t, game.HeroTarget(game.RoleViewers), target)

	target, err = parseTarget(call(map[string]any{"target_kind": "creature", "target_creature": float64(4)}), game.RoleViewers)
	require.NoError(t, err)
	assert.Equal(t, game.CreatureTarget(4), target)

	_, err = parseTarget(call(map[string]any{"target_kind": "creature"}), game.RoleViewers)
	assert.Error(t, err)
	_, err = parseTarget(call(map[string]any{"target_kind": "deck"}), game.RoleViewers)
	assert.Error(t, err)
}
