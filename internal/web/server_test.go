package web_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/tcglive/internal/game"
	tcgnet "github.com/peterkuimelis/tcglive/internal/net"
	"github.com/peterkuimelis/tcglive/internal/session"
	"github.com/peterkuimelis/tcglive/internal/web"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, err := game.DefaultCatalog()
	require.NoError(t, err)
	decks, err := game.DefaultDecks()
	require.NoError(t, err)
	starter, err := decks.DeckByName("Starter", cat)
	require.NoError(t, err)

	manager := session.NewManager(func(string) (*game.Engine, error) {
		return game.NewEngine(game.Config{
			Catalog:      cat,
			StreamerDeck: starter,
			ViewersDeck:  starter,
			NoShuffle:    true,
			FirstPlayer:  game.RoleStreamer,
		})
	}, nil)
	t.Cleanup(manager.Close)

	srv := web.NewServer(web.Options{
		Catalog: cat,
		Decks:   decks,
		Manager: manager,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
	_, err := uuid.Parse(resp.Header.Get("X-Request-Id"))
	assert.NoError(t, err, "generated request id should be a UUID")
}

func TestRequestIDIsPropagated(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/games/missing", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "trace-me")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "trace-me", resp.Header.Get("X-Request-Id"))
}

func TestListCardsAndDecks(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/api/cards", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cards []web.CardInfo
	require.NoError(t, json.Unmarshal(body, &cards))
	assert.Len(t, cards, 8)
	byID := make(map[string]web.CardInfo)
	for _, c := range cards {
		byID[c.ID] = c
	}
	assert.Equal(t, "Young Dragon", byID["young_dragon"].Name)
	assert.Equal(t, []string{"flying"}, byID["young_dragon"].Keywords)
	assert.Equal(t, "rare", byID["mana_crystal"].Rarity)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/decks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decks []web.DeckInfo
	require.NoError(t, json.Unmarshal(body, &decks))
	require.Len(t, decks, 3)
	assert.Equal(t, "Starter", decks[0].Name)
	assert.Equal(t, 19, decks[0].Size)
	assert.Len(t, decks[0].Cards, 8)
}

func TestGameLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/games", `{"game_id":"stream-1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created web.GameResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "stream-1", created.GameID)
	assert.Equal(t, 1, created.State.Turn)
	assert.Len(t, created.State.Hands[game.RoleViewers], game.InitialHandSize)

	resp, body = do(t, http.MethodPost, ts.URL+"/api/games", `{"game_id":"stream-1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "game_exists")

	resp, body = do(t, http.MethodGet, ts.URL+"/api/games/stream-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got web.GameResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created.State, got.State)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/games", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"games":["stream-1"]}`, string(body))

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/games/stream-1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, ts.URL+"/api/games/stream-1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateGameWithoutBodyGeneratesID(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, http.MethodPost, ts.URL+"/api/games", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created web.GameResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Len(t, created.GameID, 36)
}

func TestSendGift(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/games", `{"game_id":"g"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/games/g/gifts", `{"gift":"rose","viewer":"mia"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var gift web.GiftResponse
	require.NoError(t, json.Unmarshal(body, &gift))
	require.Len(t, gift.Notifications, 1)
	assert.Equal(t, "tiktokGiftEffect", gift.Notifications[0].Type)
	assert.Contains(t, gift.Notifications[0].Message, "mia")
	assert.Len(t, gift.State.Hands[game.RoleViewers], game.InitialHandSize+1)

	resp, body = do(t, http.MethodPost, ts.URL+"/api/games/g/gifts", `{"gift":"teddy bear"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &gift))
	assert.Empty(t, gift.Notifications)
	assert.Len(t, gift.State.Hands[game.RoleViewers], game.InitialHandSize+1)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/games/g/gifts", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/games/nope/gifts", `{"gift":"rose"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketPlaysTheProtocol(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game=live&role=streamer"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg tcgnet.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "gameState", msg.Type)
	assert.Equal(t, "live", msg.GameID)
	assert.Equal(t, game.RoleStreamer, msg.Role)

	require.NoError(t, wsjson.Write(ctx, conn, tcgnet.ClientMessage{Type: tcgnet.MsgDrawCard, Role: game.RoleViewers}))
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "not_your_turn", msg.Code)

	require.NoError(t, wsjson.Write(ctx, conn, tcgnet.ClientMessage{Type: tcgnet.MsgEndTurn}))
	msg = tcgnet.ServerMessage{}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "turnEnded", msg.Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, game.RoleViewers, msg.State.CurrentPlayer)
	assert.NotEmpty(t, msg.Events)

	// The game is visible over REST too.
	resp, _ := do(t, http.MethodGet, ts.URL+"/api/games/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}

func TestWebSocketReportsMalformedFrames(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game=bad&role=streamer"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg tcgnet.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "gameState", msg.Type)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"attack","attacker_id":"one"}`)))
	msg = tcgnet.ServerMessage{}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, "bad_message", msg.Code)

	require.NoError(t, wsjson.Write(ctx, conn, tcgnet.ClientMessage{Type: tcgnet.MsgEndTurn}))
	msg = tcgnet.ServerMessage{}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "turnEnded", msg.Type)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}
