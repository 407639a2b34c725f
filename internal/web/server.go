package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"

	"github.com/peterkuimelis/tcglive/internal/game"
	tcgnet "github.com/peterkuimelis/tcglive/internal/net"
	"github.com/peterkuimelis/tcglive/internal/session"
)

const pingInterval = 15 * time.Second

// Server serves the REST API and the WebSocket endpoint for live games.
type Server struct {
	catalog        *game.Catalog
	decks          game.DeckFile
	manager        *session.Manager
	handler        *tcgnet.Handler
	allowedOrigins []string
	logger         *slog.Logger
}

// Options configures a Server.
type Options struct {
	Catalog        *game.Catalog
	Decks          game.DeckFile
	Manager        *session.Manager
	AllowedOrigins []string // WebSocket origin patterns; empty allows same-origin only
	Logger         *slog.Logger
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		catalog:        opts.Catalog,
		decks:          opts.Decks,
		manager:        opts.Manager,
		handler:        &tcgnet.Handler{Manager: opts.Manager, Logger: logger},
		allowedOrigins: opts.AllowedOrigins,
		logger:         logger,
	}
}

// Echo builds an echo instance with the middleware and routes installed.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(RequestIDMiddleware())
	e.Use(LoggingMiddleware(s.logger))
	s.Register(e)
	return e
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.Healthz)
	e.GET("/api/cards", s.ListCards)
	e.GET("/api/decks", s.ListDecks)
	e.GET("/api/games", s.ListGames)
	e.POST("/api/games", s.CreateGame)
	e.GET("/api/games/:id", s.GetGame)
	e.DELETE("/api/games/:id", s.DeleteGame)
	e.POST("/api/games/:id/gifts", s.SendGift)
	e.GET("/ws", s.WebSocket)
}

func (s *Server) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) ListCards(c echo.Context) error {
	cards := make([]CardInfo, 0, s.catalog.Len())
	for _, id := range s.catalog.IDs() {
		card, err := s.catalog.Lookup(id)
		if err != nil {
			return s.mapError(c, err)
		}
		cards = append(cards, toCardInfo(card))
	}
	return c.JSON(http.StatusOK, cards)
}

func (s *Server) ListDecks(c echo.Context) error {
	decks := make([]DeckInfo, 0, len(s.decks.Decks))
	for i, d := range s.decks.Decks {
		decks = append(decks, toDeckInfo(i+1, d))
	}
	return c.JSON(http.StatusOK, decks)
}

func (s *Server) ListGames(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"games": s.manager.IDs()})
}

func (s *Server) CreateGame(c echo.Context) error {
	var req CreateGameRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		}
	}
	sess, err := s.manager.Create(req.GameID)
	if err != nil {
		return s.mapError(c, err)
	}
	state, err := sess.Snapshot(c.Request().Context())
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, GameResponse{GameID: sess.ID, State: state})
}

func (s *Server) GetGame(c echo.Context) error {
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return s.mapError(c, err)
	}
	state, err := sess.Snapshot(c.Request().Context())
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, GameResponse{GameID: sess.ID, State: state})
}

func (s *Server) DeleteGame(c echo.Context) error {
	id := c.Param("id")
	if _, err := s.manager.Get(id); err != nil {
		return s.mapError(c, err)
	}
	s.manager.Remove(id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) SendGift(c echo.Context) error {
	var req GiftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Gift == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "gift is required"})
	}
	sess, err := s.manager.Get(c.Param("id"))
	if err != nil {
		return s.mapError(c, err)
	}

	ctx := c.Request().Context()
	notes, state, err := sess.SubmitState(ctx, game.GiftIntent(req.Gift, req.Viewer))
	if err != nil {
		return s.mapError(c, err)
	}
	resp := GiftResponse{GameID: sess.ID, Notifications: []tcgnet.ServerMessage{}, State: state}
	for _, n := range notes {
		resp.Notifications = append(resp.Notifications, tcgnet.FromNotification(n))
	}
	return c.JSON(http.StatusOK, resp)
}

// WebSocket upgrades the request and runs the game protocol over it. The
// game and role query parameters join a game straight away.
func (s *Server) WebSocket(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		// Accept has already written the HTTP error.
		s.logger.Warn("websocket accept failed", "request_id", RequestID(c), "error", err)
		return nil
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go s.ping(ctx, conn)

	var initial []tcgnet.ClientMessage
	if gameID := c.QueryParam("game"); gameID != "" {
		initial = append(initial, tcgnet.ClientMessage{
			Type:   tcgnet.MsgJoinGame,
			GameID: gameID,
			Role:   game.Role(c.QueryParam("role")),
		})
	}

	err = s.handler.Serve(ctx, wsConn{conn}, initial...)
	switch {
	case err == nil, websocket.CloseStatus(err) != -1:
		conn.Close(websocket.StatusNormalClosure, "bye")
	default:
		s.logger.Warn("websocket ended", "request_id", RequestID(c), "error", err)
		conn.Close(websocket.StatusInternalError, "connection error")
	}
	return nil
}

func (s *Server) ping(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		}
	}
}

// wsConn frames protocol messages as WebSocket text messages.
type wsConn struct {
	c *websocket.Conn
}

// ReadMessage decodes frames itself: wsjson.Read closes the socket on a
// payload it cannot unmarshal.
func (w wsConn) ReadMessage(ctx context.Context) (tcgnet.ClientMessage, error) {
	_, data, err := w.c.Read(ctx)
	if err != nil {
		return tcgnet.ClientMessage{}, err
	}
	return tcgnet.DecodeClientMessage(data)
}

func (w wsConn) WriteMessage(ctx context.Context, msg tcgnet.ServerMessage) error {
	return wsjson.Write(ctx, w.c, msg)
}

func (s *Server) mapError(c echo.Context, err error) error {
	requestID := RequestID(c)

	switch {
	case errors.Is(err, session.ErrUnknownGame):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "unknown_game"})
	case errors.Is(err, session.ErrGameExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "game_exists"})
	case errors.Is(err, session.ErrClosed):
		return c.JSON(http.StatusGone, ErrorResponse{Error: err.Error(), Code: "game_closed"})
	case game.ErrorCode(err) != "":
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: game.ErrorCode(err)})
	default:
		s.logger.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fmt.Sprintf("internal error (request %s)", requestID)})
	}
}
