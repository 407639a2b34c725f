package net

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/peterkuimelis/tcglive/internal/game"
	"github.com/peterkuimelis/tcglive/internal/session"
)

// Conn is one framed JSON connection: a TCP line stream or a WebSocket.
type Conn interface {
	ReadMessage(ctx context.Context) (ClientMessage, error)
	WriteMessage(ctx context.Context, msg ServerMessage) error
}

const maxLineSize = 64 * 1024

// lineConn frames messages as newline-delimited JSON.
type lineConn struct {
	sc  *bufio.Scanner
	enc *json.Encoder
}

// NewLineConn wraps a byte stream (a TCP connection, a pipe) as a Conn.
func NewLineConn(rw io.ReadWriter) Conn {
	sc := bufio.NewScanner(rw)
	sc.Buffer(make([]byte, 4096), maxLineSize)
	return &lineConn{sc: sc, enc: json.NewEncoder(rw)}
}

// ReadMessage returns the next non-blank line. A line that is not a valid
// message yields an ErrBadMessage error and leaves the stream usable.
func (c *lineConn) ReadMessage(ctx context.Context) (ClientMessage, error) {
	for c.sc.Scan() {
		line := bytes.TrimSpace(c.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		return DecodeClientMessage(line)
	}
	if err := c.sc.Err(); err != nil {
		return ClientMessage{}, err
	}
	return ClientMessage{}, io.EOF
}

func (c *lineConn) WriteMessage(ctx context.Context, msg ServerMessage) error {
	return c.enc.Encode(msg)
}

// DefaultSubscriberBuffer is how many notifications a connection may fall
// behind before it starts missing them.
const DefaultSubscriberBuffer = 64

// Handler runs the protocol for one connection at a time against the games
// held by Manager. It is shared by the TCP and WebSocket transports.
type Handler struct {
	Manager          *session.Manager
	Logger           *slog.Logger
	SubscriberBuffer int
}

// connState is the per-connection part of the protocol.
type connState struct {
	h    *Handler
	conn Conn
	wmu  sync.Mutex // serializes writes from the reader and the forwarder

	sess        *session.Session
	role        game.Role
	unsubscribe func()
}

// Serve reads messages until the connection closes or ctx ends. Messages in
// initial are handled first, as if the client had sent them.
func (h *Handler) Serve(ctx context.Context, conn Conn, initial ...ClientMessage) error {
	cs := &connState{h: h, conn: conn}
	defer cs.leave()

	for _, msg := range initial {
		if err := cs.handle(ctx, msg); err != nil {
			return err
		}
	}
	for {
		msg, err := conn.ReadMessage(ctx)
		if errors.Is(err, ErrBadMessage) {
			if err := cs.reject(ctx, err); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		if err := cs.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// handle processes one message. Only write failures end the connection;
// every other problem is reported to the client as an error message.
func (cs *connState) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case MsgJoinGame:
		return cs.join(ctx, msg)
	case MsgSync:
		if cs.sess == nil {
			return cs.reject(ctx, ErrNotJoined)
		}
		return cs.sync(ctx)
	}

	if cs.sess == nil {
		return cs.reject(ctx, ErrNotJoined)
	}
	in, err := msg.Intent(cs.role)
	if err != nil {
		return cs.reject(ctx, err)
	}
	// Success is broadcast to every subscriber, this connection included.
	if _, err := cs.sess.Submit(ctx, in); err != nil {
		return cs.reject(ctx, err)
	}
	return nil
}

func (cs *connState) join(ctx context.Context, msg ClientMessage) error {
	role := msg.Role
	if role == "" {
		role = game.RoleViewers
	}
	if _, err := game.ParseRole(string(role)); err != nil {
		return cs.reject(ctx, err)
	}
	sess, created, err := cs.h.Manager.GetOrCreate(msg.GameID)
	if err != nil {
		return cs.reject(ctx, err)
	}

	cs.leave()
	cs.sess, cs.role = sess, role
	buf := cs.h.SubscriberBuffer
	if buf <= 0 {
		buf = DefaultSubscriberBuffer
	}
	ch, unsubscribe := sess.Subscribe(buf)
	cs.unsubscribe = unsubscribe
	go cs.forward(ctx, ch)

	cs.h.logger().Info("player joined", "game_id", sess.ID, "role", string(role), "created", created)
	return cs.sync(ctx)
}

// forward copies broadcasts to the connection until the subscription closes.
func (cs *connState) forward(ctx context.Context, ch <-chan session.Notification) {
	for n := range ch {
		if err := cs.write(ctx, FromNotification(n)); err != nil {
			cs.h.logger().Debug("forward failed", "game_id", n.GameID, "err", err)
		}
	}
}

func (cs *connState) sync(ctx context.Context) error {
	n, err := cs.sess.State(ctx)
	if err != nil {
		return cs.reject(ctx, err)
	}
	msg := FromNotification(n)
	msg.Role = cs.role
	return cs.write(ctx, msg)
}

func (cs *connState) reject(ctx context.Context, err error) error {
	var gameID string
	var state *game.Snapshot
	if cs.sess != nil {
		gameID = cs.sess.ID
		if s, serr := cs.sess.Snapshot(ctx); serr == nil {
			state = &s
		}
	}
	return cs.write(ctx, ErrorMessage(gameID, err, state))
}

func (cs *connState) write(ctx context.Context, msg ServerMessage) error {
	cs.wmu.Lock()
	defer cs.wmu.Unlock()
	return cs.conn.WriteMessage(ctx, msg)
}

// leave drops the current subscription. Its forwarder exits once the
// buffered notifications are written or fail.
func (cs *connState) leave() {
	if cs.unsubscribe != nil {
		cs.unsubscribe()
		cs.unsubscribe = nil
	}
}
