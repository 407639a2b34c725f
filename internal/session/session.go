package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/peterkuimelis/tcglive/internal/game"
	"github.com/peterkuimelis/tcglive/internal/log"
)

const tracerName = "github.com/peterkuimelis/tcglive/internal/session"

// ErrClosed is returned by a session that has been shut down.
var ErrClosed = errors.New("session closed")

// NotificationType names an outbound message kind.
type NotificationType string

const (
	NotifyGameState  NotificationType = "gameState"
	NotifyCardPlayed NotificationType = "cardPlayed"
	NotifyCardDrawn  NotificationType = "cardDrawn"
	NotifyDrawFailed NotificationType = "drawFailed"
	NotifyTurnEnded  NotificationType = "turnEnded"
	NotifyGift       NotificationType = "tiktokGiftEffect"
	NotifyAttack     NotificationType = "attack"
	NotifyGameOver   NotificationType = "gameOver"
	NotifyError      NotificationType = "error"
)

// Notification is one outbound message. Every notification carries the full
// state as it was right after the intent that caused it.
type Notification struct {
	Type    NotificationType
	GameID  string
	Message string
	Code    string // error code, NotifyError only
	Events  []log.GameEvent
	State   game.Snapshot
}

// ErrorNotification describes a rejected intent for the participant who sent it.
func ErrorNotification(gameID string, err error, state game.Snapshot) Notification {
	return Notification{
		Type:    NotifyError,
		GameID:  gameID,
		Message: err.Error(),
		Code:    game.ErrorCode(err),
		State:   state,
	}
}

type request struct {
	ctx    context.Context
	intent *game.Intent // nil asks for a snapshot only
	reply  chan result
}

type result struct {
	notes []Notification
	state game.Snapshot
	err   error
}

// Session owns one game. A single goroutine applies intents in arrival order,
// so the engine is never touched concurrently.
type Session struct {
	ID string

	engine   *game.Engine
	requests chan request
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once

	mu      sync.Mutex // guards subs
	subs    map[int]chan Notification
	nextSub int

	logger *slog.Logger
	tracer trace.Tracer
}

// New starts the actor goroutine for a game.
func New(id string, engine *game.Engine, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		ID:       id,
		engine:   engine,
		requests: make(chan request),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		subs:     make(map[int]chan Notification),
		logger:   logger.With("game_id", id),
		tracer:   otel.Tracer(tracerName),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requests:
			if req.intent == nil {
				req.reply <- result{state: s.engine.Snapshot()}
				continue
			}
			res := s.apply(req.ctx, *req.intent)
			req.reply <- res
			if res.err == nil {
				for _, n := range res.notes {
					s.broadcast(n)
				}
			}
		}
	}
}

func (s *Session) apply(ctx context.Context, in game.Intent) result {
	_, span := s.tracer.Start(ctx, "session.apply", trace.WithAttributes(
		attribute.String("game.id", s.ID),
		attribute.String("game.intent", in.Type.String()),
		attribute.String("game.player", string(in.Player)),
	))
	defer span.End()

	events, err := s.engine.Apply(in)
	state := s.engine.Snapshot()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Info("intent rejected", "intent", in.String(), "code", game.ErrorCode(err), "err", err)
		return result{state: state, err: err}
	}
	span.SetAttributes(attribute.Int("game.events", len(events)), attribute.Int("game.turn", state.Turn))
	s.logger.Debug("intent applied", "intent", in.String(), "events", len(events), "turn", state.Turn)
	return result{notes: s.notifications(in, events, state), state: state}
}

// notifications turns an intent's events into its outbound messages: one
// primary notification, plus gameOver when the intent ended the game.
func (s *Session) notifications(in game.Intent, events []log.GameEvent, state game.Snapshot) []Notification {
	if len(events) == 0 {
		return nil
	}
	var typ NotificationType
	var headline log.EventType
	switch in.Type {
	case game.IntentPlayCard:
		typ, headline = NotifyCardPlayed, log.EventCardPlayed
	case game.IntentDrawCard:
		typ, headline = NotifyCardDrawn, log.EventDraw
		if len(log.OfType(events, log.EventDrawFailed)) > 0 {
			typ, headline = NotifyDrawFailed, log.EventDrawFailed
		}
	case game.IntentEndTurn:
		typ, headline = NotifyTurnEnded, log.EventNewTurn
	case game.IntentGift:
		typ, headline = NotifyGift, log.EventGift
	case game.IntentAttack:
		typ, headline = NotifyAttack, log.EventAttack
	default:
		typ, headline = NotifyGameState, events[0].Type
	}

	notes := []Notification{{
		Type:    typ,
		GameID:  s.ID,
		Message: message(events, headline),
		Events:  events,
		State:   state,
	}}
	if state.Over {
		for _, e := range events {
			if e.Type == log.EventWin || e.Type == log.EventDraw_Tie {
				notes = append(notes, Notification{
					Type:    NotifyGameOver,
					GameID:  s.ID,
					Message: state.Result,
					Events:  []log.GameEvent{e},
					State:   state,
				})
			}
		}
	}
	return notes
}

func message(events []log.GameEvent, headline log.EventType) string {
	if hs := log.OfType(events, headline); len(hs) > 0 {
		return hs[0].Details
	}
	return events[0].Details
}

// Submit hands an intent to the session and waits for it to be applied. The
// returned notifications have also been broadcast to every subscriber. Rule
// violations come back as errors and are not broadcast.
func (s *Session) Submit(ctx context.Context, in game.Intent) ([]Notification, error) {
	notes, _, err := s.SubmitState(ctx, in)
	return notes, err
}

// SubmitState is Submit plus the state the intent left behind, taken before
// any later intent runs. Intents without events still return that state.
func (s *Session) SubmitState(ctx context.Context, in game.Intent) ([]Notification, game.Snapshot, error) {
	res, err := s.call(ctx, &in)
	if err != nil {
		return nil, game.Snapshot{}, err
	}
	return res.notes, res.state, res.err
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (game.Snapshot, error) {
	res, err := s.call(ctx, nil)
	return res.state, err
}

// State returns a full-sync notification.
func (s *Session) State(ctx context.Context) (Notification, error) {
	state, err := s.Snapshot(ctx)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		Type:    NotifyGameState,
		GameID:  s.ID,
		Message: fmt.Sprintf("Turn %d: %s to act", state.Turn, state.CurrentPlayer),
		State:   state,
	}, nil
}

func (s *Session) call(ctx context.Context, in *game.Intent) (result, error) {
	req := request{ctx: ctx, intent: in, reply: make(chan result, 1)}
	select {
	case s.requests <- req:
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-s.done:
		return result{}, ErrClosed
	}
	// Once accepted the intent is applied even if ctx ends; only the wait is cut short.
	select {
	case res := <-req.reply:
		return res, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// Subscribe registers for broadcasts. Sends never block the session: a
// subscriber whose buffer is full misses notifications and should resync.
func (s *Session) Subscribe(buf int) (<-chan Notification, func()) {
	ch := make(chan Notification, buf)
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		close(ch)
		return ch, func() {}
	default:
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Session) broadcast(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- n:
		default:
			s.logger.Warn("dropping notification for slow subscriber", "subscriber", id, "type", string(n.Type))
		}
	}
}

// Close stops the actor and closes every subscription.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		<-s.stopped
		s.mu.Lock()
		defer s.mu.Unlock()
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
	})
}
