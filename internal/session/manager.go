package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/peterkuimelis/tcglive/internal/game"
)

var (
	ErrUnknownGame = errors.New("unknown game")
	ErrGameExists  = errors.New("game already exists")
)

// EngineFactory builds the engine for a new game.
type EngineFactory func(gameID string) (*game.Engine, error)

// Manager maps game IDs to their sessions. Sessions are independent and run
// in parallel.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  EngineFactory
	logger   *slog.Logger
}

func NewManager(factory EngineFactory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		factory:  factory,
		logger:   logger,
	}
}

// Create starts a new game. An empty id gets a random UUID.
func (m *Manager) Create(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrGameExists, id)
	}
	return m.create(id)
}

// GetOrCreate returns the session for id, starting one if needed. It
// reports whether the game was created by this call.
func (m *Manager) GetOrCreate(id string) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && id != "" {
		return s, false, nil
	}
	s, err := m.create(id)
	return s, err == nil, err
}

func (m *Manager) create(id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	engine, err := m.factory(id)
	if err != nil {
		return nil, fmt.Errorf("new game %s: %w", id, err)
	}
	s := New(id, engine, m.logger)
	m.sessions[id] = s
	m.logger.Info("game created", "game_id", id, "games", len(m.sessions))
	return s, nil
}

// Get returns a running session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, id)
	}
	return s, nil
}

// Remove stops a session and forgets it.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
		m.logger.Info("game removed", "game_id", id)
	}
}

// IDs lists the running games in sorted order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close stops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
