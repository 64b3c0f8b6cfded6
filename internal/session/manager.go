package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/commuter-advisor/internal/profile"
	"go.uber.org/zap"
)

// defaultFallback is used when no Fallback is configured
const defaultFallback = "I'm currently unable to process your request. Please try again later."

// Responder produces advice for a rider's message
type Responder interface {
	Respond(ctx context.Context, message string, id profile.ID) (string, error)
}

// Store persists sessions beyond the process lifetime
type Store interface {
	SaveSession(ctx context.Context, s *Session) error
	AppendMessage(ctx context.Context, sessionID uuid.UUID, m Message) error
	LoadSession(ctx context.Context, id uuid.UUID) (*Session, error)
}

// ManagerOptions configures a Manager
type ManagerOptions struct {
	Responder Responder
	// Store is optional; without it sessions live in memory only.
	Store Store
	// Fallback turns a Responder error into the bot reply.
	Fallback func(error) string
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Manager owns the live sessions. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*entry
	responder Responder
	store     Store
	fallback  func(error) string
	now       func() time.Time
	logger    *zap.Logger
}

// entry serialises changes to one session. s is replaced, never mutated,
// so a change that fails to persist leaves the live session untouched.
type entry struct {
	mu sync.Mutex
	s  *Session
}

// NewManager creates a Manager
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		sessions:  make(map[uuid.UUID]*entry),
		responder: opts.Responder,
		store:     opts.Store,
		fallback:  opts.Fallback,
		now:       opts.Clock,
		logger:    opts.Logger,
	}
	if m.fallback == nil {
		m.fallback = func(error) string { return defaultFallback }
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Create starts a new session
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(m.now())

	if m.store != nil {
		if err := m.store.SaveSession(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	m.mu.Lock()
	m.sessions[s.ID] = &entry{s: s}
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", s.ID.String()))
	return s.Clone(), nil
}

// Get returns a copy of the session
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Clone(), nil
}

// lookup finds a live session, loading it from the store when needed
func (m *Manager) lookup(ctx context.Context, id uuid.UUID) (*entry, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return e, nil
	}

	if m.store == nil {
		return nil, ErrNotFound
	}

	loaded, err := m.store.LoadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if loaded == nil {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have loaded it meanwhile
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	e = &entry{s: loaded}
	m.sessions[id] = e
	return e, nil
}

// update applies change to a copy of the session, persists the copy with
// the messages change returns, and only then makes it the live session.
func (m *Manager) update(ctx context.Context, id uuid.UUID, change func(s *Session) ([]Message, error)) (*Session, []Message, error) {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.s.Clone()
	added, err := change(next)
	if err != nil {
		return nil, nil, err
	}
	if err := m.persist(ctx, next, added); err != nil {
		return nil, nil, err
	}
	e.s = next
	return next.Clone(), added, nil
}

// Answer records an answer to the session's current question
func (m *Manager) Answer(ctx context.Context, id uuid.UUID, answer string) (*Session, error) {
	s, added, err := m.update(ctx, id, func(s *Session) ([]Message, error) {
		before := len(s.Messages)
		if err := s.Answer(answer, m.now()); err != nil {
			return nil, err
		}
		return s.Messages[before:], nil
	})
	if err != nil {
		return nil, err
	}

	if s.Phase == PhaseChatting && len(added) > 0 {
		m.logger.Info("profile determined",
			zap.String("session_id", id.String()),
			zap.String("profile", string(s.Profile)),
			zap.String("rule", s.Rule))
	}
	return s, nil
}

// Chat records the rider's message, asks the responder for advice and
// records the reply. A failed responder call yields the fallback reply
// rather than an error, so the conversation can continue.
func (m *Manager) Chat(ctx context.Context, id uuid.UUID, message string) (Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Message{}, ErrEmptyMessage
	}

	s, _, err := m.update(ctx, id, func(s *Session) ([]Message, error) {
		if s.Phase != PhaseChatting {
			return nil, ErrQuestionnaireIncomplete
		}
		return []Message{s.AddMessage(RoleUser, message, m.now())}, nil
	})
	if err != nil {
		return Message{}, err
	}

	content := m.respond(ctx, id, message, s.Profile)

	_, added, err := m.update(ctx, id, func(s *Session) ([]Message, error) {
		return []Message{s.AddMessage(RoleBot, content, m.now())}, nil
	})
	if err != nil {
		return Message{}, err
	}
	return added[0], nil
}

func (m *Manager) respond(ctx context.Context, id uuid.UUID, message string, p profile.ID) string {
	if m.responder == nil {
		return m.fallback(fmt.Errorf("no responder configured"))
	}

	reply, err := m.responder.Respond(ctx, message, p)
	if err != nil {
		m.logger.Warn("responder failed, using fallback reply",
			zap.String("session_id", id.String()),
			zap.Error(err))
		return m.fallback(err)
	}
	return reply
}

func (m *Manager) persist(ctx context.Context, s *Session, added []Message) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	for _, msg := range added {
		if err := m.store.AppendMessage(ctx, s.ID, msg); err != nil {
			return fmt.Errorf("failed to persist message: %w", err)
		}
	}
	return nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
