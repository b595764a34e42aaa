package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/damdeez/newsie/internal/hooks"
	"github.com/damdeez/newsie/internal/logger"
)

// Manager tracks live sessions by id.
type Manager struct {
	source hooks.NewsSource
	opts   Options
	idle   time.Duration
	log    logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager; sessions untouched for longer than idle are
// reaped (idle <= 0 disables reaping).
func NewManager(source hooks.NewsSource, opts Options, idle time.Duration, log logger.Logger) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		source:   source,
		opts:     opts,
		idle:     idle,
		log:      logger.Ensure(log),
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a random UUID.
func (m *Manager) Create() *Session {
	s := New(uuid.NewString(), m.source, m.opts, m.log)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	total := len(m.sessions)
	m.mu.Unlock()

	m.log.InfoObj("session created", "session", map[string]any{"id": s.ID(), "active": total})
	return s
}

// Get returns the session and marks it as seen.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Close removes and closes the session; false if it did not exist.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.log.InfoObj("session closed", "session", map[string]any{"id": id})
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap closes sessions idle for longer than the configured TTL and returns
// how many were closed.
func (m *Manager) Reap() int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.idle)

	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		m.log.InfoObj("reaped idle sessions", "session_reaper", map[string]any{"count": len(stale)})
	}
	return len(stale)
}

// Run reaps idle sessions periodically until ctx is cancelled, then closes
// every remaining session.
func (m *Manager) Run(ctx context.Context) {
	defer m.CloseAll()
	if m.idle <= 0 {
		<-ctx.Done()
		return
	}

	interval := m.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reap()
		}
	}
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
