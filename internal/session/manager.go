package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns all live sessions. Sessions idle longer than the TTL are
// swept by a background janitor, which also cancels their watchers.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	ttl    time.Duration
	logger *zap.Logger
	stop   chan struct{}
	done   chan struct{}
}

func NewManager(ttl time.Duration, logger *zap.Logger) *Manager {
	m := &Manager{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *Manager) Create() *Session {
	sess := newSession()

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", sess.ID.String()))
	return sess
}

// Get returns the session if it exists and has not expired. An expired
// session is closed and removed as if the janitor had already swept it.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if sess.expired(m.ttl) {
		m.Remove(id)
		return nil, false
	}

	sess.Touch()
	return sess, true
}

func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		sess.close()
		m.logger.Info("session removed", zap.String("session_id", id.String()))
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the janitor and closes every live session.
func (m *Manager) Close() {
	close(m.stop)
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		sess.close()
		delete(m.sessions, id)
	}
}

func (m *Manager) janitor() {
	defer close(m.done)

	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	m.mu.Lock()
	var expired []*Session
	for id, sess := range m.sessions {
		if sess.expired(m.ttl) {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.close()
	}
	if len(expired) > 0 {
		m.logger.Info("swept expired sessions", zap.Int("count", len(expired)))
	}
}
