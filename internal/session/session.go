// Package session holds per-visitor state: the chat history, the marker for
// the most recent upload, and the cancel handle of its polling watcher.
// Handlers receive a *Session and pass it down; nothing below the HTTP layer
// reads global state.
package session

import (
	"context"
	"sync"
	"time"

	"finagent/internal/models"

	"github.com/google/uuid"
)

type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	lastSeen    time.Time
	messages    []models.ChatMessage
	job         models.UploadJob
	watchCancel context.CancelFunc
}

func newSession() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()

	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		ctx:       ctx,
		cancel:    cancel,
		lastSeen:  now,
		messages: []models.ChatMessage{{
			Role:    models.RoleAssistant,
			Content: models.Greeting,
			SentAt:  now,
		}},
		job: models.UploadJob{State: models.UploadIdle},
	}
}

// Context is cancelled when the session is closed. Watcher contexts derive
// from it, so closing a session stops its background work.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) AppendMessage(msg models.ChatMessage) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

// History returns a copy of the conversation so callers can read it without
// holding the session lock.
func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]models.ChatMessage, len(s.messages))
	copy(history, s.messages)
	return history
}

func (s *Session) Job() models.UploadJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.job
}

func (s *Session) SetJob(job models.UploadJob) {
	s.mu.Lock()
	s.job = job
	s.mu.Unlock()
}

// UpdateJob applies fn to the job marker under the session lock.
func (s *Session) UpdateJob(fn func(*models.UploadJob)) {
	s.mu.Lock()
	fn(&s.job)
	s.job.UpdatedAt = time.Now()
	s.mu.Unlock()
}

// ArmWatcher cancels any watcher already running for this session and
// returns a fresh context for the next one.
func (s *Session) ArmWatcher() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchCancel != nil {
		s.watchCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.watchCancel = cancel
	return ctx
}

// StopWatcher cancels the running watcher, if any.
func (s *Session) StopWatcher() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
}

func (s *Session) expired(ttl time.Duration) bool {
	return time.Since(s.LastSeen()) > ttl
}

func (s *Session) close() {
	s.cancel()
}
