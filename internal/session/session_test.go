package session

import (
	"context"
	"testing"
	"time"

	"finagent/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m := NewManager(ttl, zap.NewNop())
	t.Cleanup(m.Close)
	return m
}

func TestCreateSeedsGreeting(t *testing.T) {
	m := newManager(t, time.Hour)

	sess := m.Create()
	history := sess.History()

	require.Len(t, history, 1)
	assert.Equal(t, models.RoleAssistant, history[0].Role)
	assert.Equal(t, models.Greeting, history[0].Content)
	assert.Equal(t, models.UploadIdle, sess.Job().State)
}

func TestGetKnownAndUnknown(t *testing.T) {
	m := newManager(t, time.Hour)

	sess := m.Create()

	got, ok := m.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = m.Get(uuid.New())
	assert.False(t, ok)
}

func TestGetExpiredSession(t *testing.T) {
	m := newManager(t, 20*time.Millisecond)

	sess := m.Create()
	time.Sleep(50 * time.Millisecond)

	_, ok := m.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())

	// The expired session's lifecycle context is closed with it.
	assert.ErrorIs(t, sess.Context().Err(), context.Canceled)
}

func TestTouchExtendsLifetime(t *testing.T) {
	m := newManager(t, 60*time.Millisecond)

	sess := m.Create()
	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		_, ok := m.Get(sess.ID)
		require.True(t, ok)
	}
}

func TestAppendAndHistoryCopy(t *testing.T) {
	m := newManager(t, time.Hour)
	sess := m.Create()

	sess.AppendMessage(models.ChatMessage{Role: models.RoleUser, Content: "hi"})

	history := sess.History()
	require.Len(t, history, 2)

	history[0].Content = "mutated"
	assert.Equal(t, models.Greeting, sess.History()[0].Content)
}

func TestArmWatcherCancelsPrevious(t *testing.T) {
	m := newManager(t, time.Hour)
	sess := m.Create()

	first := sess.ArmWatcher()
	second := sess.ArmWatcher()

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())

	sess.StopWatcher()
	assert.ErrorIs(t, second.Err(), context.Canceled)
}

func TestUpdateJobStampsTime(t *testing.T) {
	m := newManager(t, time.Hour)
	sess := m.Create()

	sess.UpdateJob(func(j *models.UploadJob) {
		j.State = models.UploadPolling
		j.Attempt = 2
	})

	job := sess.Job()
	assert.Equal(t, models.UploadPolling, job.State)
	assert.Equal(t, 2, job.Attempt)
	assert.False(t, job.UpdatedAt.IsZero())
}

func TestManagerCloseCancelsSessions(t *testing.T) {
	m := NewManager(time.Hour, zap.NewNop())
	sess := m.Create()
	watcherCtx := sess.ArmWatcher()

	m.Close()

	assert.ErrorIs(t, sess.Context().Err(), context.Canceled)
	assert.ErrorIs(t, watcherCtx.Err(), context.Canceled)
	assert.Equal(t, 0, m.Len())
}

func TestJanitorSweepsExpired(t *testing.T) {
	m := newManager(t, 30*time.Millisecond)

	m.Create()
	m.Create()
	require.Equal(t, 2, m.Len())

	assert.Eventually(t, func() bool {
		return m.Len() == 0
	}, 5*time.Second, 20*time.Millisecond)
}
