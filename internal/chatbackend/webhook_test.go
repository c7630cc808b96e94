package chatbackend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finagent/internal/models"
	"finagent/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newWebhookBackend(t *testing.T, url string) *WebhookBackend {
	t.Helper()

	backend, err := NewWebhook(&config.ChatConfig{
		Backend:    BackendWebhook,
		WebhookURL: url,
		Timeout:    5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return backend
}

func chatHistory(turns ...models.ChatMessage) []models.ChatMessage {
	history := []models.ChatMessage{{Role: models.RoleAssistant, Content: models.Greeting}}
	return append(history, turns...)
}

func TestWebhookReply(t *testing.T) {
	var gotBody webhookRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"output": "You spent 150 on Food."}]`))
	}))
	defer server.Close()

	backend := newWebhookBackend(t, server.URL)

	history := chatHistory(
		models.ChatMessage{Role: models.RoleUser, Content: "hi"},
		models.ChatMessage{Role: models.RoleAssistant, Content: "hello"},
		models.ChatMessage{Role: models.RoleUser, Content: "how much did I spend on food?"},
	)

	reply, err := backend.Reply(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "You spent 150 on Food.", reply)

	// Only the newest user turn goes over the wire.
	assert.Equal(t, "how much did I spend on food?", gotBody.UserMessage)
}

func TestWebhookReplyMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty array", body: `[]`},
		{name: "object instead of array", body: `{"output": "hi"}`},
		{name: "missing output key", body: `[{"reply": "hi"}]`},
		{name: "empty output", body: `[{"output": "  "}]`},
		{name: "not json", body: `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			backend := newWebhookBackend(t, server.URL)

			_, err := backend.Reply(context.Background(), chatHistory(
				models.ChatMessage{Role: models.RoleUser, Content: "hi"},
			))
			assert.ErrorIs(t, err, ErrMalformedReply)
		})
	}
}

func TestWebhookReplyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	backend := newWebhookBackend(t, server.URL)

	_, err := backend.Reply(context.Background(), chatHistory(
		models.ChatMessage{Role: models.RoleUser, Content: "hi"},
	))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedReply))
}

func TestWebhookReplyTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	backend := newWebhookBackend(t, server.URL)

	_, err := backend.Reply(context.Background(), chatHistory(
		models.ChatMessage{Role: models.RoleUser, Content: "hi"},
	))
	assert.Error(t, err)
}

func TestNewWebhookRequiresURL(t *testing.T) {
	_, err := NewWebhook(&config.ChatConfig{Backend: BackendWebhook}, zap.NewNop())
	assert.Error(t, err)
}
