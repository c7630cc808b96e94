// Package chatbackend answers chat turns. Three interchangeable backends are
// provided: Google Gemini, Sber GigaChat, and a forwarding webhook. The
// backend is chosen once at startup from configuration.
package chatbackend

import (
	"context"
	"errors"
	"fmt"

	"finagent/internal/models"
	"finagent/pkg/config"

	"go.uber.org/zap"
)

const (
	BackendGemini   = "gemini"
	BackendGigaChat = "gigachat"
	BackendWebhook  = "webhook"
)

// ErrMalformedReply means the backend answered, but not with a usable reply.
var ErrMalformedReply = errors.New("chat backend returned an unexpected response shape")

// Responder produces the assistant's reply for a conversation. The last
// element of history is the user turn being answered; earlier elements give
// context in chronological order.
type Responder interface {
	Reply(ctx context.Context, history []models.ChatMessage) (string, error)
}

// New builds the Responder named by cfg.Chat.Backend.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Responder, error) {
	switch cfg.Chat.Backend {
	case BackendGemini:
		return NewGemini(ctx, &cfg.Gemini, logger)
	case BackendGigaChat:
		return NewGigaChat(ctx, &cfg.GigaChat, logger)
	case BackendWebhook:
		return NewWebhook(&cfg.Chat, logger)
	default:
		return nil, fmt.Errorf("unknown chat backend %q", cfg.Chat.Backend)
	}
}
