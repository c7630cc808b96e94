package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finagent/internal/chatbackend"
	"finagent/internal/models"
	"finagent/internal/session"

	"go.uber.org/zap"
)

// Fallback replies shown when the backend cannot produce an answer. The
// conversation always gets an assistant turn, whatever went wrong.
const (
	fallbackEmpty     = "I'm sorry, I couldn't generate a response right now."
	fallbackMalformed = "I'm sorry, I got an unexpected response from the assistant backend. Please try again."
	fallbackErrorFmt  = "There was an error contacting the model: %v"
)

type Chat struct {
	backend chatbackend.Responder
	logger  *zap.Logger
}

func NewChat(backend chatbackend.Responder, logger *zap.Logger) *Chat {
	return &Chat{
		backend: backend,
		logger:  logger,
	}
}

// Send appends the user turn to the session, asks the backend for a reply,
// and appends the assistant turn. Backend failures map to fallback replies,
// so both turns land in the history unconditionally.
func (s *Chat) Send(ctx context.Context, sess *session.Session, text string, image *models.ImageAttachment) models.ChatMessage {
	sess.AppendMessage(models.ChatMessage{
		Role:    models.RoleUser,
		Content: text,
		Image:   image,
		SentAt:  time.Now(),
	})

	reply, err := s.backend.Reply(ctx, sess.History())

	var content string
	switch {
	case err == nil && strings.TrimSpace(reply) != "":
		content = sanitizeUTF8(reply)
	case errors.Is(err, chatbackend.ErrMalformedReply):
		s.logger.Warn("chat backend returned malformed reply",
			zap.String("session_id", sess.ID.String()),
			zap.Error(err))
		content = fallbackMalformed
	case err != nil:
		s.logger.Warn("chat backend failed",
			zap.String("session_id", sess.ID.String()),
			zap.Error(err))
		content = fmt.Sprintf(fallbackErrorFmt, err)
	default:
		s.logger.Warn("chat backend returned empty reply",
			zap.String("session_id", sess.ID.String()))
		content = fallbackEmpty
	}

	assistant := models.ChatMessage{
		Role:    models.RoleAssistant,
		Content: content,
		SentAt:  time.Now(),
	}
	sess.AppendMessage(assistant)

	return assistant
}
