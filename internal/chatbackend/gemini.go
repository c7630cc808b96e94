package chatbackend

import (
	"context"
	"fmt"
	"strings"

	"finagent/internal/models"
	"finagent/pkg/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiBackend struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGemini(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiBackend{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (b *GeminiBackend) Reply(ctx context.Context, history []models.ChatMessage) (string, error) {
	contents := historyToContents(history)
	if len(contents) == 0 {
		return "", ErrMalformedReply
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrMalformedReply
	}
	return text, nil
}

// historyToContents maps the conversation to Gemini turns. An attached image
// is sent as inline data ahead of the text of its turn.
func historyToContents(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}

		var parts []*genai.Part
		if msg.Image != nil {
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: msg.Image.MIMEType,
					Data:     msg.Image.Data,
				},
			})
		}
		parts = append(parts, &genai.Part{Text: msg.Content})

		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}
