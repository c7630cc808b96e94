package chatbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"finagent/internal/models"
	"finagent/pkg/config"

	"go.uber.org/zap"
)

// WebhookBackend forwards the latest user message to an external automation
// workflow. Only the newest user turn is sent; the workflow keeps whatever
// context it needs on its side. Attached images are not forwarded.
type WebhookBackend struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

type webhookRequest struct {
	UserMessage string `json:"user_message"`
}

type webhookReply struct {
	Output string `json:"output"`
}

func NewWebhook(cfg *config.ChatConfig, logger *zap.Logger) (*WebhookBackend, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("chat webhook url is not configured")
	}

	return &WebhookBackend{
		url: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

func (b *WebhookBackend) Reply(ctx context.Context, history []models.ChatMessage) (string, error) {
	payload, err := json.Marshal(webhookRequest{UserMessage: latestUserText(history)})
	if err != nil {
		return "", fmt.Errorf("marshal webhook request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to chat webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}

	// Expected shape: [{"output": "reply text"}]
	var rows []webhookReply
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(rows) == 0 {
		return "", ErrMalformedReply
	}

	output := strings.TrimSpace(rows[0].Output)
	if output == "" {
		return "", ErrMalformedReply
	}
	return output, nil
}
