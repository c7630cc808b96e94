package chatbackend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"finagent/internal/models"
	"finagent/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GigaChatBackend answers text turns through the gigago SDK and turns with
// an attached image through the GigaChat Files + Vision REST API, which the
// SDK does not cover.
type GigaChatBackend struct {
	client      *gigago.Client
	model       *gigago.GenerativeModel
	config      *config.GigaChatConfig
	logger      *zap.Logger
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewGigaChat(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatBackend, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = systemPrompt
	model.Temperature = 0.4

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	accessToken, err := getAccessToken(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &GigaChatBackend{
		client:      client,
		model:       model,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		accessToken: accessToken,
		// Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
		baseURL: "https://gigachat.devices.sberbank.ru/api/v1",
	}, nil
}

func (b *GigaChatBackend) Reply(ctx context.Context, history []models.ChatMessage) (string, error) {
	if len(history) == 0 {
		return "", ErrMalformedReply
	}
	prompt := flattenHistory(history)

	if last := history[len(history)-1]; last.Role == models.RoleUser && last.Image != nil {
		return b.replyWithImage(ctx, prompt, last.Image)
	}

	resp, err := b.model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("gigachat generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrMalformedReply
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrMalformedReply
	}
	return content, nil
}

func (b *GigaChatBackend) replyWithImage(ctx context.Context, prompt string, img *models.ImageAttachment) (string, error) {
	fileID, err := b.uploadAttachment(ctx, img)
	if err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}
	return b.completeWithAttachment(ctx, prompt, fileID)
}

// uploadAttachment pushes the image to the Files API and returns the file ID.
// Endpoint: POST /files. On 401 the token is refreshed and the upload retried
// once; the attachment bytes are held in memory, so the body can be rebuilt.
func (b *GigaChatBackend) uploadAttachment(ctx context.Context, img *models.ImageAttachment) (string, error) {
	createBody := func() (*bytes.Buffer, string, error) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)

		// "general" allows using uploaded files in generation requests
		if err := writer.WriteField("purpose", "general"); err != nil {
			return nil, "", fmt.Errorf("failed to write purpose field: %w", err)
		}

		mimeType := img.MIMEType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		part, err := writer.CreatePart(map[string][]string{
			"Content-Type":        {mimeType},
			"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, img.FileName)},
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close writer: %w", err)
		}

		return &body, writer.FormDataContentType(), nil
	}

	upload := func() (*http.Response, error) {
		body, contentType, err := createBody()
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/files", body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+b.accessToken)

		return b.httpClient.Do(req)
	}

	resp, err := upload()
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		accessToken, err := getAccessToken(ctx, b.config, b.httpClient, b.logger)
		if err != nil {
			return "", fmt.Errorf("upload failed with 401, token refresh also failed: %w", err)
		}
		b.accessToken = accessToken

		if resp, err = upload(); err != nil {
			return "", fmt.Errorf("failed to upload file after token refresh: %w", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var uploadResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	b.logger.Info("File uploaded to GigaChat", zap.String("file_id", uploadResp.ID))
	return uploadResp.ID, nil
}

// completeWithAttachment calls POST /chat/completions with the uploaded file
// attached. Attachments format: [["file_id"]].
func (b *GigaChatBackend) completeWithAttachment(ctx context.Context, prompt, fileID string) (string, error) {
	requestBody := map[string]interface{}{
		"model": b.config.Model,
		"messages": []map[string]interface{}{
			{
				"role":        "user",
				"content":     prompt,
				"attachments": [][]string{{fileID}},
			},
		},
		"temperature": 0.4,
		"stream":      false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.accessToken)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vision completion failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var visionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&visionResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(visionResp.Choices) == 0 {
		return "", ErrMalformedReply
	}

	content := strings.TrimSpace(visionResp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrMalformedReply
	}
	return content, nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// The SDK manages its own token; this one is for the direct REST calls.
// The API key is expected to be Base64-encoded already.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	oauthURL := "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	logger.Info("Access token obtained", zap.Int("expires_in", oauthResp.ExpiresIn))
	return oauthResp.AccessToken, nil
}

func (b *GigaChatBackend) Close() error {
	if b.client != nil {
		b.client.Close()
	}
	return nil
}
