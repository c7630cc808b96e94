package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"finagent/internal/models"
	"finagent/internal/session"
	"finagent/pkg/config"

	"go.uber.org/zap"
)

// Uploader forwards financial documents to the external extraction webhook.
// The webhook only acknowledges receipt; extracted records surface later in
// the transaction store, which the Watcher polls for.
type Uploader struct {
	webhookURL string
	httpClient *http.Client
	fetcher    *Fetcher
	watcher    *Watcher
	logger     *zap.Logger
}

func NewUploader(cfg *config.ExtractorConfig, fetcher *Fetcher, watcher *Watcher, logger *zap.Logger) *Uploader {
	return &Uploader{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		fetcher: fetcher,
		watcher: watcher,
		logger:  logger,
	}
}

// Submit forwards the document and, when the webhook accepts it, captures a
// fresh baseline count and arms the polling watcher for the session. It
// reports whether the webhook accepted the document.
func (u *Uploader) Submit(ctx context.Context, sess *session.Session, content io.Reader, fileName, mediaType string) (bool, error) {
	if u.webhookURL == "" {
		return false, fmt.Errorf("extractor webhook url is not configured")
	}

	body, contentType, err := buildUploadBody(content, fileName, mediaType)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.webhookURL, body)
	if err != nil {
		return false, fmt.Errorf("create extractor request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("post document to extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("extractor rejected upload: status %d: %s", resp.StatusCode, snippet)
	}
	io.Copy(io.Discard, resp.Body)

	u.logger.Info("document forwarded to extractor",
		zap.String("session_id", sess.ID.String()),
		zap.String("file_name", fileName),
		zap.String("media_type", mediaType))

	// The baseline must be read before polling starts, so growth from this
	// very upload cannot be missed.
	baseline, err := u.fetcher.FetchFresh(ctx)
	if err != nil {
		u.logger.Warn("baseline fetch failed, watcher not armed", zap.Error(err))
		sess.UpdateJob(func(j *models.UploadJob) {
			j.FileName = fileName
			j.State = models.UploadIdle
			j.Message = "Upload accepted, but progress tracking is unavailable. Refresh the dashboard in a little while."
		})
		return true, nil
	}

	u.watcher.Arm(sess, len(baseline), fileName)
	return true, nil
}

func buildUploadBody(content io.Reader, fileName, mediaType string) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {mediaType},
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName)},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}
