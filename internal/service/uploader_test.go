package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finagent/internal/models"
	"finagent/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUploader(webhookURL string, store *stubStore, maxAttempts int) *Uploader {
	fetcher := NewFetcher(store, time.Hour, zap.NewNop())
	// The long interval keeps the armed watcher from polling while the
	// test inspects the job state Submit left behind.
	watcher := NewWatcher(fetcher, maxAttempts, time.Hour, zap.NewNop())
	return NewUploader(&config.ExtractorConfig{
		WebhookURL: webhookURL,
		Timeout:    5 * time.Second,
	}, fetcher, watcher, zap.NewNop())
}

func TestUploaderSubmitForwardsMultipart(t *testing.T) {
	var (
		gotFilename    string
		gotPartType    string
		gotContent     []byte
		gotContentType string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		gotFilename = header.Filename
		gotPartType = header.Header.Get("Content-Type")
		gotContent, err = io.ReadAll(file)
		require.NoError(t, err)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := constStore(txsOfLen(3))
	uploader := newUploader(server.URL, store, 1)
	sess := newTestSession(t)

	accepted, err := uploader.Submit(context.Background(), sess,
		strings.NewReader("\x89PNG fake bytes"), "receipt.png", "image/png")
	require.NoError(t, err)
	assert.True(t, accepted)

	assert.Contains(t, gotContentType, "multipart/form-data")
	assert.Equal(t, "receipt.png", gotFilename)
	assert.Equal(t, "image/png", gotPartType)
	assert.Equal(t, "\x89PNG fake bytes", string(gotContent))

	// Accepted upload arms the watcher with the fresh count as baseline.
	job := sess.Job()
	assert.Equal(t, models.UploadPolling, job.State)
	assert.Equal(t, 3, job.BaselineCount)
	assert.Equal(t, "receipt.png", job.FileName)
}

func TestUploaderSubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow disabled", http.StatusInternalServerError)
	}))
	defer server.Close()

	store := constStore(txsOfLen(3))
	uploader := newUploader(server.URL, store, 1)
	sess := newTestSession(t)

	accepted, err := uploader.Submit(context.Background(), sess,
		strings.NewReader("data"), "statement.csv", "text/csv")
	require.Error(t, err)
	assert.False(t, accepted)
	assert.Contains(t, err.Error(), "status 500")

	// No baseline captured, no watcher armed.
	job := sess.Job()
	assert.Equal(t, models.UploadIdle, job.State)
	assert.Zero(t, job.BaselineCount)
	assert.Equal(t, 0, store.callCount())
}

func TestUploaderSubmitTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	uploader := newUploader(server.URL, constStore(nil), 1)
	sess := newTestSession(t)

	accepted, err := uploader.Submit(context.Background(), sess,
		strings.NewReader("data"), "statement.pdf", "application/pdf")
	assert.Error(t, err)
	assert.False(t, accepted)
	assert.Equal(t, models.UploadIdle, sess.Job().State)
}

func TestUploaderSubmitBaselineUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := &stubStore{fn: func(int) ([]models.Transaction, error) {
		return nil, io.ErrUnexpectedEOF
	}}
	uploader := newUploader(server.URL, store, 1)
	sess := newTestSession(t)

	accepted, err := uploader.Submit(context.Background(), sess,
		strings.NewReader("data"), "receipt.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.True(t, accepted)

	// Without a valid baseline the watcher must not start polling.
	job := sess.Job()
	assert.Equal(t, models.UploadIdle, job.State)
	assert.Contains(t, job.Message, "progress tracking is unavailable")
}

func TestUploaderRequiresWebhookURL(t *testing.T) {
	uploader := newUploader("", constStore(nil), 1)
	sess := newTestSession(t)

	accepted, err := uploader.Submit(context.Background(), sess,
		strings.NewReader("data"), "receipt.jpg", "image/jpeg")
	assert.Error(t, err)
	assert.False(t, accepted)
}
