package service

import (
	"context"
	"fmt"
	"time"

	"finagent/internal/models"
	"finagent/internal/session"

	"go.uber.org/zap"
)

// Watcher polls the store after an accepted upload until the record count
// grows past the baseline or the attempt budget runs out. One goroutine runs
// per armed session; re-arming cancels the previous one.
type Watcher struct {
	fetcher     *Fetcher
	maxAttempts int
	interval    time.Duration
	logger      *zap.Logger
}

func NewWatcher(fetcher *Fetcher, maxAttempts int, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		fetcher:     fetcher,
		maxAttempts: maxAttempts,
		interval:    interval,
		logger:      logger,
	}
}

func (w *Watcher) MaxAttempts() int {
	return w.maxAttempts
}

// Arm marks the session's upload job as polling and starts the watcher
// goroutine. A watcher already running for the session is cancelled first.
func (w *Watcher) Arm(sess *session.Session, baseline int, fileName string) {
	ctx := sess.ArmWatcher()

	sess.SetJob(models.UploadJob{
		FileName:      fileName,
		BaselineCount: baseline,
		State:         models.UploadPolling,
		Message:       "Extraction in progress.",
		UpdatedAt:     time.Now(),
	})

	w.logger.Info("polling watcher armed",
		zap.String("session_id", sess.ID.String()),
		zap.String("file_name", fileName),
		zap.Int("baseline", baseline))

	go w.run(ctx, sess, baseline, fileName)
}

func (w *Watcher) run(ctx context.Context, sess *session.Session, baseline int, fileName string) {
	// Writes apply only while the job is still the one this run was armed
	// for. When the session re-arms, the job is replaced and this run must
	// go silent instead of clobbering the replacement's state.
	owns := func(j *models.UploadJob) bool {
		return j.State == models.UploadPolling && j.BaselineCount == baseline && j.FileName == fileName
	}

	timer := time.NewTimer(w.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			sess.UpdateJob(func(j *models.UploadJob) {
				if owns(j) {
					j.State = models.UploadIdle
					j.Message = "Polling cancelled."
				}
			})
			return
		case <-timer.C:
		}

		snapshot, err := w.fetcher.FetchFresh(ctx)
		if err == nil && len(snapshot) > baseline {
			arrived := len(snapshot) - baseline
			sess.UpdateJob(func(j *models.UploadJob) {
				if !owns(j) {
					return
				}
				j.State = models.UploadResolved
				j.Attempt = attempt
				j.Message = fmt.Sprintf("%d new transactions arrived.", arrived)
			})
			w.logger.Info("upload resolved",
				zap.String("session_id", sess.ID.String()),
				zap.Int("attempt", attempt),
				zap.Int("arrived", arrived))
			return
		}

		// A failed fetch counts as an attempt with no growth.
		sess.UpdateJob(func(j *models.UploadJob) {
			if owns(j) {
				j.Attempt = attempt
			}
		})

		if attempt < w.maxAttempts {
			timer.Reset(w.interval)
		}
	}

	sess.UpdateJob(func(j *models.UploadJob) {
		if !owns(j) {
			return
		}
		j.State = models.UploadTimedOut
		j.Message = "Extraction is still processing. Refresh the dashboard in a little while."
	})
	w.logger.Warn("polling watcher timed out",
		zap.String("session_id", sess.ID.String()),
		zap.Int("baseline", baseline),
		zap.Int("attempts", w.maxAttempts))
}
