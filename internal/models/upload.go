package models

import "time"

type UploadState string

const (
	UploadIdle     UploadState = "idle"
	UploadPolling  UploadState = "polling"
	UploadResolved UploadState = "resolved"
	UploadTimedOut UploadState = "timed_out"
)

// UploadJob tracks the outcome of the most recent document upload in a
// session. It is armed when the extraction webhook accepts a document and
// advanced by the polling watcher until the store grows past BaselineCount
// or the attempt budget runs out.
type UploadJob struct {
	FileName      string
	BaselineCount int
	State         UploadState
	Attempt       int
	Message       string
	UpdatedAt     time.Time
}

// Processing reports whether a watcher is still polling for this job.
func (j UploadJob) Processing() bool {
	return j.State == UploadPolling
}
