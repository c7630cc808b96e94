package dto

type UploadStatusResponse struct {
	State         string `json:"state"`
	Processing    bool   `json:"processing"`
	FileName      string `json:"file_name,omitempty"`
	BaselineCount int    `json:"baseline_count"`
	Attempt       int    `json:"attempt"`
	MaxAttempts   int    `json:"max_attempts"`
	Message       string `json:"message,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

type UploadResponse struct {
	Accepted bool                 `json:"accepted"`
	FileName string               `json:"file_name"`
	Status   UploadStatusResponse `json:"status"`
}
