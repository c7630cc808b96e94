package dto

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatMessageResponse struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	SentAt   string `json:"sent_at"`
	HasImage bool   `json:"has_image,omitempty"`
}

type ChatResponse struct {
	Reply ChatMessageResponse `json:"reply"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
	Count    int                   `json:"count"`
}
