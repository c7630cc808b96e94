package models

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Greeting is the assistant message every new session starts with.
const Greeting = "Hello! I am FinAgent, your personal financial co-pilot. How can I help you today?"

// ImageAttachment is an image the user attached to a chat turn.
type ImageAttachment struct {
	FileName string
	MIMEType string
	Data     []byte
}

// ChatMessage is one turn in a session's conversation history.
type ChatMessage struct {
	Role    ChatRole
	Content string
	Image   *ImageAttachment
	SentAt  time.Time
}
