package chatbackend

import (
	"fmt"
	"strings"

	"finagent/internal/models"
)

// systemPrompt sets the assistant persona for the LLM backends. The webhook
// backend does not use it; the remote workflow carries its own instructions.
const systemPrompt = `You are FinAgent, a personal financial co-pilot. You help users understand their
spending, plan budgets, and make sense of their financial documents.

Principles:
1. Data-driven: when transaction data or documents are provided, ground every
   answer in them. Never invent numbers.
2. Simple and clear: explain financial concepts in plain language, without
   jargon. Prefer short, concrete answers.
3. Encouraging: be supportive about the user's financial habits and progress.
4. Action-oriented: end with a practical next step whenever one exists.

Safety: you are NOT a licensed financial advisor. If asked for professional
investment, tax, or legal advice, politely decline and suggest consulting a
qualified professional.`

// flattenHistory renders the conversation as a single role-prefixed prompt
// for backends that take plain text rather than structured turns.
func flattenHistory(history []models.ChatMessage) string {
	parts := make([]string, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			parts = append(parts, fmt.Sprintf("User: %s", msg.Content))
		case models.RoleAssistant:
			parts = append(parts, fmt.Sprintf("Assistant: %s", msg.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

// latestUserText returns the content of the most recent user turn.
func latestUserText(history []models.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
