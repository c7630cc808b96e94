package chatbackend

import (
	"testing"

	"finagent/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFlattenHistory(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.RoleAssistant, Content: "Hello!"},
		{Role: models.RoleUser, Content: "How do I budget?"},
		{Role: models.RoleAssistant, Content: "Start by tracking spending."},
		{Role: models.RoleUser, Content: "Thanks"},
	}

	want := "Assistant: Hello!\n\n" +
		"User: How do I budget?\n\n" +
		"Assistant: Start by tracking spending.\n\n" +
		"User: Thanks"
	assert.Equal(t, want, flattenHistory(history))
}

func TestLatestUserText(t *testing.T) {
	history := []models.ChatMessage{
		{Role: models.RoleAssistant, Content: "Hello!"},
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "reply"},
		{Role: models.RoleUser, Content: "second"},
	}
	assert.Equal(t, "second", latestUserText(history))

	assert.Equal(t, "", latestUserText([]models.ChatMessage{
		{Role: models.RoleAssistant, Content: "Hello!"},
	}))
}

func TestHistoryToContents(t *testing.T) {
	img := &models.ImageAttachment{
		FileName: "receipt.png",
		MIMEType: "image/png",
		Data:     []byte{0x89, 0x50, 0x4e, 0x47},
	}

	history := []models.ChatMessage{
		{Role: models.RoleAssistant, Content: "Hello!"},
		{Role: models.RoleUser, Content: "what is on this receipt?", Image: img},
	}

	contents := historyToContents(history)
	assert.Len(t, contents, 2)

	assert.Equal(t, "model", contents[0].Role)
	assert.Len(t, contents[0].Parts, 1)
	assert.Equal(t, "Hello!", contents[0].Parts[0].Text)

	// The image rides ahead of the text on the user turn.
	assert.Equal(t, "user", contents[1].Role)
	assert.Len(t, contents[1].Parts, 2)
	assert.Equal(t, "image/png", contents[1].Parts[0].InlineData.MIMEType)
	assert.Equal(t, img.Data, contents[1].Parts[0].InlineData.Data)
	assert.Equal(t, "what is on this receipt?", contents[1].Parts[1].Text)
}
