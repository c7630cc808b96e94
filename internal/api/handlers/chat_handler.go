package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"finagent/internal/dto"
	"finagent/internal/models"
	"finagent/internal/service"
	"finagent/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var chatImageExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

type ChatHandler struct {
	chat   *service.Chat
	logger *zap.Logger
}

func NewChatHandler(chat *service.Chat, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// SendMessage godoc
// @Summary Send a chat message
// @Description Send a message to the assistant. Use JSON for text only, or multipart/form-data to attach an image.
// @Tags chat
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body dto.ChatRequest false "Message (JSON mode)"
// @Param message formData string false "Message (multipart mode)"
// @Param image formData file false "Attached image (png, jpg, webp)"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/chat [post]
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	var (
		text  string
		image *models.ImageAttachment
	)

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		text = c.FormValue("message")

		if file, err := c.FormFile("image"); err == nil && file != nil {
			image, err = readChatImage(file)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
		}
	} else {
		var req dto.ChatRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		text = req.Message
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	reply := h.chat.Send(c.Context(), sess, text, image)

	return c.JSON(dto.ChatResponse{Reply: toMessageResponse(reply)})
}

// History godoc
// @Summary Get the conversation history
// @Description Returns every turn of the session's conversation in order, starting with the greeting.
// @Tags chat
// @Produce json
// @Success 200 {object} dto.ChatHistoryResponse
// @Router /api/v1/chat/history [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	history := sess.History()
	messages := make([]dto.ChatMessageResponse, 0, len(history))
	for _, msg := range history {
		messages = append(messages, toMessageResponse(msg))
	}

	return c.JSON(dto.ChatHistoryResponse{
		Messages: messages,
		Count:    len(messages),
	})
}

func toMessageResponse(msg models.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		Role:     string(msg.Role),
		Content:  msg.Content,
		SentAt:   msg.SentAt.Format(time.RFC3339),
		HasImage: msg.Image != nil,
	}
}

func readChatImage(file *multipart.FileHeader) (*models.ImageAttachment, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	fallbackType, ok := chatImageExts[ext]
	if !ok {
		return nil, fmt.Errorf("Unsupported image type, use png, jpg, or webp")
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("Failed to open image")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("Failed to read image")
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = fallbackType
	}

	return &models.ImageAttachment{
		FileName: file.Filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
