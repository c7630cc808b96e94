package handlers

import (
	"mime"
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

var allowedUploadExts = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".pdf":  "application/pdf",
	".csv":  "text/csv",
}

type UploadHandler struct {
	uploader *service.Uploader
	watcher  *service.Watcher
	logger   *zap.Logger
}

func NewUploadHandler(uploader *service.Uploader, watcher *service.Watcher, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		watcher:  watcher,
		logger:   logger,
	}
}

// Upload godoc
// @Summary Upload a financial document
// @Description Forward a receipt, statement, or export to the extraction workflow. Extracted records appear in the transaction store shortly after.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document (png, jpg, pdf, or csv)"
// @Success 202 {object} dto.UploadResponse
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	fallbackType, ok := allowedUploadExts[ext]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported file type, use png, jpg, pdf, or csv",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	mediaType := file.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			mediaType = byExt
		} else {
			mediaType = fallbackType
		}
	}

	accepted, err := h.uploader.Submit(c.Context(), sess, src, file.Filename, mediaType)
	if !accepted {
		h.logger.Error("Upload not accepted by extractor", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Extraction service did not accept the upload",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.UploadResponse{
		Accepted: true,
		FileName: file.Filename,
		Status:   h.toUploadStatus(sess.Job()),
	})
}

// Status godoc
// @Summary Get upload processing status
// @Description Reports the polling watcher's progress for the session's most recent upload.
// @Tags uploads
// @Produce json
// @Success 200 {object} dto.UploadStatusResponse
// @Router /api/v1/uploads/status [get]
func (h *UploadHandler) Status(c *fiber.Ctx) error {
	sess := middleware.SessionFromCtx(c)

	return c.JSON(h.toUploadStatus(sess.Job()))
}

func (h *UploadHandler) toUploadStatus(job models.UploadJob) dto.UploadStatusResponse {
	status := dto.UploadStatusResponse{
		State:         string(job.State),
		Processing:    job.Processing(),
		FileName:      job.FileName,
		BaselineCount: job.BaselineCount,
		Attempt:       job.Attempt,
		MaxAttempts:   h.watcher.MaxAttempts(),
		Message:       job.Message,
	}
	if !job.UpdatedAt.IsZero() {
		status.UpdatedAt = job.UpdatedAt.Format(time.RFC3339)
	}
	return status
}
