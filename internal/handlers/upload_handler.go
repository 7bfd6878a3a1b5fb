package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

type UploadHandler struct {
	storageService services.StorageService
	maxFileSize    int64
	logger         *zap.Logger
}

func NewUploadHandler(storageService services.StorageService, maxFileSize int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		maxFileSize:    maxFileSize,
		logger:         logger,
	}
}

// HandleUpload handles POST /upload. Files land in the resume folder and are
// picked up by the next ingestion run.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no files uploaded",
		})
	}

	saved := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("%s is too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}

		filename, err := h.storageService.SaveFile(file)
		if err != nil {
			h.logger.Warn("failed to save upload", zap.String("file", file.Filename), zap.Error(err))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save %s: %v", file.Filename, err),
			})
		}
		saved = append(saved, filename)
	}

	h.logger.Info("resumes uploaded", zap.Strings("files", saved))

	return c.Status(fiber.StatusCreated).JSON(models.UploadResponse{
		Message: fmt.Sprintf("Uploaded %d files.", len(saved)),
		Files:   saved,
	})
}
