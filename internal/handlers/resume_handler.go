package handlers

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

// ResumeDeleter removes a resume everywhere it is stored.
type ResumeDeleter interface {
	DeleteResume(ctx context.Context, id string) error
}

type ResumeHandler struct {
	index          services.VectorIndex
	catalog        repositories.ResumeRepository
	storageService services.StorageService
	deleter        ResumeDeleter
	logger         *zap.Logger
}

// NewResumeHandler accepts a nil catalog when the database is disabled.
func NewResumeHandler(
	index services.VectorIndex,
	catalog repositories.ResumeRepository,
	storageService services.StorageService,
	deleter ResumeDeleter,
	logger *zap.Logger,
) *ResumeHandler {
	return &ResumeHandler{
		index:          index,
		catalog:        catalog,
		storageService: storageService,
		deleter:        deleter,
		logger:         logger,
	}
}

// HandleList handles GET /resumes
func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	ctx := c.UserContext()

	docs, err := h.index.Get(ctx)
	if err != nil {
		h.logger.Error("failed to list indexed resumes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list resumes",
		})
	}

	ingestedAt := make(map[string]time.Time)
	if h.catalog != nil {
		rows, err := h.catalog.List(ctx)
		if err != nil {
			h.logger.Warn("failed to read resume catalog", zap.Error(err))
		}
		for _, row := range rows {
			ingestedAt[row.ID] = row.IngestedAt
		}
	}

	resumes := make([]models.ResumeSummary, 0, len(docs))
	for _, doc := range docs {
		t, ok := ingestedAt[doc.ID]
		resumes = append(resumes, models.ResumeSummary{
			ID:         doc.ID,
			Filename:   doc.Source(doc.ID),
			UploadedAt: formatUploadedAt(t, ok),
		})
	}

	return c.JSON(models.ResumeListResponse{Resumes: resumes})
}

// HandleGet handles GET /resumes/:id
func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	doc, err := h.find(c)
	if err != nil {
		return h.lookupError(c, err)
	}

	return c.JSON(models.ResumeContentResponse{
		ID:         doc.ID,
		Filename:   doc.Source(doc.ID),
		Content:    doc.Text,
		UploadedAt: h.uploadedAt(c.UserContext(), doc.ID),
	})
}

// HandlePDF handles GET /resumes/:id/pdf
func (h *ResumeHandler) HandlePDF(c *fiber.Ctx) error {
	doc, err := h.find(c)
	if err != nil {
		return h.lookupError(c, err)
	}

	path, err := h.storageService.GetFilePath(doc.Source(doc.ID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume ID",
		})
	}

	file, err := os.Open(path)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "PDF file not found",
		})
	}

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		file.Close()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "PDF file not found",
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	// fasthttp closes the stream once the response is written.
	return c.SendStream(file, int(info.Size()))
}

// HandleDelete handles DELETE /resumes/:id
func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.deleter.DeleteResume(c.UserContext(), id); err != nil {
		return h.lookupError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Resume deleted",
		"id":      id,
	})
}

func (h *ResumeHandler) find(c *fiber.Ctx) (*models.ResumeDocument, error) {
	id := c.Params("id")
	docs, err := h.index.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, services.ErrDocumentNotFound
	}
	return &docs[0], nil
}

// uploadedAt reads one resume's ingestion time from the catalog.
func (h *ResumeHandler) uploadedAt(ctx context.Context, id string) string {
	if h.catalog == nil {
		return formatUploadedAt(time.Time{}, false)
	}

	row, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repositories.ErrResumeNotFound) {
			h.logger.Warn("failed to read resume catalog", zap.String("id", id), zap.Error(err))
		}
		return formatUploadedAt(time.Time{}, false)
	}

	return formatUploadedAt(row.IngestedAt, true)
}

func formatUploadedAt(t time.Time, ok bool) string {
	if !ok {
		return "Unknown"
	}
	return t.Format(time.RFC3339)
}

func (h *ResumeHandler) lookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrDocumentNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resume not found",
		})
	}

	h.logger.Error("failed to look up resume", zap.String("id", c.Params("id")), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to load resume",
	})
}
