package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

type AnalyzeHandler struct {
	orchestrator *services.MatchOrchestrator
	index        services.VectorIndex
	topK         int
	logger       *zap.Logger
}

func NewAnalyzeHandler(orchestrator *services.MatchOrchestrator, index services.VectorIndex, topK int, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		orchestrator: orchestrator,
		index:        index,
		topK:         topK,
		logger:       logger,
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.Description) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "description is required",
		})
	}

	results, err := h.orchestrator.Match(c.UserContext(), req.Description, h.index, h.topK)
	if err != nil {
		h.logger.Error("match failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze resumes",
		})
	}

	return c.JSON(models.AnalyzeResponse{Results: results})
}
