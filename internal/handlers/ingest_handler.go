package handlers

import (
	"bufio"
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/services"
)

type IngestHandler struct {
	baseCtx  context.Context
	pipeline *services.IngestionPipeline
	source   services.ResumeSource
	index    services.VectorIndex
	logger   *zap.Logger
}

// NewIngestHandler ties every ingestion run to baseCtx; cancelling it stops
// runs still streaming when the server shuts down.
func NewIngestHandler(
	baseCtx context.Context,
	pipeline *services.IngestionPipeline,
	source services.ResumeSource,
	index services.VectorIndex,
	logger *zap.Logger,
) *IngestHandler {
	return &IngestHandler{
		baseCtx:  baseCtx,
		pipeline: pipeline,
		source:   source,
		index:    index,
		logger:   logger,
	}
}

// HandleIngest handles POST /ingest. Progress events are written one JSON
// object per line and flushed as they are produced; a failed write means the
// client went away and ends the run.
func (h *IngestHandler) HandleIngest(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// The request context is recycled once the handler returns.
		ctx, cancel := context.WithCancel(h.baseCtx)
		defer cancel()

		for event := range h.pipeline.Ingest(ctx, h.source, h.index) {
			line, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to encode progress event", zap.Error(err))
				return
			}
			line = append(line, '\n')

			if _, err := w.Write(line); err != nil {
				h.logger.Info("ingest stream closed by client", zap.Error(err))
				return
			}
			if err := w.Flush(); err != nil {
				h.logger.Info("ingest stream closed by client", zap.Error(err))
				return
			}
		}
	})

	return nil
}
