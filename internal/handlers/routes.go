package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Routes struct {
	Ingest  *IngestHandler
	Analyze *AnalyzeHandler
	Resumes *ResumeHandler
	Upload  *UploadHandler
}

func (r Routes) Register(api fiber.Router) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/ingest", r.Ingest.HandleIngest)
	api.Post("/analyze", r.Analyze.HandleAnalyze)
	api.Post("/upload", r.Upload.HandleUpload)

	api.Get("/resumes", r.Resumes.HandleList)
	api.Get("/resumes/:id", r.Resumes.HandleGet)
	api.Get("/resumes/:id/pdf", r.Resumes.HandlePDF)
	api.Delete("/resumes/:id", r.Resumes.HandleDelete)
}
