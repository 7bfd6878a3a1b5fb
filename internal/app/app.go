// Package app wires configuration into the services shared by the API server
// and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	Index        services.VectorIndex
	Source       services.ResumeSource
	Storage      services.StorageService
	Catalog      repositories.ResumeRepository
	Pipeline     *services.IngestionPipeline
	Orchestrator *services.MatchOrchestrator

	db *gorm.DB
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
		Source:  services.NewDirSource(cfg.Resumes.Path),
		Storage: services.NewStorageService(cfg.Resumes.Path),
	}

	if err := a.Storage.EnsureUploadDir(); err != nil {
		return nil, err
	}

	providers := make(map[string]services.LanguageModel)
	provider := func(name string) (services.LanguageModel, error) {
		if lm, ok := providers[name]; ok {
			return lm, nil
		}
		lm, err := newLanguageModel(ctx, cfg, name)
		if err != nil {
			return nil, err
		}
		providers[name] = lm
		return lm, nil
	}

	embedder, err := provider(cfg.Embedding.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embeddings: %w", err)
	}

	var generator services.TextGenerator
	lm, err := provider(cfg.LLM.Provider)
	switch {
	case err == nil:
		generator = services.NewBoundedGenerator(lm, cfg.LLM.Timeout, logger)
	case errors.Is(err, services.ErrGeneratorNotConfigured):
		logger.Warn("text generation not configured, judgments will use the fallback", zap.String("provider", cfg.LLM.Provider))
	default:
		return nil, fmt.Errorf("failed to initialize text generation: %w", err)
	}

	switch cfg.Vector.Backend {
	case config.VectorBackendMemory:
		a.Index = services.NewMemoryIndex(embedder)
	default:
		a.Index, err = services.NewQdrantIndex(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			cfg.Embedding.Dimensions,
			embedder,
			logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize qdrant: %w", err)
		}
	}

	if err := a.Index.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize vector collection: %w", err)
	}
	logger.Info("vector index ready", zap.String("backend", cfg.Vector.Backend))

	ingestOpts := []services.IngestionOption{services.WithIngestionMetrics(a.Metrics)}
	if cfg.Database.Enabled {
		a.db, err = config.InitDatabase(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize resume catalog: %w", err)
		}
		a.Catalog = repositories.NewResumeRepository(a.db)
		ingestOpts = append(ingestOpts, services.WithIngestionRecorder(a.Catalog))
	}

	a.Pipeline = services.NewIngestionPipeline(services.NewPDFParserService(), logger, ingestOpts...)

	judge := services.NewJudgmentExtractor(generator, logger,
		services.WithGenerationParams(cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		services.WithJudgmentMetrics(a.Metrics),
	)
	a.Orchestrator = services.NewMatchOrchestrator(services.NewRetrievalEngine(), judge, logger,
		services.WithMatchConcurrency(cfg.Match.Concurrency),
		services.WithMatchMetrics(a.Metrics),
	)

	return a, nil
}

// Close releases the catalog connection.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

func newLanguageModel(ctx context.Context, cfg *config.Config, provider string) (services.LanguageModel, error) {
	switch provider {
	case config.ProviderOpenAI:
		return services.NewOpenAIService(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIURL, cfg.LLM.Model, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	default:
		return services.NewGeminiService(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.Model, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
}

// DeleteResume removes a resume from the index, the catalog and the resume
// folder. The file goes too, otherwise the next ingestion run would restore it.
func (a *App) DeleteResume(ctx context.Context, id string) error {
	docs, err := a.Index.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up resume: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: %s", services.ErrDocumentNotFound, id)
	}

	if err := a.Index.Delete(ctx, id); err != nil {
		return err
	}

	if a.Catalog != nil {
		if err := a.Catalog.Delete(ctx, id); err != nil {
			a.Logger.Warn("failed to delete resume from catalog", zap.String("id", id), zap.Error(err))
		}
	}

	if err := a.Storage.DeleteFile(id); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.Logger.Warn("failed to delete resume file", zap.String("id", id), zap.Error(err))
	}

	a.Logger.Info("resume deleted", zap.String("id", id))
	return nil
}
