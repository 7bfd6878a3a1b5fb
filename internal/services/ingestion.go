package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
)

// IngestionRecorder is told about every resume committed to the index.
type IngestionRecorder interface {
	RecordIngested(ctx context.Context, doc models.ResumeDocument) error
}

type IngestionPipeline struct {
	parser   PDFParserService
	recorder IngestionRecorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

type IngestionOption func(*IngestionPipeline)

func WithIngestionRecorder(r IngestionRecorder) IngestionOption {
	return func(p *IngestionPipeline) { p.recorder = r }
}

func WithIngestionMetrics(m *metrics.Metrics) IngestionOption {
	return func(p *IngestionPipeline) { p.metrics = m }
}

func NewIngestionPipeline(parser PDFParserService, logger *zap.Logger, opts ...IngestionOption) *IngestionPipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &IngestionPipeline{parser: parser, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest returns the progress events of one ingestion run. Work happens only
// while the caller ranges over the sequence; breaking out of the loop stops the
// run after the file in flight. The sequence can be consumed once.
func (p *IngestionPipeline) Ingest(ctx context.Context, source ResumeSource, index VectorIndex) iter.Seq[models.IngestionProgress] {
	var consumed atomic.Bool

	return func(yield func(models.IngestionProgress) bool) {
		if !consumed.CompareAndSwap(false, true) {
			p.logger.Warn("ingestion sequence already consumed")
			return
		}
		p.run(ctx, source, index, yield)
	}
}

func (p *IngestionPipeline) run(ctx context.Context, source ResumeSource, index VectorIndex, yield func(models.IngestionProgress) bool) {
	existing, err := index.IDs(ctx)
	if err != nil {
		p.logger.Error("failed to read index snapshot", zap.Error(err))
		p.metrics.IngestionError("index")
		yield(models.IngestionProgress{
			Status:  models.ProgressError,
			Message: fmt.Sprintf("Error getting collection: %v", err),
		})
		return
	}

	names, err := source.List(ctx)
	if err != nil {
		p.logger.Error("failed to list resumes", zap.String("source", source.Location()), zap.Error(err))
		p.metrics.IngestionError("source")
		msg := fmt.Sprintf("Error listing resumes in %s: %v", source.Location(), err)
		if errors.Is(err, ErrSourceNotFound) {
			msg = fmt.Sprintf("Resumes directory not found: %s", source.Location())
		}
		yield(models.IngestionProgress{Status: models.ProgressError, Message: msg})
		return
	}

	present := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		present[id] = struct{}{}
	}

	var toProcess []string
	alreadyIngested := 0
	for _, name := range names {
		if !isPDF(name) {
			continue
		}
		if _, ok := present[name]; ok {
			alreadyIngested++
			continue
		}
		toProcess = append(toProcess, name)
	}

	total := len(toProcess)
	if total == 0 {
		yield(emptyRunEvent(alreadyIngested))
		return
	}

	p.logger.Info("ingestion started",
		zap.String("source", source.Location()),
		zap.Int("new", total),
		zap.Int("already_ingested", alreadyIngested),
	)

	processed := 0
	for i, name := range toProcess {
		if ctx.Err() != nil {
			p.logger.Info("ingestion cancelled", zap.Int("processed", processed), zap.Int("total", total))
			return
		}

		if !yield(processingEvent(name, i, total, models.StageReading, 100*i/total)) {
			return
		}

		ingested, more := p.ingestFile(ctx, source, index, name, i, total, yield)
		if ingested {
			processed++
		}
		if !more {
			return
		}
	}

	p.logger.Info("ingestion finished", zap.Int("processed", processed), zap.Int("total", total))

	yield(models.IngestionProgress{
		Status:    models.ProgressComplete,
		Message:   fmt.Sprintf("Ingested %d new resumes.", processed),
		Processed: models.IntPtr(processed),
		Total:     models.IntPtr(total),
	})
}

// ingestFile reads, extracts and upserts one resume, yielding the events after
// the reading stage. more is false once the caller stops consuming.
func (p *IngestionPipeline) ingestFile(
	ctx context.Context,
	source ResumeSource,
	index VectorIndex,
	name string,
	i, total int,
	yield func(models.IngestionProgress) bool,
) (ingested, more bool) {
	data, err := source.Read(ctx, name)
	if err != nil {
		p.logger.Warn("failed to read resume", zap.String("file", name), zap.Error(err))
		p.metrics.IngestionError("read")
		return false, yield(fileErrorEvent(name, fmt.Sprintf("Could not read %s: %v", name, err)))
	}

	text, err := p.parser.ExtractText(data)
	if err != nil {
		p.logger.Warn("failed to extract resume text", zap.String("file", name), zap.Error(err))
	}

	if !yield(processingEvent(name, i, total, models.StageEmbedding, (100*(2*i+1))/(2*total))) {
		return false, false
	}

	if strings.TrimSpace(text) == "" {
		p.metrics.IngestionError("extract")
		return false, yield(fileErrorEvent(name, fmt.Sprintf("Could not extract text from %s", name)))
	}

	doc := models.ResumeDocument{
		ID:       name,
		Text:     text,
		Metadata: map[string]string{models.MetadataSource: name},
	}

	if err := index.Upsert(ctx, doc); err != nil {
		p.logger.Error("failed to add resume to index", zap.String("file", name), zap.Error(err))
		p.metrics.IngestionError("upsert")
		return false, yield(fileErrorEvent(name, fmt.Sprintf("Error adding %s: %v", name, err)))
	}

	p.metrics.ResumeIngested()
	if p.recorder != nil {
		if err := p.recorder.RecordIngested(ctx, doc); err != nil {
			p.logger.Warn("failed to record ingested resume", zap.String("file", name), zap.Error(err))
		}
	}

	return true, yield(processingEvent(name, i, total, "", 100*(i+1)/total))
}

func processingEvent(name string, i, total int, stage models.ProgressStage, percent int) models.IngestionProgress {
	return models.IngestionProgress{
		Status:  models.ProgressProcessing,
		File:    name,
		Current: models.IntPtr(i + 1),
		Total:   models.IntPtr(total),
		Percent: models.IntPtr(percent),
		Stage:   stage,
	}
}

func fileErrorEvent(name, msg string) models.IngestionProgress {
	return models.IngestionProgress{
		Status:  models.ProgressError,
		File:    name,
		Message: msg,
	}
}

func emptyRunEvent(alreadyIngested int) models.IngestionProgress {
	event := models.IngestionProgress{
		Status:    models.ProgressComplete,
		Message:   "No PDF resumes found in the folder.",
		Processed: models.IntPtr(0),
		Total:     models.IntPtr(0),
	}
	if alreadyIngested > 0 {
		event.Message = fmt.Sprintf("All %d resumes are already ingested. No new resumes to process.", alreadyIngested)
		event.AlreadyIngested = models.IntPtr(alreadyIngested)
	}
	return event
}
