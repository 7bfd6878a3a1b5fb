package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
)

// Judger produces a Judgment for one resume. It must not fail.
type Judger interface {
	Judge(ctx context.Context, documentText, queryText string) models.Judgment
}

type MatchOrchestrator struct {
	retrieval   *RetrievalEngine
	judge       Judger
	concurrency int64
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

type MatchOption func(*MatchOrchestrator)

// WithMatchConcurrency bounds how many judgments of one request run at once.
func WithMatchConcurrency(n int) MatchOption {
	return func(m *MatchOrchestrator) {
		if n > 0 {
			m.concurrency = int64(n)
		}
	}
}

func WithMatchMetrics(mt *metrics.Metrics) MatchOption {
	return func(m *MatchOrchestrator) { m.metrics = mt }
}

func NewMatchOrchestrator(retrieval *RetrievalEngine, judge Judger, logger *zap.Logger, opts ...MatchOption) *MatchOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retrieval == nil {
		retrieval = NewRetrievalEngine()
	}
	m := &MatchOrchestrator{
		retrieval:   retrieval,
		judge:       judge,
		concurrency: 1,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match ranks the indexed resumes against query, best score first. Equal
// scores keep their retrieval order. Only index failures are returned as
// errors; judgment failures are already absorbed into fallback judgments.
func (m *MatchOrchestrator) Match(ctx context.Context, query string, index VectorIndex, kMax int) ([]models.MatchResult, error) {
	m.metrics.MatchRequest()

	count, err := index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count index: %w", err)
	}
	if count == 0 {
		m.logger.Info("match requested on empty index")
		return []models.MatchResult{}, nil
	}

	candidates, err := m.retrieval.Retrieve(ctx, query, index, kMax)
	if err != nil {
		return nil, err
	}

	m.logger.Info("judging candidates", zap.Int("candidates", len(candidates)), zap.Int64("concurrency", m.concurrency))

	results := make([]models.MatchResult, len(candidates))
	sem := semaphore.NewWeighted(m.concurrency)
	var wg sync.WaitGroup

	for i, c := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("match cancelled: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			judgment := m.judge.Judge(ctx, c.Document.Text, query)
			results[i] = models.NewMatchResult(c.Document, judgment)
		}()
	}
	wg.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	return results, nil
}
