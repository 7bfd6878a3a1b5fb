package services

import (
	"context"
	"fmt"

	"alfredoptarigan/resume-matcher/internal/models"
)

const DefaultTopK = 10

// Candidate is one retrieved resume with its 1-based similarity rank.
type Candidate struct {
	Document models.ResumeDocument
	Rank     int
	Score    float32
}

// RetrievalEngine issues a top-k similarity query. Ranking is entirely the
// index's; results keep the order the index returned them in.
type RetrievalEngine struct{}

func NewRetrievalEngine() *RetrievalEngine {
	return &RetrievalEngine{}
}

func (r *RetrievalEngine) Retrieve(ctx context.Context, query string, index VectorIndex, kMax int) ([]Candidate, error) {
	if kMax <= 0 {
		kMax = DefaultTopK
	}

	count, err := index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count index: %w", err)
	}

	k := min(kMax, count)
	if k == 0 {
		return []Candidate{}, nil
	}

	scored, err := index.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	candidates := make([]Candidate, len(scored))
	for i, s := range scored {
		candidates[i] = Candidate{
			Document: s.ResumeDocument,
			Rank:     i + 1,
			Score:    s.Score,
		}
	}
	return candidates, nil
}
