package services

import (
	"context"
	"errors"

	"alfredoptarigan/resume-matcher/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

// VectorIndex stores resume text keyed by a stable id and answers nearest
// neighbour queries. Upsert by an existing id replaces the stored document.
type VectorIndex interface {
	// EnsureCollection creates the backing collection if it is absent.
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, doc models.ResumeDocument) error
	// IDs returns every stored id.
	IDs(ctx context.Context) ([]string, error)
	// Get returns the documents for ids, or every document when ids is empty.
	// Unknown ids are skipped.
	Get(ctx context.Context, ids ...string) ([]models.ResumeDocument, error)
	// Query returns at most k documents ranked by similarity to text.
	Query(ctx context.Context, text string, k int) ([]ScoredDocument, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, ids ...string) error
}

type ScoredDocument struct {
	models.ResumeDocument
	Score float32
}

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
