package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"alfredoptarigan/resume-matcher/internal/models"
)

type memoryEntry struct {
	doc    models.ResumeDocument
	vector []float32
}

// memoryIndex is a process-local VectorIndex. Entries keep insertion order,
// which also breaks ranking ties.
type memoryIndex struct {
	embedder Embedder

	mu      sync.RWMutex
	entries []memoryEntry
	byID    map[string]int
}

func NewMemoryIndex(embedder Embedder) VectorIndex {
	return &memoryIndex{
		embedder: embedder,
		byID:     make(map[string]int),
	}
}

func (m *memoryIndex) EnsureCollection(ctx context.Context) error {
	return nil
}

// Upsert replaces an existing entry in place (last write wins).
func (m *memoryIndex) Upsert(ctx context.Context, doc models.ResumeDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}

	vector, err := m.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}

	entry := memoryEntry{doc: copyDocument(doc), vector: vector}

	m.mu.Lock()
	defer m.mu.Unlock()

	if pos, ok := m.byID[doc.ID]; ok {
		m.entries[pos] = entry
		return nil
	}
	m.byID[doc.ID] = len(m.entries)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryIndex) IDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, len(m.entries))
	for i, e := range m.entries {
		ids[i] = e.doc.ID
	}
	return ids, nil
}

func (m *memoryIndex) Get(ctx context.Context, ids ...string) ([]models.ResumeDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(ids) == 0 {
		docs := make([]models.ResumeDocument, len(m.entries))
		for i, e := range m.entries {
			docs[i] = copyDocument(e.doc)
		}
		return docs, nil
	}

	docs := make([]models.ResumeDocument, 0, len(ids))
	for _, id := range ids {
		if pos, ok := m.byID[id]; ok {
			docs = append(docs, copyDocument(m.entries[pos].doc))
		}
	}
	return docs, nil
}

func (m *memoryIndex) Query(ctx context.Context, text string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, nil
	}

	vector, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	m.mu.RLock()
	scored := make([]ScoredDocument, len(m.entries))
	for i, e := range m.entries {
		scored[i] = ScoredDocument{
			ResumeDocument: copyDocument(e.doc),
			Score:          cosineSimilarity(vector, e.vector),
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *memoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *memoryIndex) Delete(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := m.entries[:0]
	for _, e := range m.entries {
		if !drop[e.doc.ID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept

	m.byID = make(map[string]int, len(m.entries))
	for i, e := range m.entries {
		m.byID[e.doc.ID] = i
	}
	return nil
}

func copyDocument(doc models.ResumeDocument) models.ResumeDocument {
	meta := make(map[string]string, len(doc.Metadata))
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	doc.Metadata = meta
	return doc
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
