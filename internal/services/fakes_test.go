package services

import (
	"context"
	"errors"
	"hash/fnv"
	"iter"
	"strings"
	"sync"
	"unicode"

	"alfredoptarigan/resume-matcher/internal/models"
)

// hashEmbedder is a deterministic bag-of-words embedder.
type hashEmbedder struct {
	dims int
	err  error
}

func (h *hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if h.err != nil {
		return nil, h.err
	}
	dims := h.dims
	if dims == 0 {
		dims = 64
	}
	vec := make([]float32, dims)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(word))
		vec[f.Sum32()%uint32(dims)]++
	}
	return vec, nil
}

// mapSource serves resumes from memory in the order of names.
type mapSource struct {
	names   []string
	files   map[string][]byte
	listErr error
	readErr map[string]error
	reads   []string
}

func (m *mapSource) List(ctx context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]string(nil), m.names...), nil
}

func (m *mapSource) Read(ctx context.Context, name string) ([]byte, error) {
	m.reads = append(m.reads, name)
	if err := m.readErr[name]; err != nil {
		return nil, err
	}
	data, ok := m.files[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return data, nil
}

func (m *mapSource) Location() string {
	return "memory"
}

// textParser treats the file bytes as the extracted text.
type textParser struct{}

func (textParser) ExtractText(data []byte) (string, error) {
	if strings.TrimSpace(string(data)) == "" {
		return "", ErrNoTextContent
	}
	return string(data), nil
}

// flakyIndex wraps a VectorIndex and fails selected operations.
type flakyIndex struct {
	VectorIndex
	idsErr    error
	countErr  error
	upsertErr map[string]error
}

func (f *flakyIndex) IDs(ctx context.Context) ([]string, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.VectorIndex.IDs(ctx)
}

func (f *flakyIndex) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.VectorIndex.Count(ctx)
}

func (f *flakyIndex) Upsert(ctx context.Context, doc models.ResumeDocument) error {
	if err := f.upsertErr[doc.ID]; err != nil {
		return err
	}
	return f.VectorIndex.Upsert(ctx, doc)
}

// scriptedGenerator returns canned responses in order; the last one repeats.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string
	fn        func(ctx context.Context, prompt string) (string, error)
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, prompt)
	fn := s.fn
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}

	var err error
	if len(s.errs) > 0 {
		err = s.errs[min(i, len(s.errs)-1)]
	}
	if err != nil {
		return "", err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	return s.responses[min(i, len(s.responses)-1)], nil
}

func (s *scriptedGenerator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestIndex() VectorIndex {
	return NewMemoryIndex(&hashEmbedder{})
}

func collect(seq iter.Seq[models.IngestionProgress]) []models.IngestionProgress {
	var events []models.IngestionProgress
	for e := range seq {
		events = append(events, e)
	}
	return events
}
