package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-matcher/internal/models"
)

type recorderFunc func(ctx context.Context, doc models.ResumeDocument) error

func (f recorderFunc) RecordIngested(ctx context.Context, doc models.ResumeDocument) error {
	return f(ctx, doc)
}

func successes(events []models.IngestionProgress) []string {
	var files []string
	for _, e := range events {
		if e.IsSuccess() {
			files = append(files, e.File)
		}
	}
	return files
}

func TestIngestExtractableAndCorruptResume(t *testing.T) {
	source := &mapSource{
		names: []string{"a.pdf", "b.pdf"},
		files: map[string][]byte{
			"a.pdf": []byte("Go developer with Kubernetes experience"),
			"b.pdf": []byte("   "),
		},
	}
	index := newTestIndex()
	pipeline := NewIngestionPipeline(textParser{}, nil)

	events := collect(pipeline.Ingest(context.Background(), source, index))

	require.Len(t, events, 7)

	assert.Equal(t, models.StageReading, events[0].Stage)
	assert.Equal(t, "a.pdf", events[0].File)
	assert.Equal(t, 0, *events[0].Percent)
	assert.Equal(t, 1, *events[0].Current)
	assert.Equal(t, 2, *events[0].Total)

	assert.Equal(t, models.StageEmbedding, events[1].Stage)
	assert.Equal(t, 25, *events[1].Percent)

	assert.True(t, events[2].IsSuccess())
	assert.Equal(t, 50, *events[2].Percent)

	assert.Equal(t, models.StageReading, events[3].Stage)
	assert.Equal(t, "b.pdf", events[3].File)
	assert.Equal(t, 50, *events[3].Percent)

	assert.Equal(t, models.StageEmbedding, events[4].Stage)
	assert.Equal(t, 75, *events[4].Percent)

	assert.Equal(t, models.ProgressError, events[5].Status)
	assert.Equal(t, "b.pdf", events[5].File)
	assert.Contains(t, events[5].Message, "Could not extract text from b.pdf")

	last := events[6]
	assert.Equal(t, models.ProgressComplete, last.Status)
	assert.Equal(t, 1, *last.Processed)
	assert.Equal(t, 2, *last.Total)
	assert.Equal(t, "Ingested 1 new resumes.", last.Message)

	docs, err := index.Get(context.Background(), "a.pdf")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.pdf", docs[0].Source(""))
}

func TestIngestIsIdempotent(t *testing.T) {
	source := &mapSource{
		names: []string{"one.pdf", "two.PDF"},
		files: map[string][]byte{
			"one.pdf": []byte("python data engineer"),
			"two.PDF": []byte("golang backend engineer"),
		},
	}
	index := newTestIndex()
	pipeline := NewIngestionPipeline(textParser{}, nil)

	first := collect(pipeline.Ingest(context.Background(), source, index))
	assert.ElementsMatch(t, []string{"one.pdf", "two.PDF"}, successes(first))

	second := collect(pipeline.Ingest(context.Background(), source, index))
	require.Len(t, second, 1)
	assert.Equal(t, models.ProgressComplete, second[0].Status)
	assert.Equal(t, 0, *second[0].Processed)
	assert.Equal(t, 2, *second[0].AlreadyIngested)
	assert.Equal(t, "All 2 resumes are already ingested. No new resumes to process.", second[0].Message)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIngestOnlyNewFiles(t *testing.T) {
	const n, m = 5, 2

	source := &mapSource{files: map[string][]byte{}}
	index := newTestIndex()
	for i := range n {
		name := fmt.Sprintf("resume-%d.pdf", i)
		source.names = append(source.names, name)
		source.files[name] = []byte(fmt.Sprintf("candidate %d skills", i))
		if i < m {
			require.NoError(t, index.Upsert(context.Background(), models.ResumeDocument{ID: name, Text: "old"}))
		}
	}

	events := collect(NewIngestionPipeline(textParser{}, nil).Ingest(context.Background(), source, index))

	assert.Len(t, successes(events), n-m)
	assert.NotContains(t, source.reads, "resume-0.pdf")
	assert.NotContains(t, source.reads, "resume-1.pdf")

	var completes []models.IngestionProgress
	for _, e := range events {
		if e.Status == models.ProgressComplete {
			completes = append(completes, e)
		}
	}
	require.Len(t, completes, 1)
	assert.Equal(t, n-m, *completes[0].Processed)
	assert.Equal(t, n-m, *completes[0].Total)
}

func TestIngestSkipsNonPDF(t *testing.T) {
	source := &mapSource{
		names: []string{"notes.txt", "photo.png"},
		files: map[string][]byte{"notes.txt": []byte("text")},
	}

	events := collect(NewIngestionPipeline(textParser{}, nil).Ingest(context.Background(), source, newTestIndex()))

	require.Len(t, events, 1)
	assert.Equal(t, models.ProgressComplete, events[0].Status)
	assert.Equal(t, "No PDF resumes found in the folder.", events[0].Message)
	assert.Nil(t, events[0].AlreadyIngested)
	assert.Empty(t, source.reads)
}

func TestIngestPerFileErrorsContinue(t *testing.T) {
	source := &mapSource{
		names: []string{"unreadable.pdf", "rejected.pdf", "fine.pdf"},
		files: map[string][]byte{
			"rejected.pdf": []byte("some text"),
			"fine.pdf":     []byte("more text"),
		},
		readErr: map[string]error{"unreadable.pdf": errors.New("permission denied")},
	}
	index := &flakyIndex{
		VectorIndex: newTestIndex(),
		upsertErr:   map[string]error{"rejected.pdf": errors.New("index full")},
	}

	events := collect(NewIngestionPipeline(textParser{}, nil).Ingest(context.Background(), source, index))

	var errs []models.IngestionProgress
	for _, e := range events {
		if e.Status == models.ProgressError {
			errs = append(errs, e)
		}
	}
	require.Len(t, errs, 2)
	assert.Equal(t, "unreadable.pdf", errs[0].File)
	assert.Contains(t, errs[0].Message, "Could not read unreadable.pdf")
	assert.Equal(t, "rejected.pdf", errs[1].File)
	assert.Contains(t, errs[1].Message, "Error adding rejected.pdf")

	assert.Equal(t, []string{"fine.pdf"}, successes(events))

	last := events[len(events)-1]
	assert.Equal(t, models.ProgressComplete, last.Status)
	assert.Equal(t, 1, *last.Processed)
	assert.Equal(t, 3, *last.Total)
}

func TestIngestTerminalErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  *mapSource
		index   VectorIndex
		message string
	}{
		{
			name:    "missing directory",
			source:  &mapSource{listErr: fmt.Errorf("%w: ./data/resumes", ErrSourceNotFound)},
			index:   newTestIndex(),
			message: "Resumes directory not found: memory",
		},
		{
			name:    "index unavailable",
			source:  &mapSource{names: []string{"a.pdf"}},
			index:   &flakyIndex{VectorIndex: newTestIndex(), idsErr: errors.New("connection refused")},
			message: "Error getting collection: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := collect(NewIngestionPipeline(textParser{}, nil).Ingest(context.Background(), tt.source, tt.index))

			require.Len(t, events, 1)
			assert.Equal(t, models.ProgressError, events[0].Status)
			assert.Equal(t, tt.message, events[0].Message)
		})
	}
}

func TestIngestStopsWhenConsumerStops(t *testing.T) {
	source := &mapSource{
		names: []string{"a.pdf", "b.pdf", "c.pdf"},
		files: map[string][]byte{
			"a.pdf": []byte("alpha"),
			"b.pdf": []byte("beta"),
			"c.pdf": []byte("gamma"),
		},
	}
	index := newTestIndex()

	for e := range NewIngestionPipeline(textParser{}, nil).Ingest(context.Background(), source, index) {
		if e.IsSuccess() {
			break
		}
	}

	assert.Equal(t, []string{"a.pdf"}, source.reads)
	ids, err := index.IDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, ids)
}

func TestIngestStopsOnCancel(t *testing.T) {
	source := &mapSource{
		names: []string{"a.pdf", "b.pdf"},
		files: map[string][]byte{"a.pdf": []byte("alpha"), "b.pdf": []byte("beta")},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []models.IngestionProgress
	for e := range NewIngestionPipeline(textParser{}, nil).Ingest(ctx, source, newTestIndex()) {
		events = append(events, e)
		if e.IsSuccess() {
			cancel()
		}
	}

	assert.Equal(t, []string{"a.pdf"}, source.reads)
	for _, e := range events {
		assert.NotEqual(t, models.ProgressComplete, e.Status)
	}
}

func TestIngestSequenceIsNotRestartable(t *testing.T) {
	source := &mapSource{
		names: []string{"a.pdf"},
		files: map[string][]byte{"a.pdf": []byte("alpha")},
	}
	seq := NewIngestionPipeline(textParser{}, nil).Ingest(context.Background(), source, newTestIndex())

	assert.NotEmpty(t, collect(seq))
	assert.Empty(t, collect(seq))
	assert.Len(t, source.reads, 1)
}

func TestIngestRecordsCommittedResumes(t *testing.T) {
	source := &mapSource{
		names: []string{"a.pdf", "b.pdf"},
		files: map[string][]byte{"a.pdf": []byte("alpha"), "b.pdf": []byte("")},
	}

	var recorded []string
	recorder := recorderFunc(func(ctx context.Context, doc models.ResumeDocument) error {
		recorded = append(recorded, doc.ID)
		return errors.New("catalog down")
	})

	events := collect(NewIngestionPipeline(textParser{}, nil, WithIngestionRecorder(recorder)).
		Ingest(context.Background(), source, newTestIndex()))

	assert.Equal(t, []string{"a.pdf"}, recorded)
	assert.Equal(t, []string{"a.pdf"}, successes(events))
}
