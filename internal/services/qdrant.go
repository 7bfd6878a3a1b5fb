package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
)

const (
	payloadDocID = "doc_id"
	payloadText  = "text"

	scrollPageSize = 256
)

// pointNamespace scopes the name-based UUIDs derived from resume ids.
var pointNamespace = uuid.MustParse("6f1c4f3e-2b8a-4c51-9f0e-5a7d2c1b9e44")

type qdrantIndex struct {
	client         *qdrant.Client
	embedder       Embedder
	collectionName string
	vectorSize     uint64
	logger         *zap.Logger
}

func NewQdrantIndex(urlStr, apiKey, collectionName string, vectorSize int, embedder Embedder, logger *zap.Logger) (VectorIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantIndex{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
		vectorSize:     uint64(vectorSize),
		logger:         logger,
	}, nil
}

// PointID maps a resume id onto a stable Qdrant point id, so re-upserting the
// same filename overwrites the same point.
func PointID(docID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(docID)).String()
}

func pointID(docID string) *qdrant.PointId {
	return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: PointID(docID)}}
}

func (q *qdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Debug("qdrant collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

func (q *qdrantIndex) Upsert(ctx context.Context, doc models.ResumeDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}

	embedding, err := q.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}

	payload := map[string]any{
		payloadDocID: doc.ID,
		payloadText:  doc.Text,
	}
	for k, v := range doc.Metadata {
		if k != payloadDocID && k != payloadText {
			payload[k] = v
		}
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      pointID(doc.ID),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(payload),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

func (q *qdrantIndex) IDs(ctx context.Context) ([]string, error) {
	include := &qdrant.WithPayloadSelector{
		SelectorOptions: &qdrant.WithPayloadSelector_Include{
			Include: &qdrant.PayloadIncludeSelector{Fields: []string{payloadDocID}},
		},
	}

	points, err := q.scrollAll(ctx, include)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(points))
	for _, p := range points {
		if id := p.Payload[payloadDocID].GetStringValue(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (q *qdrantIndex) Get(ctx context.Context, ids ...string) ([]models.ResumeDocument, error) {
	var points []*qdrant.RetrievedPoint

	if len(ids) == 0 {
		all, err := q.scrollAll(ctx, qdrant.NewWithPayload(true))
		if err != nil {
			return nil, err
		}
		points = all
	} else {
		pointIDs := make([]*qdrant.PointId, len(ids))
		for i, id := range ids {
			pointIDs[i] = pointID(id)
		}

		found, err := q.client.Get(ctx, &qdrant.GetPoints{
			CollectionName: q.collectionName,
			Ids:            pointIDs,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get points: %w", err)
		}
		points = found
	}

	docs := make([]models.ResumeDocument, 0, len(points))
	for _, p := range points {
		docs = append(docs, documentFromPayload(p.Payload))
	}
	return docs, nil
}

func (q *qdrantIndex) Query(ctx context.Context, text string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, nil
	}

	embedding, err := q.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]ScoredDocument, 0, len(searchResult))
	for _, point := range searchResult {
		results = append(results, ScoredDocument{
			ResumeDocument: documentFromPayload(point.Payload),
			Score:          point.Score,
		})
	}

	return results, nil
}

func (q *qdrantIndex) Count(ctx context.Context) (int, error) {
	n, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

func (q *qdrantIndex) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	return nil
}

// scrollAll pages through the collection. Qdrant's scroll offset is
// inclusive, so each page asks for one extra point and uses it as the next
// offset.
func (q *qdrantIndex) scrollAll(ctx context.Context, payload *qdrant.WithPayloadSelector) ([]*qdrant.RetrievedPoint, error) {
	var (
		all    []*qdrant.RetrievedPoint
		offset *qdrant.PointId
	)

	for {
		page, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: q.collectionName,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(scrollPageSize + 1)),
			WithPayload:    payload,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scroll points: %w", err)
		}

		if len(page) <= scrollPageSize {
			return append(all, page...), nil
		}

		all = append(all, page[:scrollPageSize]...)
		offset = page[scrollPageSize].Id
	}
}

func documentFromPayload(payload map[string]*qdrant.Value) models.ResumeDocument {
	doc := models.ResumeDocument{Metadata: make(map[string]string)}

	for key, value := range payload {
		switch key {
		case payloadDocID:
			doc.ID = value.GetStringValue()
		case payloadText:
			doc.Text = value.GetStringValue()
		default:
			if s, ok := value.GetKind().(*qdrant.Value_StringValue); ok {
				doc.Metadata[key] = s.StringValue
			}
		}
	}

	return doc
}
