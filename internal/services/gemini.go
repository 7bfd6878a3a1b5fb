package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel      = "gemini-2.5-flash"
	defaultGeminiEmbedModel = "text-embedding-004"
	maxEmbeddingInput       = 40000 // runes
)

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	dimensions int32
}

func NewGeminiService(ctx context.Context, apiKey, model, embedModel string, dimensions int) (LanguageModel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", ErrGeneratorNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	if embedModel = strings.TrimSpace(embedModel); embedModel == "" {
		embedModel = defaultGeminiEmbedModel
	}

	return &geminiService{
		client:     client,
		modelName:  model,
		embedModel: embedModel,
		dimensions: int32(dimensions),
	}, nil
}

// Embed implements Embedder.
func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbeddingInput)

	var config *genai.EmbedContentConfig
	if g.dimensions > 0 {
		config = &genai.EmbedContentConfig{OutputDimensionality: &g.dimensions}
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", classifyGeminiError(err))
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Generate implements TextGenerator.
func (g *geminiService) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(maxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", classifyGeminiError(err))
	}

	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || strings.TrimSpace(part.Text) == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", errors.New("no text content in response")
	}

	return text, nil
}

// classifyGeminiError marks overload, rate limit and server errors as transient.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isTransientStatus(apiErr.Code) {
		return fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}
	return err
}

func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
