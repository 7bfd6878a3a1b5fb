package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	// Hugging Face's OpenAI-compatible router.
	defaultOpenAIBaseURL    = "https://router.huggingface.co/v1"
	defaultOpenAIModel      = "mistralai/Mistral-7B-Instruct-v0.2"
	defaultOpenAIEmbedModel = "text-embedding-3-small"
)

type openAIService struct {
	client     *openai.Client
	model      string
	embedModel string
	dimensions int
}

// NewOpenAIService returns a TextGenerator and Embedder backed by any
// OpenAI-compatible endpoint.
func NewOpenAIService(apiKey, baseURL, model, embedModel string, dimensions int) (LanguageModel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required: %w", ErrGeneratorNotConfigured)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	clientConfig.BaseURL = baseURL

	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}
	if embedModel = strings.TrimSpace(embedModel); embedModel == "" {
		embedModel = defaultOpenAIEmbedModel
	}

	return &openAIService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		embedModel: embedModel,
		dimensions: dimensions,
	}, nil
}

// Generate implements TextGenerator.
func (s *openAIService) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", classifyOpenAIError(err))
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in chat completion response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("no text content in response")
	}

	return text, nil
}

// Embed implements Embedder.
func (s *openAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbeddingInput)

	req := openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(s.embedModel),
		Dimensions: s.dimensions,
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", classifyOpenAIError(err))
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("empty embedding response")
	}

	return resp.Data[0].Embedding, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && isTransientStatus(apiErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && isTransientStatus(reqErr.HTTPStatusCode) {
		return fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}

	return err
}
