package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrGeneratorUnavailable marks a transient service condition (overload,
	// rate limit, 5xx) that is worth exactly one retry.
	ErrGeneratorUnavailable = errors.New("text generation temporarily unavailable")
	// ErrGeneratorNotConfigured is returned when no credentials were supplied.
	ErrGeneratorNotConfigured = errors.New("text generation is not configured")
)

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// LanguageModel is a provider offering both generation and embeddings.
type LanguageModel interface {
	TextGenerator
	Embedder
}

// BoundedGenerator applies a per-attempt timeout to an inner generator and
// retries once when the inner generator reports ErrGeneratorUnavailable.
type BoundedGenerator struct {
	inner      TextGenerator
	timeout    time.Duration
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewBoundedGenerator(inner TextGenerator, timeout time.Duration, logger *zap.Logger) *BoundedGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BoundedGenerator{
		inner:      inner,
		timeout:    timeout,
		retryDelay: time.Second,
		logger:     logger,
	}
}

func (b *BoundedGenerator) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if b.inner == nil {
		return "", ErrGeneratorNotConfigured
	}

	text, err := b.attempt(ctx, prompt, maxTokens, temperature)
	if err == nil || !errors.Is(err, ErrGeneratorUnavailable) {
		return text, err
	}

	b.logger.Warn("text generation unavailable, retrying once", zap.Error(err))

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(b.retryDelay):
	}

	text, err = b.attempt(ctx, prompt, maxTokens, temperature)
	if err != nil {
		return "", fmt.Errorf("failed after retry: %w", err)
	}
	return text, nil
}

func (b *BoundedGenerator) attempt(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return b.inner.Generate(ctx, prompt, maxTokens, temperature)
}
