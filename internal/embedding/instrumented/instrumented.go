// Package instrumented decorates a domain.Embedder with request
// logging and batch chunking (budget tracking is out of scope here;
// see DESIGN.md).
package instrumented

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vectura/internal/domain"
)

// maxAPIBatchSize bounds how many texts are sent to the inner embedder
// in a single call.
const maxAPIBatchSize = 256

// Embedder wraps an inner domain.Embedder with debug/error logging and
// batch chunking.
type Embedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// New wraps inner with logging. A nil logger falls back to a no-op one.
func New(inner domain.Embedder, provider, model string, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{inner: inner, provider: provider, model: model, logger: logger}
}

func (e *Embedder) Dimension(ctx context.Context) (int, error) {
	return e.inner.Dimension(ctx)
}

// EmbedBatch chunks texts to maxAPIBatchSize, logging duration and
// token usage on success, and the failing chunk on error.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	result, err := e.embedChunked(ctx, texts)
	duration := time.Since(start)

	if err != nil {
		e.logger.Error("batch embedding failed",
			zap.String("provider", e.provider),
			zap.String("model", e.model),
			zap.Int("batch_size", len(texts)),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, err
	}

	e.logger.Debug("batch embedding completed",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.Duration("duration", duration),
		zap.Int("batch_size", len(texts)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

func (e *Embedder) embedChunked(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	var allEmbeddings [][]float32
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += maxAPIBatchSize {
		end := offset + maxAPIBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		chunk := texts[offset:end]

		chunkResult, err := e.inner.EmbedBatch(ctx, chunk)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("embed chunk at offset %d: %w", offset, err)
		}
		allEmbeddings = append(allEmbeddings, chunkResult.Embeddings...)
		totalPrompt += chunkResult.PromptTokens
		totalTokens += chunkResult.TotalTokens
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   allEmbeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}
