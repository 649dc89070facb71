package domain

import (
	"context"
	"fmt"
)

// Embedder is the external text vectorization contract (spec.md §6).
// Output dimensions must be identical across calls within one
// database's lifetime.
type Embedder interface {
	// Dimension reports the embedder's output length.
	Dimension(ctx context.Context) (int, error)
	// EmbedBatch vectorizes multiple texts. A correct implementation
	// returns exactly len(texts) embeddings; the orchestrator treats a
	// mismatched count as ErrInvalidInput.
	EmbedBatch(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// EmbedOne is a convenience wrapper for embedding a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	res, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed one: %w", err)
	}
	if len(res.Embeddings) != 1 {
		return nil, fmt.Errorf("embedder returned %d embeddings for 1 text", len(res.Embeddings))
	}
	return res.Embeddings[0], nil
}

// InstructionEmbedder is a domain decorator that prepends instruction
// text before embedding — some embedding models score higher when
// documents and queries are prefixed with a task instruction.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Dimension delegates to the inner embedder.
func (e *InstructionEmbedder) Dimension(ctx context.Context) (int, error) {
	return e.inner.Dimension(ctx)
}

// EmbedBatch prepends the instruction to each text and delegates.
func (e *InstructionEmbedder) EmbedBatch(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.instruction + t
	}
	res, err := e.inner.EmbedBatch(ctx, prefixed)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("instruction batch embed: %w", err)
	}
	return res, nil
}
