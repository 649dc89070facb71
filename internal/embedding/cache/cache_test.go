package cache

import (
	"context"
	"testing"

	"github.com/kailas-cloud/vectura/internal/domain"
)

type countingEmbedder struct {
	calls int
	vec   []float32
}

func (c *countingEmbedder) Dimension(context.Context) (int, error) { return len(c.vec), nil }

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	c.calls++
	embs := make([][]float32, len(texts))
	for i := range texts {
		embs[i] = c.vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embs}, nil
}

func TestEmbedder_CachesRepeatedText(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{vec: []float32{1, 2, 3}}
	e := New(inner, NewMemStore())

	if _, err := e.EmbedBatch(ctx, []string{"hello"}); err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if _, err := e.EmbedBatch(ctx, []string{"hello"}); err != nil {
		t.Fatalf("EmbedBatch (second): %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner.calls = %d, want 1", inner.calls)
	}
}

func TestEmbedder_MixedHitAndMissPreservesOrder(t *testing.T) {
	ctx := context.Background()
	inner := &countingEmbedder{vec: []float32{1, 2}}
	e := New(inner, NewMemStore())

	if _, err := e.EmbedBatch(ctx, []string{"cached"}); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	inner.vec = []float32{3, 4}
	res, err := e.EmbedBatch(ctx, []string{"cached", "fresh"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("got %d embeddings, want 2", len(res.Embeddings))
	}
	if inner.calls != 2 {
		t.Fatalf("inner.calls = %d, want 2 (one warm, one fresh-only batch)", inner.calls)
	}
	if res.Embeddings[0][0] != 1 || res.Embeddings[1][0] != 3 {
		t.Fatalf("got %v, want the cached vector first and the fresh one second", res.Embeddings)
	}
}
