package instrumented

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/vectura/internal/domain"
)

type stubEmbedder struct {
	calls      int
	chunkSizes []int
	err        error
}

func (s *stubEmbedder) Dimension(context.Context) (int, error) { return 3, nil }

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	s.calls++
	s.chunkSizes = append(s.chunkSizes, len(texts))
	if s.err != nil {
		return domain.BatchEmbeddingResult{}, s.err
	}
	embs := make([][]float32, len(texts))
	for i := range texts {
		embs[i] = []float32{1, 0, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: embs, TotalTokens: len(texts)}, nil
}

func TestEmbedder_ChunksLargeBatches(t *testing.T) {
	inner := &stubEmbedder{}
	e := New(inner, "provider", "model", nil)

	texts := make([]string, maxAPIBatchSize+10)
	for i := range texts {
		texts[i] = "text"
	}

	res, err := e.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(res.Embeddings) != len(texts) {
		t.Fatalf("got %d embeddings, want %d", len(res.Embeddings), len(texts))
	}
	if inner.calls != 2 {
		t.Fatalf("inner.calls = %d, want 2", inner.calls)
	}
}

func TestEmbedder_PropagatesError(t *testing.T) {
	inner := &stubEmbedder{err: errors.New("boom")}
	e := New(inner, "provider", "model", nil)
	_, err := e.EmbedBatch(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbedder_EmptyBatch(t *testing.T) {
	inner := &stubEmbedder{}
	e := New(inner, "provider", "model", nil)
	res, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(res.Embeddings) != 0 {
		t.Fatalf("got %d embeddings, want 0", len(res.Embeddings))
	}
	if inner.calls != 0 {
		t.Fatalf("inner should not be called for an empty batch")
	}
}
