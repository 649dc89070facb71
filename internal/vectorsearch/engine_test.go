package vectorsearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/storage/memory"
)

func mustOpts(t *testing.T, numResults int, threshold *float32) domain.SearchOptions {
	t.Helper()
	opts, err := domain.NewSearchOptions(numResults, threshold)
	if err != nil {
		t.Fatalf("NewSearchOptions: %v", err)
	}
	return opts
}

func addDoc(t *testing.T, store *memory.Storage, id, text string, vec []float32) {
	t.Helper()
	ctx := context.Background()
	if err := store.SaveDocument(ctx, domain.New(id, text, vec, time.Now().UTC())); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
}

func TestEngine_FullMemorySearch_ScoresAndOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addDoc(t, store, "a", "a", []float32{1, 0})
	addDoc(t, store, "b", "b", []float32{0.8, 0.6})
	addDoc(t, store, "c", "c", []float32{0, 1})

	e := New(domain.FullMemoryStrategy(), nil)
	results, err := e.Search(ctx, domain.VectorQuery([]float32{1, 0}), store, mustOpts(t, 3, nil))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 || results[0].ID != "a" {
		t.Fatalf("got %+v, want a first", results)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("results not sorted descending: %+v", results)
		}
	}
}

func TestEngine_ThresholdFilter(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addDoc(t, store, "a", "a", []float32{1, 0})
	addDoc(t, store, "b", "b", []float32{0.8, 0.6})
	addDoc(t, store, "c", "c", []float32{0, 1})

	threshold := float32(0.9)
	e := New(domain.FullMemoryStrategy(), nil)
	results, err := e.Search(ctx, domain.VectorQuery([]float32{1, 0}), store, mustOpts(t, 3, &threshold))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("got %+v, want only a", results)
	}
}

func TestEngine_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addDoc(t, store, "a", "a", []float32{1, 0, 0})

	e := New(domain.FullMemoryStrategy(), nil)
	_, err := e.Search(ctx, domain.VectorQuery([]float32{1, 0}), store, mustOpts(t, 1, nil))
	var dm *domain.DimensionMismatchError
	if !errors.As(err, &dm) {
		t.Fatalf("got %v, want DimensionMismatchError", err)
	}
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if s.err != nil {
		return domain.BatchEmbeddingResult{}, s.err
	}
	embs := make([][]float32, len(texts))
	for i := range texts {
		embs[i] = s.vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embs}, nil
}

func TestEngine_TextQuery_UsesEmbedder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	addDoc(t, store, "a", "a", []float32{1, 0})

	e := New(domain.FullMemoryStrategy(), &stubEmbedder{vec: []float32{1, 0}})
	results, err := e.Search(ctx, domain.TextQuery("hello"), store, mustOpts(t, 1, nil))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "a" {
		t.Fatalf("got %+v, want a", results)
	}
}

func TestEngine_TextQuery_NoEmbedder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	e := New(domain.FullMemoryStrategy(), nil)
	_, err := e.Search(ctx, domain.TextQuery("hello"), store, mustOpts(t, 1, nil))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}
