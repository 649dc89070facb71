package hybrid

import (
	"context"
	"math"
	"testing"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/storage"
)

type stubVectorEngine struct {
	results []domain.Result
	err     error
}

func (s *stubVectorEngine) Search(context.Context, domain.Query, storage.Basic, domain.SearchOptions) ([]domain.Result, error) {
	return s.results, s.err
}

type stubTextEngine struct {
	results []domain.Result
	err     error
}

func (s *stubTextEngine) Search(context.Context, domain.Query, domain.SearchOptions) ([]domain.Result, error) {
	return s.results, s.err
}
func (s *stubTextEngine) IndexDocument(context.Context, domain.Document) error { return nil }
func (s *stubTextEngine) RemoveDocument(context.Context, string) error        { return nil }

type stubEmbedder struct {
	vec []float32
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	embs := make([][]float32, len(texts))
	for i := range texts {
		embs[i] = s.vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embs}, nil
}

func TestHybridFusion_Scenario(t *testing.T) {
	vector := &stubVectorEngine{results: []domain.Result{{ID: "d1", Text: "doc", Score: 1.0}}}
	text := &stubTextEngine{results: []domain.Result{{ID: "d1", Text: "doc", Score: 5.0}}}
	e := New(vector, text, &stubEmbedder{vec: []float32{1, 0}}, 0.5, 10.0)

	results, err := e.Search(context.Background(), domain.TextQuery("hello"), nil, mustOpts(t, 1, nil))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	want := float32(0.75)
	if math.Abs(float64(results[0].Score-want)) > 1e-4 {
		t.Fatalf("score = %v, want %v", results[0].Score, want)
	}
}

func TestHybridFusion_VectorQueryBypassesTextEngine(t *testing.T) {
	vector := &stubVectorEngine{results: []domain.Result{{ID: "d1", Score: 0.9}}}
	text := &stubTextEngine{err: errAlways{}}
	e := New(vector, text, &stubEmbedder{}, 0.5, 10.0)

	results, err := e.Search(context.Background(), domain.VectorQuery([]float32{1, 0}), nil, mustOpts(t, 1, nil))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "d1" {
		t.Fatalf("got %+v, want d1 from vector engine directly", results)
	}
}

func TestHybridFusion_MissingScoreDefaultsToZero(t *testing.T) {
	vector := &stubVectorEngine{results: []domain.Result{{ID: "d1", Score: 1.0}}}
	text := &stubTextEngine{results: nil}
	e := New(vector, text, &stubEmbedder{vec: []float32{1, 0}}, 0.5, 10.0)

	results, err := e.Search(context.Background(), domain.TextQuery("hello"), nil, mustOpts(t, 1, nil))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := float32(0.5)
	if math.Abs(float64(results[0].Score-want)) > 1e-4 {
		t.Fatalf("score = %v, want %v", results[0].Score, want)
	}
}

type errAlways struct{}

func (errAlways) Error() string { return "always fails" }

func mustOpts(t *testing.T, numResults int, threshold *float32) domain.SearchOptions {
	t.Helper()
	opts, err := domain.NewSearchOptions(numResults, threshold)
	if err != nil {
		t.Fatalf("NewSearchOptions: %v", err)
	}
	return opts
}
