// Package vectorsearch implements the vector search engine: strategy
// routing between a full-memory brute-force scan and an indexed
// candidate-prefetch-then-rerank path, with batched concurrent
// candidate loading.
package vectorsearch

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/metrics"
	"github.com/kailas-cloud/vectura/internal/storage"
	"github.com/kailas-cloud/vectura/internal/vectormath"
)

// Embedder is the narrow collaborator the engine needs to turn a text
// query into a vector.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Engine routes a query through the configured memory strategy.
type Engine struct {
	strategy domain.MemoryStrategy
	embedder Embedder
}

// New constructs an Engine bound to a strategy and an embedder used to
// vectorize text queries.
func New(strategy domain.MemoryStrategy, embedder Embedder) *Engine {
	return &Engine{strategy: strategy, embedder: embedder}
}

// Search resolves query, decides full-memory vs indexed per the
// configured strategy, and returns ranked results.
func (e *Engine) Search(ctx context.Context, query domain.Query, store storage.Basic, opts domain.SearchOptions) ([]domain.Result, error) {
	queryVector, err := e.resolveQueryVector(ctx, query)
	if err != nil {
		return nil, err
	}

	indexed, ok := store.(storage.Indexed)
	useIndexed := e.shouldUseIndexed(ctx, store)

	if useIndexed && ok {
		return searchIndexed(ctx, e.strategy, store, indexed, queryVector, opts)
	}
	metrics.SearchStrategyTotal.WithLabelValues("full_memory").Inc()
	return searchInMemory(ctx, store, queryVector, opts)
}

func (e *Engine) resolveQueryVector(ctx context.Context, query domain.Query) ([]float32, error) {
	if query.IsVector() {
		return query.Vector, nil
	}
	if e.embedder == nil {
		return nil, domain.Invalid("text query requires an embedder")
	}
	res, err := e.embedder.EmbedBatch(ctx, []string{query.Text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(res.Embeddings) != 1 {
		return nil, domain.Invalid(fmt.Sprintf("embedder returned %d embeddings for 1 text", len(res.Embeddings)))
	}
	return res.Embeddings[0], nil
}

func (e *Engine) shouldUseIndexed(ctx context.Context, store storage.Basic) bool {
	if e.strategy.Kind == domain.StrategyFullMemory {
		return false
	}
	if e.strategy.Kind == domain.StrategyIndexed {
		return true
	}
	count, err := store.GetTotalDocumentCount(ctx)
	if err != nil {
		return false
	}
	return e.strategy.UseIndexed(count)
}

// IndexDocument is a no-op: the vector engine is stateless over
// storage, unlike the text engine in the hybrid path.
func (e *Engine) IndexDocument(_ context.Context, _ domain.Document) error { return nil }

// RemoveDocument is a no-op for the same reason as IndexDocument.
func (e *Engine) RemoveDocument(_ context.Context, _ string) error { return nil }

func rankAndTruncate(scored []domain.Result, opts domain.SearchOptions) []domain.Result {
	filtered := scored
	if opts.Threshold != nil {
		filtered = make([]domain.Result, 0, len(scored))
		for _, r := range scored {
			if r.Score >= *opts.Threshold {
				filtered = append(filtered, r)
			}
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Score > filtered[j].Score })
	if len(filtered) > opts.NumResults {
		filtered = filtered[:opts.NumResults]
	}
	return filtered
}

func documentsToMatrix(docs []domain.Document, dim int) ([]float32, error) {
	matrix := make([]float32, 0, len(docs)*dim)
	for _, d := range docs {
		if len(d.Embedding) != dim {
			return nil, domain.NewDimensionMismatch(dim, len(d.Embedding))
		}
		matrix = append(matrix, d.Embedding...)
	}
	if len(matrix) != len(docs)*dim {
		return nil, domain.Invalid("matrix size does not match document count * dimension")
	}
	return matrix, nil
}

func scoreDocuments(docs []domain.Document, queryNormalized []float32) ([]domain.Result, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	dim := len(queryNormalized)
	matrix, err := documentsToMatrix(docs, dim)
	if err != nil {
		return nil, err
	}
	scores, err := vectormath.BatchedCosine(queryNormalized, matrix, len(docs), dim)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Result, len(docs))
	for i, d := range docs {
		out[i] = domain.Result{ID: d.ID, Text: d.Text, Score: scores[i], CreatedAt: d.CreatedAt}
	}
	return out, nil
}
