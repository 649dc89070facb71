// Package hybrid implements the hybrid search engine: it composes a
// vector engine and a lexical text engine, fusing their scores with a
// configurable weight.
package hybrid

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/storage"
)

const minNormalizationFactor = 1e-9

// VectorEngine is the narrow collaborator for the vector half of a
// hybrid search.
type VectorEngine interface {
	Search(ctx context.Context, query domain.Query, store storage.Basic, opts domain.SearchOptions) ([]domain.Result, error)
}

// TextEngine is the external lexical collaborator (spec.md §6): same
// shape as the vector engine, scored in a non-negative BM25-like range.
type TextEngine interface {
	Search(ctx context.Context, query domain.Query, opts domain.SearchOptions) ([]domain.Result, error)
	IndexDocument(ctx context.Context, doc domain.Document) error
	RemoveDocument(ctx context.Context, id string) error
}

// Engine fuses vector and text search results.
type Engine struct {
	vector                  VectorEngine
	text                    TextEngine
	embedder                Embedder
	vectorWeight            float32
	bm25NormalizationFactor float32
}

// Embedder turns hybrid text queries into vectors for the vector half
// of the fan-out.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// New constructs a hybrid Engine. vectorWeight is clamped to [0,1];
// bm25NormalizationFactor is clamped to [1e-9, +inf).
func New(vector VectorEngine, text TextEngine, embedder Embedder, vectorWeight, bm25NormalizationFactor float32) *Engine {
	if vectorWeight < 0 {
		vectorWeight = 0
	} else if vectorWeight > 1 {
		vectorWeight = 1
	}
	if bm25NormalizationFactor < minNormalizationFactor {
		bm25NormalizationFactor = minNormalizationFactor
	}
	return &Engine{
		vector:                  vector,
		text:                    text,
		embedder:                embedder,
		vectorWeight:            vectorWeight,
		bm25NormalizationFactor: bm25NormalizationFactor,
	}
}

// Search fuses vector and text results for a text query. A vector
// query is delegated entirely to the vector engine; no text scoring is
// possible without query text.
func (e *Engine) Search(ctx context.Context, query domain.Query, store storage.Basic, opts domain.SearchOptions) ([]domain.Result, error) {
	if query.IsVector() {
		return e.vector.Search(ctx, query, store, opts)
	}

	queryVector, err := e.embedQuery(ctx, query.Text)
	if err != nil {
		return nil, err
	}

	fanOutOpts, err := domain.NewSearchOptions(2*opts.NumResults, nil)
	if err != nil {
		return nil, err
	}

	var vectorResults, textResults []domain.Result
	var vectorErr, textErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorResults, vectorErr = e.vector.Search(ctx, domain.VectorQuery(queryVector), store, fanOutOpts)
	}()
	go func() {
		defer wg.Done()
		textResults, textErr = e.text.Search(ctx, domain.TextQuery(query.Text), fanOutOpts)
	}()
	wg.Wait()

	if vectorErr != nil {
		return nil, fmt.Errorf("hybrid vector search: %w", vectorErr)
	}
	if textErr != nil {
		return nil, fmt.Errorf("hybrid text search: %w", textErr)
	}

	return e.fuse(vectorResults, textResults, opts), nil
}

func (e *Engine) embedQuery(ctx context.Context, text string) ([]float32, error) {
	res, err := e.embedder.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed hybrid query: %w", err)
	}
	if len(res.Embeddings) != 1 {
		return nil, domain.Invalid(fmt.Sprintf("embedder returned %d embeddings for 1 text", len(res.Embeddings)))
	}
	return res.Embeddings[0], nil
}

func (e *Engine) fuse(vectorResults, textResults []domain.Result, opts domain.SearchOptions) []domain.Result {
	byID := make(map[string]domain.Result, len(vectorResults)+len(textResults))
	vectorScore := make(map[string]float32, len(vectorResults))
	textScore := make(map[string]float32, len(textResults))

	for _, r := range vectorResults {
		byID[r.ID] = r
		vectorScore[r.ID] = r.Score
	}
	for _, r := range textResults {
		if _, ok := byID[r.ID]; !ok {
			byID[r.ID] = r
		}
		textScore[r.ID] = r.Score
	}

	fused := make([]domain.Result, 0, len(byID))
	for id, r := range byID {
		vs := vectorScore[id]
		ts := clamp01(textScore[id] / e.bm25NormalizationFactor)
		hybridScore := e.vectorWeight*vs + (1-e.vectorWeight)*ts
		fused = append(fused, domain.Result{ID: id, Text: r.Text, Score: hybridScore, CreatedAt: r.CreatedAt})
	}

	if opts.Threshold != nil {
		filtered := fused[:0]
		for _, r := range fused {
			if r.Score >= *opts.Threshold {
				filtered = append(filtered, r)
			}
		}
		fused = filtered
	}

	sort.SliceStable(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	if len(fused) > opts.NumResults {
		fused = fused[:opts.NumResults]
	}
	return fused
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IndexDocument forwards to the text engine only; the vector engine is
// stateless over storage.
func (e *Engine) IndexDocument(ctx context.Context, doc domain.Document) error {
	return e.text.IndexDocument(ctx, doc)
}

// RemoveDocument forwards to the text engine only.
func (e *Engine) RemoveDocument(ctx context.Context, id string) error {
	return e.text.RemoveDocument(ctx, id)
}
