package vectorsearch

import (
	"context"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/storage"
	"github.com/kailas-cloud/vectura/internal/vectormath"
)

// searchInMemory implements the full-memory exact search: load every
// document, normalize the query, score everything in one batched
// product, filter by threshold, sort, and truncate.
func searchInMemory(ctx context.Context, store storage.Basic, queryVector []float32, opts domain.SearchOptions) ([]domain.Result, error) {
	docs, err := store.LoadDocuments(ctx)
	if err != nil {
		return nil, domain.LoadFailed(err.Error())
	}
	return rankDocuments(docs, queryVector, opts)
}

func rankDocuments(docs []domain.Document, queryVector []float32, opts domain.SearchOptions) ([]domain.Result, error) {
	normalized, err := vectormath.Normalize(queryVector)
	if err != nil {
		return nil, err
	}
	scored, err := scoreDocuments(docs, normalized)
	if err != nil {
		return nil, err
	}
	return rankAndTruncate(scored, opts), nil
}
