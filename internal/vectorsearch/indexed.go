package vectorsearch

import (
	"context"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/metrics"
	"github.com/kailas-cloud/vectura/internal/storage"
)

// searchIndexed implements the indexed exact search path: prefetch a
// candidate shortlist (from the storage's index, or by falling back to
// a full scan), load the candidates, and re-rank them exactly.
func searchIndexed(ctx context.Context, strategy domain.MemoryStrategy, basicStore storage.Basic, store storage.Indexed, queryVector []float32, opts domain.SearchOptions) ([]domain.Result, error) {
	prefilterSize := opts.NumResults * strategy.CandidateMultiplier

	ids, ok, err := store.SearchVectorCandidates(ctx, queryVector, opts.NumResults, prefilterSize)
	if err != nil {
		return nil, domain.Storage("search vector candidates", err)
	}
	if !ok {
		metrics.SearchStrategyTotal.WithLabelValues("indexed_fallback").Inc()
		ids, err = fallbackCandidateIDs(ctx, basicStore, queryVector, prefilterSize)
		if err != nil {
			return nil, err
		}
	} else {
		metrics.SearchStrategyTotal.WithLabelValues("indexed").Inc()
	}
	if len(ids) == 0 {
		return nil, nil
	}

	docsByID, err := loadCandidatesBatched(ctx, store, ids, strategy.BatchSize, strategy.MaxConcurrentBatches)
	if err != nil {
		return nil, err
	}
	docs := make([]domain.Document, 0, len(docsByID))
	for _, id := range ids {
		if d, found := docsByID[id]; found {
			docs = append(docs, d)
		}
	}

	return rankDocuments(docs, queryVector, opts)
}

// fallbackCandidateIDs runs a full scan raised to prefilterSize with no
// threshold, used when the storage has no index to prefetch from.
func fallbackCandidateIDs(ctx context.Context, store storage.Basic, queryVector []float32, prefilterSize int) ([]string, error) {
	fallbackOpts, err := domain.NewSearchOptions(prefilterSize, nil)
	if err != nil {
		return nil, err
	}
	results, err := searchInMemory(ctx, store, queryVector, fallbackOpts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids, nil
}
