package vectorsearch

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/metrics"
	"github.com/kailas-cloud/vectura/internal/storage"
)

// loadCandidatesBatched loads ids in chunks of batchSize, running up to
// maxConcurrentBatches chunks at once per round. A round must fully
// complete, including its failures, before the next round starts.
func loadCandidatesBatched(ctx context.Context, store storage.Indexed, ids []string, batchSize, maxConcurrentBatches int) (map[string]domain.Document, error) {
	if len(ids) <= batchSize {
		docs, err := store.LoadDocumentsByID(ctx, ids)
		if err != nil {
			metrics.BatchLoadFailuresTotal.WithLabelValues("load_by_id").Inc()
			return nil, domain.LoadFailed(fmt.Sprintf("load candidate documents: %v", err))
		}
		return docs, nil
	}

	chunks := chunkIDs(ids, batchSize)

	result := make(map[string]domain.Document, len(ids))
	var mu sync.Mutex
	var failedBatches int

	for round := 0; round < len(chunks); round += maxConcurrentBatches {
		end := round + maxConcurrentBatches
		if end > len(chunks) {
			end = len(chunks)
		}

		var wg sync.WaitGroup
		for _, chunk := range chunks[round:end] {
			wg.Add(1)
			go func(ids []string) {
				defer wg.Done()
				docs, err := store.LoadDocumentsByID(ctx, ids)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failedBatches++
					metrics.BatchLoadFailuresTotal.WithLabelValues("load_by_id").Inc()
					return
				}
				for id, d := range docs {
					result[id] = d
				}
			}(chunk)
		}
		wg.Wait()
	}

	if len(result) == 0 && failedBatches > 0 {
		return nil, domain.LoadFailed(fmt.Sprintf("Failed to load any candidate documents (%d batch(es) failed)", failedBatches))
	}
	return result, nil
}

func chunkIDs(ids []string, batchSize int) [][]string {
	chunks := make([][]string, 0, (len(ids)+batchSize-1)/batchSize)
	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}
