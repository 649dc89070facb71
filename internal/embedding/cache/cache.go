// Package cache implements a SHA-256-keyed caching decorator over a
// domain.Embedder, so repeated text is embedded at most once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sync"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/metrics"
)

const cacheKeyPrefix = "vectura:emb_cache:"

// Store is the narrow consumer interface for the embedding cache. The
// in-memory MemStore below satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemStore is an in-process Store, suitable for tests and single-process
// deployments.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Embedder decorates a domain.Embedder with a cache keyed by the
// SHA-256 hash of each input text. Dimension calls pass through
// unconditionally.
type Embedder struct {
	inner domain.Embedder
	store Store
}

// New creates a caching decorator.
func New(inner domain.Embedder, store Store) *Embedder {
	return &Embedder{inner: inner, store: store}
}

func (e *Embedder) Dimension(ctx context.Context) (int, error) {
	return e.inner.Dimension(ctx)
}

// EmbedBatch serves cached texts from the store and calls the inner
// embedder only for the texts that missed, then reassembles the result
// in the caller's original order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		key := cacheKey(text)
		if data, ok, err := e.store.Get(ctx, key); err == nil && ok {
			vec, err := bytesToVector(data)
			if err == nil {
				embeddings[i] = vec
				metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
				continue
			}
		}
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
	}

	res, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed cache miss batch: %w", err)
	}
	if len(res.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, domain.Invalid(fmt.Sprintf("embedder returned %d embeddings for %d texts", len(res.Embeddings), len(missTexts)))
	}

	for j, i := range missIdx {
		embeddings[i] = res.Embeddings[j]
		_ = e.store.Set(ctx, cacheKey(missTexts[j]), vectorToCacheBytes(res.Embeddings[j]))
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
