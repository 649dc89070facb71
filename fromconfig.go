package vectura

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vectura/internal/config"
	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/embedding/cache"
	"github.com/kailas-cloud/vectura/internal/embedding/openai"
	storageredis "github.com/kailas-cloud/vectura/internal/storage/redis"
)

// NewFromConfig builds a DB from a loaded config.Config (internal/config),
// translating the recognized options in spec.md §6 into the
// corresponding functional Option; searchOptions.k1 and searchOptions.b
// are not passed on. logger, when non-nil, is attached
// via WithLogger and used to build the OpenAI embedder's instrumented
// decorator.
func NewFromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (*DB, error) {
	opts := []Option{WithName(cfg.Name)}

	if cfg.DirectoryURL != "" {
		opts = append(opts, WithDirectory(cfg.DirectoryURL))
	}
	if cfg.Dimension > 0 {
		opts = append(opts, WithDimension(cfg.Dimension))
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}

	strategy, err := strategyFromConfig(cfg.MemoryStrategy)
	if err != nil {
		return nil, fmt.Errorf("vectura: %w", err)
	}
	opts = append(opts, WithMemoryStrategy(strategy))

	defaultOpts, err := domain.NewSearchOptions(cfg.SearchOptions.DefaultNumResults, cfg.SearchOptions.MinThreshold)
	if err != nil {
		return nil, fmt.Errorf("vectura: %w", err)
	}
	opts = append(opts, WithDefaultSearchOptions(defaultOpts))

	switch cfg.Storage.Backend {
	case "memory":
		opts = append(opts, WithMemoryStorage())
	case "redis":
		opts = append(opts, WithRedisStorage(storageredis.Config{
			Addrs:    cfg.Storage.Redis.Addrs,
			Username: cfg.Storage.Redis.Username,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		}))
	default:
		opts = append(opts, WithFileStorage(cfg.DirectoryURL))
	}

	switch cfg.Embedding.Provider {
	case "", "openai":
		opts = append(opts, WithOpenAIEmbedder(openai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
		}, logger))
	default:
		return nil, fmt.Errorf("vectura: unsupported embedding provider %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Cache {
		opts = append(opts, WithEmbeddingCache(cache.NewMemStore()))
	}

	if cfg.SearchOptions.Hybrid {
		opts = append(opts, WithHybridSearch(cfg.SearchOptions.BleveIndexPath, cfg.SearchOptions.HybridWeight, cfg.SearchOptions.BM25NormalizationFactor))
	}

	return New(ctx, opts...)
}

func strategyFromConfig(m config.MemoryStrategyConfig) (domain.MemoryStrategy, error) {
	switch m.Kind {
	case "fullMemory":
		return domain.FullMemoryStrategy(), nil
	case "indexed":
		return domain.IndexedStrategy(m.CandidateMultiplier, m.BatchSize, m.MaxConcurrentBatches)
	case "automatic", "":
		return domain.AutomaticStrategy(m.Threshold, m.CandidateMultiplier, m.BatchSize, m.MaxConcurrentBatches)
	default:
		return domain.MemoryStrategy{}, fmt.Errorf("unknown memoryStrategy.kind %q", m.Kind)
	}
}
