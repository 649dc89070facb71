package vectura

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/embedding/cache"
	"github.com/kailas-cloud/vectura/internal/embedding/instrumented"
	"github.com/kailas-cloud/vectura/internal/embedding/openai"
	"github.com/kailas-cloud/vectura/internal/hybrid"
	"github.com/kailas-cloud/vectura/internal/storage"
	"github.com/kailas-cloud/vectura/internal/storage/file"
	"github.com/kailas-cloud/vectura/internal/storage/memory"
	storageredis "github.com/kailas-cloud/vectura/internal/storage/redis"
	"github.com/kailas-cloud/vectura/internal/textengine/bleve"
	"github.com/kailas-cloud/vectura/internal/vectorsearch"
)

type storageBackend int

const (
	backendFile storageBackend = iota
	backendMemory
	backendRedis
)

type clientConfig struct {
	name          string
	directoryRoot string
	dimension     int
	strategy      domain.MemoryStrategy
	defaultOpts   domain.SearchOptions

	backend  storageBackend
	redisCfg storageredis.Config

	embedder domain.Embedder

	hybrid       bool
	bleveDir     string
	vectorWeight float32
	bm25Factor   float32

	logger     *zap.Logger
	registerer prometheus.Registerer
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		strategy:     domain.DefaultAutomaticStrategy(),
		defaultOpts:  domain.SearchOptions{NumResults: 10},
		backend:      backendFile,
		vectorWeight: 0.5,
		bm25Factor:   10.0,
	}
}

// Option configures a DB at construction time.
type Option func(*clientConfig)

// WithName sets the database's name, used as the file storage
// subdirectory and the Redis key/index prefix. Required.
func WithName(name string) Option {
	return func(c *clientConfig) { c.name = name }
}

// WithDirectory overrides the file storage provider's root directory.
// Ignored when the storage backend isn't file-based.
func WithDirectory(root string) Option {
	return func(c *clientConfig) { c.directoryRoot = root }
}

// WithDimension overrides the dimension instead of resolving it from
// the embedder at construction time (spec.md §3, "Dimension").
func WithDimension(d int) Option {
	return func(c *clientConfig) { c.dimension = d }
}

// WithMemoryStrategy selects the vector search engine's strategy
// (spec.md §3, "Memory Strategy"). Defaults to Automatic with
// implementation-chosen defaults.
func WithMemoryStrategy(strategy domain.MemoryStrategy) Option {
	return func(c *clientConfig) { c.strategy = strategy }
}

// WithDefaultSearchOptions sets the options Search falls back to when
// called with nil numResults/threshold.
func WithDefaultSearchOptions(opts domain.SearchOptions) Option {
	return func(c *clientConfig) { c.defaultOpts = opts }
}

// WithFileStorage selects the one-file-per-document storage provider
// (the default). root, when non-empty, overrides the storage root
// directory; equivalent to also passing WithDirectory(root).
func WithFileStorage(root string) Option {
	return func(c *clientConfig) {
		c.backend = backendFile
		c.directoryRoot = root
	}
}

// WithMemoryStorage selects the in-memory storage provider, for tests
// and transient databases. It does not implement the indexed
// capability, so the search engine always falls back to a full scan.
func WithMemoryStorage() Option {
	return func(c *clientConfig) { c.backend = backendMemory }
}

// WithRedisStorage selects the Redis-backed storage provider, which
// implements both the basic and the indexed capability (a FLAT vector
// index queried via FT.SEARCH ... KNN).
func WithRedisStorage(cfg storageredis.Config) Option {
	return func(c *clientConfig) {
		c.backend = backendRedis
		c.redisCfg = cfg
	}
}

// WithEmbedder supplies a custom embedder. Mutually exclusive with
// WithOpenAIEmbedder; the last option applied wins.
func WithEmbedder(e domain.Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithOpenAIEmbedder configures the built-in OpenAI-compatible
// embedder, decorated with request logging per the ambient stack.
func WithOpenAIEmbedder(cfg openai.Config, logger *zap.Logger) Option {
	return func(c *clientConfig) {
		provider := cfg.Provider
		if provider == "" {
			provider = "openai"
		}
		c.embedder = instrumented.New(openai.New(cfg), provider, cfg.Model, logger)
	}
}

// WithEmbeddingCache wraps the currently configured embedder with a
// SHA-256-keyed cache, so repeated text is embedded at most once. Must
// be applied after WithEmbedder/WithOpenAIEmbedder.
func WithEmbeddingCache(store cache.Store) Option {
	return func(c *clientConfig) {
		if c.embedder == nil {
			return
		}
		c.embedder = cache.New(c.embedder, store)
	}
}

// WithHybridSearch enables the hybrid search engine: vector similarity
// fused with lexical scoring from a bleve full-text index at
// bleveIndexPath (empty means in-memory only). vectorWeight is clamped
// to [0,1] and bm25NormalizationFactor to [1e-9, +inf) (spec.md §4.4).
func WithHybridSearch(bleveIndexPath string, vectorWeight, bm25NormalizationFactor float32) Option {
	return func(c *clientConfig) {
		c.hybrid = true
		c.bleveDir = bleveIndexPath
		c.vectorWeight = vectorWeight
		c.bm25Factor = bm25NormalizationFactor
	}
}

// WithLogger attaches a zap logger used by the file storage provider's
// cache/watch events and placed on the context passed to construction.
// It is not used by the orchestrator's per-call logging, which reads
// the logger from each call's own context, nor by embedders; the
// built-in OpenAI embedder takes its logger through WithOpenAIEmbedder.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithMetricsRegisterer registers the package's Prometheus instruments
// against reg at construction time. Omit to skip registration.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *clientConfig) { c.registerer = reg }
}

func buildStorage(cfg *clientConfig) (storage.Basic, func() error, error) {
	switch cfg.backend {
	case backendMemory:
		return memory.New(), nil, nil
	case backendRedis:
		dim := cfg.dimension
		if dim <= 0 {
			return nil, nil, fmt.Errorf("redis storage requires WithDimension (the vector index schema needs it up front)")
		}
		st, err := storageredis.New(cfg.redisCfg, cfg.name, dim)
		if err != nil {
			return nil, nil, err
		}
		return st, func() error { st.Close(); return nil }, nil
	default:
		logger := cfg.logger
		if logger == nil {
			logger = zap.NewNop()
		}
		st, err := file.New(cfg.directoryRoot, cfg.name, file.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return st, func() error { st.Close(); return nil }, nil
	}
}

func buildSearchEngine(cfg *clientConfig, vecEngine *vectorsearch.Engine) (orchestratorSearchEngine, error) {
	if !cfg.hybrid {
		return vecEngine, nil
	}

	var textEngine *bleve.Engine
	var err error
	if cfg.bleveDir == "" {
		textEngine, err = bleve.OpenMemOnly()
	} else {
		textEngine, err = bleve.Open(cfg.bleveDir)
	}
	if err != nil {
		return nil, fmt.Errorf("open text engine: %w", err)
	}

	return hybrid.New(vecEngine, textEngine, cfg.embedder, cfg.vectorWeight, cfg.bm25Factor), nil
}

// orchestratorSearchEngine mirrors orchestrator.SearchEngine locally so
// options.go doesn't need to import the orchestrator package just for
// this return type.
type orchestratorSearchEngine interface {
	Search(ctx context.Context, query domain.Query, store storage.Basic, opts domain.SearchOptions) ([]domain.Result, error)
	IndexDocument(ctx context.Context, doc domain.Document) error
	RemoveDocument(ctx context.Context, id string) error
}
