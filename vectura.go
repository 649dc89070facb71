// Package vectura is an embeddable vector database: documents (text
// plus a dense embedding) are inserted, persisted, and retrieved by
// similarity to a query, with two search regimes — brute-force exact
// search for small corpora and indexed candidate prefetch with exact
// re-ranking for large ones — unified behind a single Search call that
// also supports a hybrid of vector similarity and lexical scoring.
package vectura

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/logger"
	"github.com/kailas-cloud/vectura/internal/metrics"
	"github.com/kailas-cloud/vectura/internal/orchestrator"
	"github.com/kailas-cloud/vectura/internal/vectorsearch"
)

// Document is the persisted unit of the database.
type Document = domain.Document

// Result is a single search hit, ordered descending by Score.
type Result = domain.Result

// SearchOptions bounds a single Search call.
type SearchOptions = domain.SearchOptions

// Query is either a Vector or Text search, built with VectorQuery/TextQuery.
type Query = domain.Query

// Error sentinels re-exported for errors.Is against the taxonomy in
// spec.md §7.
var (
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	ErrDocumentNotFound  = domain.ErrDocumentNotFound
	ErrLoadFailed        = domain.ErrLoadFailed
	ErrStorage           = domain.ErrStorage
)

// VectorQuery builds a Query carrying an already-computed vector.
func VectorQuery(v []float32) Query { return domain.VectorQuery(v) }

// TextQuery builds a Query carrying raw text for the configured embedder.
func TextQuery(s string) Query { return domain.TextQuery(s) }

// DB is the embeddable vector database facade. It serializes mutations
// (add/update/delete/reset) behind a single-writer lock in the
// orchestrator and allows concurrent, non-mutating searches.
type DB struct {
	orch  *orchestrator.Database
	close func() error
}

// New constructs a DB from functional options (see options.go). At
// least a name (WithName) and an embedder (WithOpenAIEmbedder or
// WithEmbedder) are required; storage defaults to the file provider
// and the memory strategy defaults to Automatic.
func New(ctx context.Context, opts ...Option) (*DB, error) {
	cfg := newClientConfig()
	for _, o := range opts {
		o(cfg)
	}
	if cfg.name == "" {
		return nil, errors.New("vectura: WithName is required")
	}
	if cfg.embedder == nil {
		return nil, errors.New("vectura: an embedder is required (WithEmbedder or WithOpenAIEmbedder)")
	}

	if cfg.registerer != nil {
		metrics.Register(cfg.registerer)
	}
	if cfg.logger != nil {
		ctx = logger.ContextWithLogger(ctx, cfg.logger)
	}

	store, closeStore, err := buildStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("vectura: build storage: %w", err)
	}

	vecEngine := vectorsearch.New(cfg.strategy, cfg.embedder)
	engine, err := buildSearchEngine(cfg, vecEngine)
	if err != nil {
		if closeStore != nil {
			_ = closeStore()
		}
		return nil, fmt.Errorf("vectura: build search engine: %w", err)
	}

	orchOpts := []orchestrator.Option{orchestrator.WithDefaultSearchOptions(cfg.defaultOpts)}
	if cfg.dimension > 0 {
		orchOpts = append(orchOpts, orchestrator.WithDimension(cfg.dimension))
	}
	orch, err := orchestrator.New(ctx, store, engine, cfg.embedder, orchOpts...)
	if err != nil {
		if closeStore != nil {
			_ = closeStore()
		}
		return nil, err
	}

	return &DB{orch: orch, close: closeStore}, nil
}

// Close releases any resources (storage connections, file watches)
// held by the configured storage provider. Safe to call even when no
// resource needs releasing.
func (db *DB) Close() error {
	if db.close == nil {
		return nil
	}
	return db.close()
}

// AddDocument embeds, normalizes, and persists a single document,
// returning its id (generated when the caller passes an empty id).
func (db *DB) AddDocument(ctx context.Context, text string, id string) (string, error) {
	return db.orch.AddDocument(ctx, text, id)
}

// AddDocuments embeds, normalizes, and persists a batch of documents in
// one embedder call, returning their ids in input order.
func (db *DB) AddDocuments(ctx context.Context, texts []string, ids []string) ([]string, error) {
	return db.orch.AddDocuments(ctx, texts, ids)
}

// Search resolves query against the configured strategy and returns
// ranked results. numResults and threshold, when nil, fall back to the
// database's configured defaults.
func (db *DB) Search(ctx context.Context, query Query, numResults *int, threshold *float32) ([]Result, error) {
	return db.orch.Search(ctx, query, numResults, threshold)
}

// UpdateDocument replaces a document's text and embedding, preserving
// its id and creation time.
func (db *DB) UpdateDocument(ctx context.Context, id, newText string) error {
	return db.orch.UpdateDocument(ctx, id, newText)
}

// DeleteDocuments removes documents by id. Idempotent.
func (db *DB) DeleteDocuments(ctx context.Context, ids []string) error {
	return db.orch.DeleteDocuments(ctx, ids)
}

// Reset deletes every document in the database.
func (db *DB) Reset(ctx context.Context) error {
	return db.orch.Reset(ctx)
}

// DocumentCount reports the number of persisted documents.
func (db *DB) DocumentCount(ctx context.Context) (int, error) {
	return db.orch.DocumentCount(ctx)
}

// GetAllDocuments returns every persisted document.
func (db *DB) GetAllDocuments(ctx context.Context) ([]Document, error) {
	return db.orch.GetAllDocuments(ctx)
}

