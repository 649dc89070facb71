// Package orchestrator implements the database facade (spec.md §4.5):
// the document lifecycle, dimension resolution, pre-normalization at
// write time, and fan-out to storage and the search engines.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/logger"
	"github.com/kailas-cloud/vectura/internal/metrics"
	"github.com/kailas-cloud/vectura/internal/storage"
	"github.com/kailas-cloud/vectura/internal/vectormath"
)

// Embedder is the narrow collaborator the orchestrator needs to turn
// text into vectors.
type Embedder interface {
	Dimension(ctx context.Context) (int, error)
	EmbedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// SearchEngine is the narrow collaborator consumed by Search; both the
// plain vector engine and the hybrid engine satisfy it.
type SearchEngine interface {
	Search(ctx context.Context, query domain.Query, store storage.Basic, opts domain.SearchOptions) ([]domain.Result, error)
	IndexDocument(ctx context.Context, doc domain.Document) error
	RemoveDocument(ctx context.Context, id string) error
}

// Database is the orchestrator: the single entry point that enforces
// the lifecycle and concurrency invariants in front of a storage
// provider and a search engine.
type Database struct {
	store     storage.Basic
	engine    SearchEngine
	embedder  Embedder
	dimension int

	defaultOpts domain.SearchOptions

	writeMu sync.Mutex
}

// Option configures a Database at construction time.
type Option func(*Database)

// WithDimension overrides the dimension instead of resolving it from
// the embedder (spec.md §3, "Dimension").
func WithDimension(d int) Option {
	return func(db *Database) { db.dimension = d }
}

// WithDefaultSearchOptions sets the options applied when Search is
// called without explicit numResults/threshold.
func WithDefaultSearchOptions(opts domain.SearchOptions) Option {
	return func(db *Database) { db.defaultOpts = opts }
}

// New constructs a Database. The dimension is resolved from the
// embedder's reported dimension unless WithDimension overrides it.
func New(ctx context.Context, store storage.Basic, engine SearchEngine, embedder Embedder, opts ...Option) (*Database, error) {
	db := &Database{
		store:       store,
		engine:      engine,
		embedder:    embedder,
		defaultOpts: domain.SearchOptions{NumResults: 10},
	}
	for _, opt := range opts {
		opt(db)
	}

	if db.dimension <= 0 {
		dim, err := embedder.Dimension(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve embedder dimension: %w", err)
		}
		db.dimension = dim
	}

	if err := store.CreateStorageDirectoryIfNeeded(ctx); err != nil {
		return nil, fmt.Errorf("prepare storage: %w", err)
	}

	return db, nil
}

// AddDocument is a convenience wrapper over AddDocuments for a single text.
func (db *Database) AddDocument(ctx context.Context, text string, id string) (string, error) {
	var ids []string
	if id != "" {
		ids = []string{id}
	}
	added, err := db.AddDocuments(ctx, []string{text}, ids)
	if err != nil {
		return "", err
	}
	return added[0], nil
}

// AddDocuments embeds, validates, normalizes, persists, and indexes a
// batch of new documents (spec.md §4.5).
func (db *Database) AddDocuments(ctx context.Context, texts []string, ids []string) ([]string, error) {
	start := time.Now()
	ids, err := db.addDocuments(ctx, texts, ids)
	recordOutcome("add_documents", start, err)
	logOutcome(ctx, "add_documents", err)
	return ids, err
}

func (db *Database) addDocuments(ctx context.Context, texts []string, ids []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, domain.Invalid("texts must not be empty")
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, domain.Invalid("text must contain at least one non-whitespace character")
		}
	}
	if ids != nil && len(ids) != len(texts) {
		return nil, domain.Invalid("ids and texts must have the same length")
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	res, err := db.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, domain.Invalid(fmt.Sprintf("Embedder returned %d for %d", len(res.Embeddings), len(texts)))
	}

	now := time.Now().UTC()
	docs := make([]domain.Document, len(texts))
	resultIDs := make([]string, len(texts))
	for i, text := range texts {
		id := ""
		if ids != nil {
			id = ids[i]
		}
		if id == "" {
			id = uuid.NewString()
		}

		if len(res.Embeddings[i]) != db.dimension {
			return nil, domain.NewDimensionMismatch(db.dimension, len(res.Embeddings[i]))
		}
		normalized, err := vectormath.Normalize(res.Embeddings[i])
		if err != nil {
			return nil, err
		}

		docs[i] = domain.New(id, text, normalized, now)
		resultIDs[i] = id
	}

	if err := db.store.SaveDocuments(ctx, docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if err := db.engine.IndexDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("index document %s: %w", doc.ID, err)
		}
	}

	return resultIDs, nil
}

// Search resolves search options against configured defaults and
// delegates to the search engine.
func (db *Database) Search(ctx context.Context, query domain.Query, numResults *int, threshold *float32) ([]domain.Result, error) {
	start := time.Now()
	results, err := db.search(ctx, query, numResults, threshold)
	recordOutcome("search", start, err)
	logOutcome(ctx, "search", err)
	return results, err
}

func (db *Database) search(ctx context.Context, query domain.Query, numResults *int, threshold *float32) ([]domain.Result, error) {
	n := db.defaultOpts.NumResults
	if numResults != nil {
		n = *numResults
	}
	t := db.defaultOpts.Threshold
	if threshold != nil {
		t = threshold
	}
	opts, err := domain.NewSearchOptions(n, t)
	if err != nil {
		return nil, err
	}

	if query.IsVector() && len(query.Vector) != db.dimension {
		return nil, domain.NewDimensionMismatch(db.dimension, len(query.Vector))
	}

	return db.engine.Search(ctx, query, db.store, opts)
}

// UpdateDocument replaces a document's text and embedding, preserving
// id and createdAt (spec.md §4.5).
func (db *Database) UpdateDocument(ctx context.Context, id, newText string) error {
	start := time.Now()
	err := db.updateDocument(ctx, id, newText)
	recordOutcome("update_document", start, err)
	logOutcome(ctx, "update_document", err)
	return err
}

func (db *Database) updateDocument(ctx context.Context, id, newText string) error {
	if strings.TrimSpace(newText) == "" {
		return domain.Invalid("text must contain at least one non-whitespace character")
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	existing, err := db.loadOne(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.NewDocumentNotFound(id)
	}

	res, err := db.embedder.EmbedBatch(ctx, []string{newText})
	if err != nil {
		return fmt.Errorf("embed updated document: %w", err)
	}
	if len(res.Embeddings) != 1 {
		return domain.Invalid(fmt.Sprintf("Embedder returned %d for 1", len(res.Embeddings)))
	}
	if len(res.Embeddings[0]) != db.dimension {
		return domain.NewDimensionMismatch(db.dimension, len(res.Embeddings[0]))
	}
	normalized, err := vectormath.Normalize(res.Embeddings[0])
	if err != nil {
		return err
	}

	updated := existing.WithUpdatedContent(newText, normalized)
	if err := db.store.UpdateDocument(ctx, updated); err != nil {
		return err
	}
	if err := db.engine.RemoveDocument(ctx, id); err != nil {
		return fmt.Errorf("remove stale index entry %s: %w", id, err)
	}
	if err := db.engine.IndexDocument(ctx, updated); err != nil {
		return fmt.Errorf("index updated document %s: %w", id, err)
	}
	return nil
}

// loadOne prefers an indexed storage's LoadDocumentsByID, falling back
// to a full scan otherwise.
func (db *Database) loadOne(ctx context.Context, id string) (*domain.Document, error) {
	if indexed, ok := db.store.(storage.Indexed); ok {
		byID, err := indexed.LoadDocumentsByID(ctx, []string{id})
		if err != nil {
			return nil, domain.LoadFailed(err.Error())
		}
		if d, found := byID[id]; found {
			return &d, nil
		}
		return nil, nil
	}

	docs, err := db.store.LoadDocuments(ctx)
	if err != nil {
		return nil, domain.LoadFailed(err.Error())
	}
	for _, d := range docs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, nil
}

// DeleteDocuments removes documents by id from storage and from the
// search engine's index. Idempotent.
func (db *Database) DeleteDocuments(ctx context.Context, ids []string) error {
	start := time.Now()
	err := db.deleteDocuments(ctx, ids)
	recordOutcome("delete_documents", start, err)
	logOutcome(ctx, "delete_documents", err)
	return err
}

func (db *Database) deleteDocuments(ctx context.Context, ids []string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	for _, id := range ids {
		if err := db.store.DeleteDocument(ctx, id); err != nil {
			return err
		}
		if err := db.engine.RemoveDocument(ctx, id); err != nil {
			return fmt.Errorf("remove index entry %s: %w", id, err)
		}
	}
	return nil
}

// Reset deletes every document in the database.
func (db *Database) Reset(ctx context.Context) error {
	start := time.Now()
	err := db.reset(ctx)
	recordOutcome("reset", start, err)
	logOutcome(ctx, "reset", err)
	return err
}

func (db *Database) reset(ctx context.Context) error {
	docs, err := db.store.LoadDocuments(ctx)
	if err != nil {
		return domain.LoadFailed(err.Error())
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return db.deleteDocuments(ctx, ids)
}

// DocumentCount reports the number of persisted documents.
func (db *Database) DocumentCount(ctx context.Context) (int, error) {
	return db.store.GetTotalDocumentCount(ctx)
}

// GetAllDocuments returns every persisted document.
func (db *Database) GetAllDocuments(ctx context.Context) ([]domain.Document, error) {
	docs, err := db.store.LoadDocuments(ctx)
	if err != nil {
		return nil, domain.LoadFailed(err.Error())
	}
	return docs, nil
}

func recordOutcome(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.OperationsTotal.WithLabelValues(operation, status).Inc()
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func logOutcome(ctx context.Context, operation string, err error) {
	l := logger.FromContext(ctx)
	if err != nil {
		l.Error("orchestrator operation failed", zap.String("operation", operation), zap.Error(err))
		return
	}
	l.Debug("orchestrator operation completed", zap.String("operation", operation))
}
