// Package storage defines the contract the vector search engine and the
// orchestrator consume: a basic capability every provider implements, and
// an optional indexed capability some providers additionally expose.
// Capability detection is a runtime type assertion, not inheritance.
package storage

import (
	"context"

	"github.com/kailas-cloud/vectura/internal/domain"
)

// Basic is the capability every storage provider implements.
type Basic interface {
	// LoadDocuments returns every persisted document.
	LoadDocuments(ctx context.Context) ([]domain.Document, error)
	// SaveDocument upserts a single document by id.
	SaveDocument(ctx context.Context, doc domain.Document) error
	// SaveDocuments upserts a batch. Equivalent to per-document saves in
	// any order; implementations may optimize.
	SaveDocuments(ctx context.Context, docs []domain.Document) error
	// DeleteDocument removes a document by id. Succeeds whether or not
	// the id existed.
	DeleteDocument(ctx context.Context, id string) error
	// UpdateDocument upserts doc, preserving id.
	UpdateDocument(ctx context.Context, doc domain.Document) error
	// GetTotalDocumentCount reports the number of persisted documents.
	// Implementations may cache this.
	GetTotalDocumentCount(ctx context.Context) (int, error)
	// CreateStorageDirectoryIfNeeded prepares any on-disk or remote
	// structures the provider needs. Idempotent.
	CreateStorageDirectoryIfNeeded(ctx context.Context) error
}

// Indexed is an optional capability a Basic provider may additionally
// implement. The vector search engine probes for it with a type
// assertion before routing to the indexed search path.
type Indexed interface {
	// LoadDocumentsPage returns a page of documents in implementation-
	// defined but stable order.
	LoadDocumentsPage(ctx context.Context, offset, limit int) ([]domain.Document, error)
	// LoadDocumentsByID returns the subset of the requested ids that
	// exist. Missing ids are simply absent from the result, not errors.
	LoadDocumentsByID(ctx context.Context, ids []string) (map[string]domain.Document, error)
	// SearchVectorCandidates returns an approximate top-prefilterSize
	// shortlist of candidate ids for queryEmbedding, in descending
	// approximate-similarity order. ok is false when no index is
	// available and the caller should fall back to a full scan; a true
	// ok with an empty slice means the index exists but produced no hits.
	SearchVectorCandidates(ctx context.Context, queryEmbedding []float32, topK, prefilterSize int) (ids []string, ok bool, err error)
}
