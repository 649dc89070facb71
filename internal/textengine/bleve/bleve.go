// Package bleve implements the hybrid search engine's text engine
// collaborator (spec.md §6) over a github.com/blevesearch/bleve/v2
// index, scoring with bleve's built-in BM25-like relevance.
package bleve

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/kailas-cloud/vectura/internal/domain"
)

type indexedDocument struct {
	Text string `json:"text"`
}

// Engine wraps a bleve index exposing the hybrid TextEngine shape.
type Engine struct {
	index bleve.Index
}

// Open opens an existing index at path, or creates one with a text
// field mapping over the document's "text" field.
func Open(path string) (*Engine, error) {
	index, err := bleve.Open(path)
	if err == nil {
		return &Engine{index: index}, nil
	}

	mapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textField)
	mapping.AddDocumentMapping("document", docMapping)
	mapping.DefaultMapping = docMapping

	index, err = bleve.New(path, mapping)
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &Engine{index: index}, nil
}

// OpenMemOnly opens an in-memory index, for tests and transient databases.
func OpenMemOnly() (*Engine, error) {
	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create in-memory bleve index: %w", err)
	}
	return &Engine{index: index}, nil
}

// IndexDocument indexes or reindexes a document's text by id.
func (e *Engine) IndexDocument(_ context.Context, doc domain.Document) error {
	if err := e.index.Index(doc.ID, indexedDocument{Text: doc.Text}); err != nil {
		return fmt.Errorf("bleve index document: %w", err)
	}
	return nil
}

// RemoveDocument removes a document from the index by id. Idempotent.
func (e *Engine) RemoveDocument(_ context.Context, id string) error {
	if err := e.index.Delete(id); err != nil {
		return fmt.Errorf("bleve remove document: %w", err)
	}
	return nil
}

// Search runs a match query over the indexed text and returns up to
// opts.NumResults hits, scored non-negative by bleve's BM25-like relevance.
func (e *Engine) Search(_ context.Context, query domain.Query, opts domain.SearchOptions) ([]domain.Result, error) {
	if query.IsVector() {
		return nil, domain.Invalid("text engine requires a text query")
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query.Text))
	req.Size = opts.NumResults
	hits, err := e.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}
	out := make([]domain.Result, len(hits.Hits))
	for i, hit := range hits.Hits {
		out[i] = domain.Result{ID: hit.ID, Score: float32(hit.Score)}
	}
	return out, nil
}

// Close releases the underlying bleve index.
func (e *Engine) Close() error {
	return e.index.Close()
}
