// Package memory implements an in-memory storage.Basic provider used
// for tests and transient databases. It does not implement the Indexed
// capability; the search engine falls back to full-memory scans.
package memory

import (
	"context"
	"sync"

	"github.com/kailas-cloud/vectura/internal/domain"
)

// Storage is a mutex-guarded map of documents by id.
type Storage struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{docs: make(map[string]domain.Document)}
}

func (s *Storage) LoadDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, nil
}

func (s *Storage) SaveDocument(_ context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *Storage) SaveDocuments(_ context.Context, docs []domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return nil
}

func (s *Storage) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *Storage) UpdateDocument(ctx context.Context, doc domain.Document) error {
	return s.SaveDocument(ctx, doc)
}

func (s *Storage) GetTotalDocumentCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *Storage) CreateStorageDirectoryIfNeeded(_ context.Context) error {
	return nil
}
