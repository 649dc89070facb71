// Package file implements a storage.Basic provider persisting one JSON
// file per document, with an in-process write-through cache and an
// optional fsnotify watch over the storage directory so that documents
// written or removed by another process are picked up without a
// restart.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vectura/internal/domain"
)

const dirPerm = 0o700

// record is the on-disk shape of a document: <id>.json containing
// {id, text, embedding, createdAt}.
type record struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	CreatedAt int64     `json:"createdAt"`
}

// Storage persists documents under root/<name>/<id>.json.
type Storage struct {
	root   string
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]domain.Document

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger attaches a logger for debug-level cache and watch events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Storage) { s.logger = l }
}

// New creates a file-backed Storage rooted at directoryRoot/name. When
// directoryRoot is empty, the default root is the user documents
// directory under VecturaKit/<name>.
func New(directoryRoot, name string, opts ...Option) (*Storage, error) {
	if name == "" {
		return nil, domain.Invalid("database name must not be empty")
	}
	root := directoryRoot
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve default storage root: %w", err)
		}
		root = filepath.Join(home, "Documents", "VecturaKit")
	}
	s := &Storage{
		root:   filepath.Join(root, name),
		cache:  make(map[string]domain.Document),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Watch starts an fsnotify watch over the storage directory so external
// writes and deletes invalidate the in-process cache. It returns
// immediately; the watch runs until ctx is cancelled or Close is called.
func (s *Storage) Watch(ctx context.Context) error {
	if err := s.CreateStorageDirectoryIfNeeded(ctx); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(s.root); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", s.root, err)
	}
	s.mu.Lock()
	s.watcher = w
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()
	go s.watchLoop(ctx, w, done)
	return nil
}

func (s *Storage) watchLoop(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			s.handleEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			if err != nil {
				s.logger.Debug("file storage watch error", zap.Error(err))
			}
		}
	}
}

func (s *Storage) handleEvent(ev fsnotify.Event) {
	id := idFromPath(ev.Name)
	if id == "" {
		return
	}
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		s.mu.Lock()
		delete(s.cache, id)
		s.mu.Unlock()
		s.logger.Debug("file storage cache invalidated by external removal", zap.String("id", id))
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		doc, err := s.readDocument(id)
		if err != nil {
			s.logger.Debug("file storage failed to reload externally changed document", zap.String("id", id), zap.Error(err))
			return
		}
		s.mu.Lock()
		s.cache[id] = doc
		s.mu.Unlock()
		s.logger.Debug("file storage cache refreshed by external write", zap.String("id", id))
	}
}

// Close stops any active watch.
func (s *Storage) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.watcher = nil
}

func idFromPath(path string) string {
	base := filepath.Base(path)
	if filepath.Ext(base) != ".json" {
		return ""
	}
	return base[:len(base)-len(".json")]
}

func (s *Storage) path(id string) string {
	return filepath.Join(s.root, id+".json")
}

func (s *Storage) CreateStorageDirectoryIfNeeded(_ context.Context) error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return fmt.Errorf("create storage directory %s: %w", s.root, err)
	}
	return nil
}

func (s *Storage) LoadDocuments(_ context.Context) ([]domain.Document, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.LoadFailed(fmt.Sprintf("read storage directory: %v", err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Document, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := idFromPath(e.Name())
		if doc, ok := s.cache[id]; ok {
			out = append(out, doc)
			continue
		}
		doc, err := s.readDocument(id)
		if err != nil {
			return nil, domain.LoadFailed(fmt.Sprintf("read document %s: %v", id, err))
		}
		s.cache[id] = doc
		out = append(out, doc)
	}
	return out, nil
}

func (s *Storage) readDocument(id string) (domain.Document, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return domain.Document{}, err
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Document{}, err
	}
	return recordToDocument(r), nil
}

func (s *Storage) SaveDocument(ctx context.Context, doc domain.Document) error {
	if err := s.CreateStorageDirectoryIfNeeded(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(documentToRecord(doc))
	if err != nil {
		return domain.Storage("marshal document", err)
	}
	if err := os.WriteFile(s.path(doc.ID), data, 0o600); err != nil {
		return domain.Storage("write document file", err)
	}
	s.mu.Lock()
	s.cache[doc.ID] = doc
	s.mu.Unlock()
	return nil
}

func (s *Storage) SaveDocuments(ctx context.Context, docs []domain.Document) error {
	for _, d := range docs {
		if err := s.SaveDocument(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) DeleteDocument(_ context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return domain.Storage("delete document file", err)
	}
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
	return nil
}

func (s *Storage) UpdateDocument(ctx context.Context, doc domain.Document) error {
	return s.SaveDocument(ctx, doc)
}

func (s *Storage) GetTotalDocumentCount(ctx context.Context) (int, error) {
	docs, err := s.LoadDocuments(ctx)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

func documentToRecord(d domain.Document) record {
	return record{ID: d.ID, Text: d.Text, Embedding: d.Embedding, CreatedAt: d.CreatedAt.UnixNano()}
}

func recordToDocument(r record) domain.Document {
	return domain.New(r.ID, r.Text, r.Embedding, time.Unix(0, r.CreatedAt).UTC())
}
