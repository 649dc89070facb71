package bleve

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/vectura/internal/domain"
)

func TestEngine_IndexAndSearch(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	doc := domain.New("d1", "the quick brown fox jumps over the lazy dog", nil, time.Now().UTC())
	if err := e.IndexDocument(ctx, doc); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	opts, err := domain.NewSearchOptions(10, nil)
	if err != nil {
		t.Fatalf("NewSearchOptions: %v", err)
	}
	results, err := e.Search(ctx, domain.TextQuery("fox"), opts)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "d1" {
		t.Fatalf("got %+v, want one hit for d1", results)
	}
}

func TestEngine_RemoveDocument(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	ctx := context.Background()
	doc := domain.New("d1", "hello world", nil, time.Now().UTC())
	if err := e.IndexDocument(ctx, doc); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if err := e.RemoveDocument(ctx, "d1"); err != nil {
		t.Fatalf("RemoveDocument: %v", err)
	}

	opts, err := domain.NewSearchOptions(10, nil)
	if err != nil {
		t.Fatalf("NewSearchOptions: %v", err)
	}
	results, err := e.Search(ctx, domain.TextQuery("hello"), opts)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %+v, want no hits after removal", results)
	}
}

func TestEngine_RemoveDocument_Idempotent(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer e.Close()

	if err := e.RemoveDocument(context.Background(), "missing"); err != nil {
		t.Fatalf("RemoveDocument on missing id: %v", err)
	}
}
