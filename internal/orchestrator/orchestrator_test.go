package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/vectura/internal/domain"
	"github.com/kailas-cloud/vectura/internal/storage/memory"
	"github.com/kailas-cloud/vectura/internal/vectorsearch"
)

// fakeEmbedder returns a fixed-dimension vector for every text, unless
// err or overrideCount force an edge case.
type fakeEmbedder struct {
	dim           int
	vec           []float32
	err           error
	overrideCount int // when > 0, EmbedBatch returns this many embeddings regardless of input
}

func (f *fakeEmbedder) Dimension(_ context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.dim, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	n := len(texts)
	if f.overrideCount > 0 {
		n = f.overrideCount
	}
	embs := make([][]float32, n)
	for i := range embs {
		v := f.vec
		if v == nil {
			v = make([]float32, f.dim)
			v[0] = 1
		}
		embs[i] = v
	}
	return domain.BatchEmbeddingResult{Embeddings: embs}, nil
}

func newTestDatabase(t *testing.T, embedder Embedder) *Database {
	t.Helper()
	store := memory.New()
	engine := vectorsearch.New(domain.FullMemoryStrategy(), nil)
	db, err := New(context.Background(), store, engine, embedder)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return db
}

func TestAddDocument_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	id, err := db.AddDocument(ctx, "hello world", "")
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	results, err := db.Search(ctx, domain.VectorQuery([]float32{1, 0}), nil, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != id {
		t.Fatalf("got %+v, want single result with id %q", results, id)
	}
}

func TestAddDocument_ExplicitIDOverwrites(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	id, err := db.AddDocument(ctx, "first", "dup")
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if id != "dup" {
		t.Fatalf("got id %q, want %q", id, "dup")
	}

	if _, err := db.AddDocument(ctx, "second", "dup"); err != nil {
		t.Fatalf("AddDocument (overwrite): %v", err)
	}

	docs, err := db.GetAllDocuments(ctx)
	if err != nil {
		t.Fatalf("GetAllDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].Text != "second" {
		t.Fatalf("got %+v, want a single document with text %q", docs, "second")
	}
}

func TestAddDocuments_RejectsEmptyBatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2})

	_, err := db.AddDocuments(ctx, nil, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestAddDocuments_RejectsWhitespaceOnlyText(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2})

	_, err := db.AddDocuments(ctx, []string{"   \t\n"}, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestAddDocuments_RejectsMismatchedIDsAndTexts(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2})

	_, err := db.AddDocuments(ctx, []string{"a", "b"}, []string{"only-one"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestAddDocuments_EmbedderCountMismatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}, overrideCount: 1})

	_, err := db.AddDocuments(ctx, []string{"a", "b"}, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
	want := "Embedder returned 1 for 2"
	if err.Error()[:len(want)] != want {
		t.Fatalf("got %q, want it to start with %q", err.Error(), want)
	}
}

func TestUpdateDocument_PreservesIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	id, err := db.AddDocument(ctx, "original", "")
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	docsBefore, err := db.GetAllDocuments(ctx)
	if err != nil {
		t.Fatalf("GetAllDocuments: %v", err)
	}
	createdAt := docsBefore[0].CreatedAt

	if err := db.UpdateDocument(ctx, id, "updated"); err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}

	docsAfter, err := db.GetAllDocuments(ctx)
	if err != nil {
		t.Fatalf("GetAllDocuments: %v", err)
	}
	if len(docsAfter) != 1 {
		t.Fatalf("got %d documents, want 1", len(docsAfter))
	}
	got := docsAfter[0]
	if got.ID != id {
		t.Fatalf("got id %q, want %q", got.ID, id)
	}
	if got.Text != "updated" {
		t.Fatalf("got text %q, want %q", got.Text, "updated")
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("got createdAt %v, want unchanged %v", got.CreatedAt, createdAt)
	}
}

func TestUpdateDocument_UnknownIDReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	err := db.UpdateDocument(ctx, "missing", "anything")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("got %v, want ErrDocumentNotFound", err)
	}
}

func TestUpdateDocument_RejectsWhitespaceOnlyText(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	id, err := db.AddDocument(ctx, "original", "")
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	err = db.UpdateDocument(ctx, id, "  ")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestDeleteDocuments_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	id, err := db.AddDocument(ctx, "to delete", "")
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	if err := db.DeleteDocuments(ctx, []string{id}); err != nil {
		t.Fatalf("DeleteDocuments (first): %v", err)
	}
	if err := db.DeleteDocuments(ctx, []string{id, "never-existed"}); err != nil {
		t.Fatalf("DeleteDocuments (repeat, unknown id): %v", err)
	}

	count, err := db.DocumentCount(ctx)
	if err != nil {
		t.Fatalf("DocumentCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("got count %d, want 0", count)
	}
}

func TestReset_DeletesEveryDocument(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	if _, err := db.AddDocuments(ctx, []string{"a", "b", "c"}, nil); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	if err := db.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	count, err := db.DocumentCount(ctx)
	if err != nil {
		t.Fatalf("DocumentCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("got count %d, want 0", count)
	}
}

func TestSearch_VectorQueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t, &fakeEmbedder{dim: 2, vec: []float32{1, 0}})

	_, err := db.Search(ctx, domain.VectorQuery([]float32{1, 0, 0}), nil, nil)
	var dm *domain.DimensionMismatchError
	if !errors.As(err, &dm) {
		t.Fatalf("got %v, want DimensionMismatchError", err)
	}
}

func TestNew_EmbedderErrorResolvingDimension(t *testing.T) {
	store := memory.New()
	engine := vectorsearch.New(domain.FullMemoryStrategy(), nil)
	_, err := New(context.Background(), store, engine, &fakeEmbedder{err: errors.New("boom")})
	if err == nil {
		t.Fatal("expected an error when the embedder cannot report its dimension")
	}
}
