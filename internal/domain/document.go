package domain

import "time"

// Document is the persisted unit of the database: identity, text, and a
// pre-normalized embedding. Documents are immutable by value —
// WithUpdatedContent produces a new Document with the same ID and
// CreatedAt, per the update invariant in the data model.
type Document struct {
	ID        string
	Text      string
	Embedding []float32
	CreatedAt time.Time
}

// New constructs a Document. The embedding must already be normalized;
// callers (the orchestrator) are responsible for normalizing at write
// time — "pre-normalization at write time" is an invariant, not an
// optimization.
func New(id, text string, embedding []float32, createdAt time.Time) Document {
	return Document{ID: id, Text: text, Embedding: embedding, CreatedAt: createdAt}
}

// WithUpdatedContent returns a copy of d with new text and embedding,
// preserving ID and CreatedAt.
func (d Document) WithUpdatedContent(text string, embedding []float32) Document {
	return Document{ID: d.ID, Text: text, Embedding: embedding, CreatedAt: d.CreatedAt}
}

// Result is a single search hit.
type Result struct {
	ID        string
	Text      string
	Score     float32
	CreatedAt time.Time
}
