package domain

// Query is a tagged union: a search either supplies a vector directly or
// supplies text to be embedded by the configured embedder. Exactly one
// of Vector or Text is meaningful, selected by Kind.
type Query struct {
	Kind   QueryKind
	Vector []float32
	Text   string
}

// QueryKind discriminates a Query's active field.
type QueryKind int

const (
	// QueryKindVector means Query.Vector is populated.
	QueryKindVector QueryKind = iota
	// QueryKindText means Query.Text is populated and must be embedded.
	QueryKindText
)

// VectorQuery builds a Query carrying an already-computed vector.
func VectorQuery(v []float32) Query {
	return Query{Kind: QueryKindVector, Vector: v}
}

// TextQuery builds a Query carrying raw text for the embedder.
func TextQuery(s string) Query {
	return Query{Kind: QueryKindText, Text: s}
}

// IsVector reports whether q carries a vector directly.
func (q Query) IsVector() bool { return q.Kind == QueryKindVector }
