// Package vectormath implements the normalization and batched cosine
// similarity primitives the search engines build on. No BLAS binding
// is present anywhere in the retrieval pack's dependency set, so these
// are naive loops; see DESIGN.md for why that's the right call here.
package vectormath

import (
	"math"

	"github.com/kailas-cloud/vectura/internal/domain"
)

// Normalize returns v scaled to unit L2 norm. It fails with
// domain.ErrInvalidInput if the norm is zero or non-finite.
func Normalize(v []float32) ([]float32, error) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, domain.Invalid("zero norm")
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// BatchedCosine computes, for a row-major N×D matrix of pre-normalized
// document vectors and a pre-normalized query of length D, the cosine
// similarity of every document to the query. Since both operands are
// unit vectors this is a single dot product per row, i.e. the matrix
// product matrix·query.
func BatchedCosine(queryNormalized []float32, matrix []float32, n, d int) ([]float32, error) {
	if len(queryNormalized) != d {
		return nil, domain.Invalid("query length does not match dimension")
	}
	if len(matrix) != n*d {
		return nil, domain.Invalid("matrix size does not match n*d")
	}
	scores := make([]float32, n)
	for i := 0; i < n; i++ {
		row := matrix[i*d : i*d+d]
		var dot float32
		for j := 0; j < d; j++ {
			dot += row[j] * queryNormalized[j]
		}
		scores[i] = dot
	}
	return scores, nil
}
