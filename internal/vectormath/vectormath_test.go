package vectormath

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/vectura/internal/domain"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize([]float32{3, 4})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	var norm float64
	for _, x := range got {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("norm = %v, want ~1", norm)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	_, err := Normalize([]float32{0, 0, 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestBatchedCosine(t *testing.T) {
	q := []float32{1, 0}
	matrix := []float32{
		1, 0,
		0, 1,
		0.8, 0.6,
	}
	scores, err := BatchedCosine(q, matrix, 3, 2)
	if err != nil {
		t.Fatalf("BatchedCosine: %v", err)
	}
	want := []float32{1, 0, 0.8}
	for i := range want {
		if math.Abs(float64(scores[i]-want[i])) > 1e-4 {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestBatchedCosine_DimensionMismatch(t *testing.T) {
	_, err := BatchedCosine([]float32{1, 0, 0}, []float32{1, 0}, 1, 2)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}
