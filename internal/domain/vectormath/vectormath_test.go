package vectormath

import (
	"math"
	"testing"
)

func TestCosine_Identical(t *testing.T) {
	v := []float64{0.5, 0.3, 0.2}
	if got := Cosine(v, v); math.Abs(got-1) > 1e-9 {
		t.Errorf("cosine of identical vectors = %f, want 1", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	a := []float64{1, 0}
	b := []float64{0, 1}
	if got := Cosine(a, b); math.Abs(got) > 1e-9 {
		t.Errorf("cosine of orthogonal vectors = %f, want 0", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	a := []float64{1, 2}
	b := []float64{-1, -2}
	if got := Cosine(a, b); math.Abs(got+1) > 1e-9 {
		t.Errorf("cosine of opposite vectors = %f, want -1", got)
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	if got := Cosine([]float64{1, 2}, []float64{1}); got != 0 {
		t.Errorf("cosine with mismatched dims = %f, want 0", got)
	}
}

func TestCosine_ZeroVector(t *testing.T) {
	if got := Cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Errorf("cosine with zero vector = %f, want 0", got)
	}
}

func TestCosineScore_Range(t *testing.T) {
	a := []float64{1, 0}
	cases := [][]float64{{1, 0}, {0, 1}, {-1, 0}}
	want := []float64{1, 0.5, 0}
	for i, b := range cases {
		if got := CosineScore(a, b); math.Abs(got-want[i]) > 1e-9 {
			t.Errorf("CosineScore(%v) = %f, want %f", b, got, want[i])
		}
	}
}
