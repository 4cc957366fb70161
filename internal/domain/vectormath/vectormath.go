package vectormath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine similarity of two vectors in [-1, 1].
// Mismatched dimensions or zero-magnitude vectors yield 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	dot := floats.Dot(a, b)
	na := math.Sqrt(floats.Dot(a, a))
	nb := math.Sqrt(floats.Dot(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

// CosineScore maps cosine similarity into [0, 1] for use as a strategy score.
func CosineScore(a, b []float64) float64 {
	return (Cosine(a, b) + 1) / 2
}
