// Package similarity scores face embeddings against each other.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two non-empty embeddings differ in
// length.
var ErrDimensionMismatch = errors.New("embedding dimensions differ")

// Compare returns the cosine similarity of a and b clamped to [0, 1].
// An empty or all-zero vector on either side scores 0.
func Compare(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, nil
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	// Each side is divided by its largest magnitude first so the sums of
	// squares stay within [1, len] for any finite input.
	scaleA, scaleB := maxAbs(a), maxAbs(b)
	if !usableScale(scaleA) || !usableScale(scaleB) {
		return 0, nil
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := a[i]/scaleA, b[i]/scaleB
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	return clamp(dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}

func maxAbs(e []float64) float64 {
	var m float64
	for _, v := range e {
		if math.IsNaN(v) {
			return math.NaN()
		}
		if abs := math.Abs(v); abs > m {
			m = abs
		}
	}
	return m
}

// usableScale rejects all-zero vectors and non-finite components
func usableScale(scale float64) bool {
	return scale > 0 && !math.IsInf(scale, 0) && !math.IsNaN(scale)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Normalize returns a unit-length copy of embedding. Empty and zero vectors
// are returned unchanged.
func Normalize(embedding []float64) []float64 {
	if len(embedding) == 0 {
		return embedding
	}

	scale := maxAbs(embedding)
	if !usableScale(scale) {
		return embedding
	}

	var norm float64
	for _, v := range embedding {
		x := v / scale
		norm += x * x
	}

	norm = math.Sqrt(norm)
	normalized := make([]float64, len(embedding))
	for i, v := range embedding {
		normalized[i] = (v / scale) / norm
	}

	return normalized
}

// Usable reports whether e has exactly dim components, each finite and
// representable as float32, the storage precision of the vector column.
func Usable(e []float64, dim int) bool {
	if len(e) != dim {
		return false
	}
	for _, v := range e {
		if math.IsNaN(v) || math.Abs(v) > math.MaxFloat32 {
			return false
		}
	}
	return true
}
