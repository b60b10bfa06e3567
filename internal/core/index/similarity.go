package index

import "math"

// CosineSimilarity returns the cosine of the angle between a and b, or 0 if
// either is a zero vector. Lengths must match; callers check.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push parallel vectors just past 1
	return math.Max(-1, math.Min(1, sim))
}
