package recengine

import "math"

// CosineSimilarity returns dot(a,b)/(|a||b|), the directional similarity
// between two equal-length vectors. When either vector has zero
// magnitude the similarity is defined as 0 rather than dividing by zero.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// padOrTruncate right-pads v with zeros up to size, or cuts it down to
// size when longer. The truncating branch can drop trailing dimensions;
// callers accept that as inherited alignment behavior.
func padOrTruncate(v []float64, size int) []float64 {
	if len(v) == size {
		return v
	}
	out := make([]float64, size)
	copy(out, v)
	return out
}
