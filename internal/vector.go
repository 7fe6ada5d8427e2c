package internal

import "math"

// SearchResult is one ranked hit. Score is the cosine similarity in [-1, 1].
type SearchResult struct {
	Chunk Chunk
	Score float32
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	result := make([]float32, len(vec))
	norm := math.Sqrt(sum)
	if norm == 0 {
		copy(result, vec)
		return result
	}

	for i, v := range vec {
		result[i] = float32(float64(v) / norm)
	}
	return result
}

// dot assumes equal lengths.
func dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}
