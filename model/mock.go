package model

import (
	"context"
	"math"
)

// MockEmbedder produces deterministic unit vectors derived from the text
// hash: the same text always maps to the same embedding. Used in tests and
// available as EMBED_BACKEND=mock for smoke runs without a model backend.
type MockEmbedder struct {
	dim int
}

func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &MockEmbedder{dim: dim}
}

func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		h := hashToken(text)
		vec := make([]float32, e.dim)
		for i := range vec {
			vec[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
		}
		normalize(vec)
		vecs = append(vecs, vec)
	}
	return vecs, nil
}
