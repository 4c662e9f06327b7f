package model

import (
	"context"
	"fmt"
	"math"

	"rag/config"
)

// Embedder turns a batch of texts into a batch of fixed-dimension vectors.
// Implementations must be length- and order-preserving: result[i] is the
// vector for texts[i].
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder builds the embedding backend selected by EMBED_BACKEND. The
// choice is made once per process; callers never branch on backend identity.
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	switch cfg.EmbedBackend {
	case config.EmbedBackendRemote:
		return NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbedModel, cfg.EmbedTimeout, cfg.EmbedThrottle), nil
	case config.EmbedBackendLocal:
		return NewOnnxEmbedder(cfg.OnnxModelPath, cfg.EmbedDim)
	case config.EmbedBackendMock:
		return NewMockEmbedder(cfg.EmbedDim), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.EmbedBackend)
	}
}

// EmbedOne embeds a single text through the batch capability.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 text", len(vecs))
	}
	return vecs[0], nil
}

// normalize scales the vector to unit L2 norm in place so that cosine
// similarity reduces to a dot product. Zero vectors are left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
