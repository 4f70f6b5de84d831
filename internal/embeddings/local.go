package embeddings

import (
	"context"
	"crypto/sha256"
	"math"
	"strings"
)

const localDimensions = 64

// LocalEmbedder generates deterministic embeddings without any external
// service, by hashing word tokens into a fixed-size frequency vector.
// It captures only coarse lexical overlap, which is enough for the
// default deployment where no embedding provider is configured, and for
// tests that need reproducible vectors.
type LocalEmbedder struct{}

// NewLocalEmbedder creates a LocalEmbedder.
func NewLocalEmbedder() *LocalEmbedder { return &LocalEmbedder{} }

func (e *LocalEmbedder) Name() string { return "local-hash" }

func (e *LocalEmbedder) Dimensions() int { return localDimensions }

func (e *LocalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashEmbed(text)
	}
	return out, nil
}

func hashEmbed(text string) []float32 {
	vec := make([]float32, localDimensions)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(tok))
		idx := int(sum[0]) % localDimensions
		vec[idx]++
	}

	// L2-normalize so chromem's cosine similarity behaves.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
