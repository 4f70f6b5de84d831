// Package embeddings provides text embedding backends for the semantic
// memory index.
package embeddings

import "context"

// Embedder generates vector embeddings for memory content.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
