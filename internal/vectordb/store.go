// Package vectordb provides the semantic index over memory records.
package vectordb

import "context"

// VectorStore defines the interface for indexing and searching memory
// records by embedding similarity.
type VectorStore interface {
	// AddDocuments adds or updates documents in the index.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search performs a semantic search using the query text. Results
	// below minSimilarity are dropped; pass 0 to disable the cutoff.
	Search(ctx context.Context, query string, limit int, minSimilarity float32, filter *SearchFilter) ([]SearchResult, error)

	// DeleteByMinister removes all documents owned by the given minister.
	DeleteByMinister(ctx context.Context, minister string) error

	// Persist saves the index to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the index from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of indexed documents.
	Count() int
}
