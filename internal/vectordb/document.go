package vectordb

import "time"

// Document is a memory record projected into the vector index.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// Metadata holds the indexable attributes of a memory record.
type Metadata struct {
	Minister   string
	MemoryType string
	SessionID  string
	Importance float64
	CreatedAt  time.Time
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter narrows semantic search results by record attributes.
type SearchFilter struct {
	Minister   *string
	MemoryType *string
	SessionID  *string
}
