package vectordb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/aetheroos/aethero/internal/embeddings"
)

const collectionName = "memories"

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore backed by the
// given embedder.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: col, embedFunc: ef}, nil
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, minSimilarity float32, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, buildWhereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var out []SearchResult
	for _, r := range results {
		if minSimilarity > 0 && r.Similarity < minSimilarity {
			continue
		}
		out = append(out, SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		})
	}

	return out, nil
}

func (s *ChromemStore) DeleteByMinister(ctx context.Context, minister string) error {
	return s.collection.Delete(ctx, map[string]string{"minister": minister}, nil)
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/memories.gob.gz", true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	if err := s.db.ImportFromFile(dir+"/memories.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// metadataToMap flattens Metadata into the map[string]string chromem expects.
func metadataToMap(m Metadata) map[string]string {
	return map[string]string{
		"minister":    m.Minister,
		"memory_type": m.MemoryType,
		"session_id":  m.SessionID,
		"importance":  strconv.FormatFloat(m.Importance, 'f', -1, 64),
		"created_at":  m.CreatedAt.Format(time.RFC3339),
	}
}

func mapToMetadata(m map[string]string) Metadata {
	importance, _ := strconv.ParseFloat(m["importance"], 64)
	createdAt, _ := time.Parse(time.RFC3339, m["created_at"])

	return Metadata{
		Minister:   m["minister"],
		MemoryType: m["memory_type"],
		SessionID:  m["session_id"],
		Importance: importance,
		CreatedAt:  createdAt,
	}
}

func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil {
		return nil
	}

	where := make(map[string]string)
	if filter.Minister != nil {
		where["minister"] = *filter.Minister
	}
	if filter.MemoryType != nil {
		where["memory_type"] = *filter.MemoryType
	}
	if filter.SessionID != nil {
		where["session_id"] = *filter.SessionID
	}

	if len(where) == 0 {
		return nil
	}
	return where
}
