// Package memory implements the archivus memory store: durable ingestion
// of ministerial memories with keyword and optional semantic retrieval.
package memory

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aetheroos/aethero/internal/db"
	"github.com/aetheroos/aethero/internal/vectordb"
)

const defaultSearchLimit = 10

// Store persists memory records in SQLite and, when a vector index is
// attached, mirrors them into the semantic index on a best-effort basis.
type Store struct {
	db     *db.DB
	vector vectordb.VectorStore
}

// NewStore creates a Store backed by the given database. vector may be
// nil, in which case only keyword search is available.
func NewStore(database *db.DB, vector vectordb.VectorStore) *Store {
	return &Store{db: database, vector: vector}
}

// Ingest stores a new memory record unconditionally (no deduplication)
// and returns its id. The id is derived from the minister, content, and
// ingest timestamp, so repeated ingests of identical content produce
// distinct records.
func (s *Store) Ingest(ctx context.Context, content string, memType Type, minister string, metadata map[string]string, importance float64) (string, error) {
	now := time.Now().UTC()

	sum := sha256.Sum256([]byte(minister + content + now.Format(time.RFC3339Nano)))
	id := "mem_" + hex.EncodeToString(sum[:])[:16]

	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory_records (id, timestamp, memory_type, minister, content, metadata, importance)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		now.Format(time.RFC3339Nano),
		string(memType),
		minister,
		content,
		string(metaJSON),
		importance,
	)
	if err != nil {
		return "", fmt.Errorf("inserting memory record: %w", err)
	}

	// Mirror into the semantic index. Index failures never fail the ingest.
	if s.vector != nil {
		doc := vectordb.Document{
			ID:      id,
			Content: content,
			Metadata: vectordb.Metadata{
				Minister:   minister,
				MemoryType: string(memType),
				SessionID:  metadata["session_id"],
				Importance: importance,
				CreatedAt:  now,
			},
		}
		if err := s.vector.AddDocuments(ctx, []vectordb.Document{doc}); err != nil {
			log.Printf("memory: vector indexing of %s failed: %v", id, err)
		}
	}

	return id, nil
}

// GetByID retrieves a single memory record.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, memory_type, minister, content, metadata, importance
		FROM memory_records WHERE id = ?`, id)
	return scanRecord(row)
}

// Search performs a case-insensitive substring search over stored
// content, applies type and minister filters, and returns up to
// opts.Limit records ordered by importance then recency, both
// descending. opts.SimilarityThreshold is ignored here; see
// SearchOptions.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	clauses := []string{"instr(lower(content), lower(?)) > 0"}
	args := []any{opts.Query}

	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		clauses = append(clauses, "memory_type IN ("+strings.Join(placeholders, ",")+")")
	}
	if len(opts.Ministers) > 0 {
		placeholders := make([]string, len(opts.Ministers))
		for i, m := range opts.Ministers {
			placeholders[i] = "?"
			args = append(args, m)
		}
		clauses = append(clauses, "minister IN ("+strings.Join(placeholders, ",")+")")
	}

	query := `
		SELECT id, timestamp, memory_type, minister, content, metadata, importance
		FROM memory_records
		WHERE ` + strings.Join(clauses, " AND ") + `
		ORDER BY importance DESC, timestamp DESC
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching memory records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// SemanticSearch queries the vector index. It returns an error when no
// index is attached.
func (s *Store) SemanticSearch(ctx context.Context, query string, limit int, minSimilarity float32) ([]vectordb.SearchResult, error) {
	if s.vector == nil {
		return nil, fmt.Errorf("no vector index configured")
	}
	return s.vector.Search(ctx, query, limit, minSimilarity, nil)
}

// Stats returns counts and aggregates over the stored records.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByType:     make(map[string]int),
		ByMinister: make(map[string]int),
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(AVG(importance), 0) FROM memory_records")
	if err := row.Scan(&stats.TotalRecords, &stats.AverageImportance); err != nil {
		return nil, fmt.Errorf("counting memory records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT memory_type, COUNT(*) FROM memory_records GROUP BY memory_type")
	if err != nil {
		return nil, fmt.Errorf("grouping by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		stats.ByType[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := s.db.QueryContext(ctx,
		"SELECT minister, COUNT(*) FROM memory_records GROUP BY minister")
	if err != nil {
		return nil, fmt.Errorf("grouping by minister: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var m string
		var n int
		if err := mrows.Scan(&m, &n); err != nil {
			return nil, err
		}
		stats.ByMinister[m] = n
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}

	var latest sql.NullString
	if err := s.db.QueryRowContext(ctx,
		"SELECT MAX(timestamp) FROM memory_records").Scan(&latest); err != nil {
		return nil, fmt.Errorf("finding most recent record: %w", err)
	}
	if latest.Valid {
		if t, parseErr := time.Parse(time.RFC3339Nano, latest.String); parseErr == nil {
			stats.MostRecent = &t
		}
	}

	if s.vector != nil {
		stats.IndexedVectors = s.vector.Count()
	}

	return stats, nil
}

// DeleteByMinister removes all memory records owned by the given
// minister, from both the database and the semantic index.
func (s *Store) DeleteByMinister(ctx context.Context, minister string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM memory_records WHERE minister = ?", minister)
	if err != nil {
		return 0, fmt.Errorf("deleting memory records for %s: %w", minister, err)
	}

	if s.vector != nil {
		if err := s.vector.DeleteByMinister(ctx, minister); err != nil {
			log.Printf("memory: vector delete for %s failed: %v", minister, err)
		}
	}

	return res.RowsAffected()
}

// DeleteBefore removes all memory records older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM memory_records WHERE timestamp < ?",
		before.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old memory records: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec      Record
		ts       string
		memType  string
		metaJSON string
	)

	err := sc.Scan(&rec.ID, &ts, &memType, &rec.Minister, &rec.Content, &metaJSON, &rec.Importance)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("memory record not found")
		}
		return nil, err
	}

	rec.Type = Type(memType)

	if t, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
		rec.Timestamp = t
	} else if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		rec.Timestamp = t
	}

	if err := json.Unmarshal([]byte(metaJSON), &rec.Metadata); err != nil {
		rec.Metadata = nil
	}

	return &rec, nil
}
