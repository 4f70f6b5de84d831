package memory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aetheroos/aethero/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, nil)
}

func TestIngestAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Ingest(ctx, "the gateway deployment succeeded", TypeCognitiveEvent, "lucius",
		map[string]string{"session_id": "s1"}, 0.8)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	rec, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.Minister != "lucius" {
		t.Errorf("Minister = %q, want lucius", rec.Minister)
	}
	if rec.Type != TypeCognitiveEvent {
		t.Errorf("Type = %q, want %q", rec.Type, TypeCognitiveEvent)
	}
	if rec.Metadata["session_id"] != "s1" {
		t.Errorf("Metadata = %v, want session_id=s1", rec.Metadata)
	}
	if rec.Importance != 0.8 {
		t.Errorf("Importance = %f, want 0.8", rec.Importance)
	}
}

func TestIngestNoDeduplication(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id1, err := store.Ingest(ctx, "same content", TypeMinisterial, "archivus", nil, 0.5)
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	id2, err := store.Ingest(ctx, "same content", TypeMinisterial, "archivus", nil, 0.5)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	if id1 == id2 {
		t.Errorf("expected distinct ids, both %s", id1)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want 2", stats.TotalRecords)
	}
	if stats.MostRecent == nil || time.Since(*stats.MostRecent) > time.Minute {
		t.Errorf("MostRecent = %v", stats.MostRecent)
	}
}

func TestSearchSubstringMatch(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []struct {
		content    string
		minister   string
		importance float64
	}{
		{"Foo appears here", "primus", 0.2},
		{"nothing relevant", "primus", 0.9},
		{"more FOO content", "lucius", 0.7},
	}
	for _, s := range seed {
		if _, err := store.Ingest(ctx, s.content, TypeMinisterial, s.minister, nil, s.importance); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	records, err := store.Search(ctx, SearchOptions{Query: "foo"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(records))
	}

	// Sorted by importance descending.
	if records[0].Importance < records[1].Importance {
		t.Errorf("results not sorted by importance: %f before %f",
			records[0].Importance, records[1].Importance)
	}
}

func TestSearchOrderingAndLimit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i, importance := range []float64{0.1, 0.9, 0.5, 0.9} {
		if _, err := store.Ingest(ctx, "shared term", TypeMinisterial, "archivus", nil, importance); err != nil {
			t.Fatalf("Ingest %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond) // distinct timestamps for the tiebreak
	}

	records, err := store.Search(ctx, SearchOptions{Query: "shared", Limit: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(records))
	}

	// Equal importance resolves by recency.
	if records[0].Importance != 0.9 || records[1].Importance != 0.9 {
		t.Errorf("top results should have importance 0.9, got %f and %f",
			records[0].Importance, records[1].Importance)
	}
	if records[0].Timestamp.Before(records[1].Timestamp) {
		t.Error("equal-importance results not sorted by timestamp descending")
	}
}

func TestSearchFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Ingest(ctx, "alpha event", TypeCognitiveEvent, "primus", nil, 0.5); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := store.Ingest(ctx, "alpha incident", TypeErrorIncident, "lucius", nil, 0.5); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	records, err := store.Search(ctx, SearchOptions{
		Query: "alpha",
		Types: []Type{TypeErrorIncident},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 || records[0].Type != TypeErrorIncident {
		t.Errorf("type filter failed: %+v", records)
	}

	records, err = store.Search(ctx, SearchOptions{
		Query:     "alpha",
		Ministers: []string{"primus"},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 || records[0].Minister != "primus" {
		t.Errorf("minister filter failed: %+v", records)
	}
}

func TestSimilarityThresholdHasNoKeywordEffect(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Ingest(ctx, "threshold subject", TypeMinisterial, "archivus", nil, 0.5); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	loose, err := store.Search(ctx, SearchOptions{Query: "threshold"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	strict, err := store.Search(ctx, SearchOptions{Query: "threshold", SimilarityThreshold: 0.99})
	if err != nil {
		t.Fatalf("Search with threshold: %v", err)
	}

	if len(loose) != len(strict) {
		t.Errorf("similarity threshold changed keyword results: %d vs %d", len(loose), len(strict))
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Ingest(ctx, "old enough", TypeMinisterial, "archivus", nil, 0.5); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	n, err := store.DeleteBefore(ctx, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
}

func TestDeleteByMinister(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Ingest(ctx, "lucius memory", TypeMinisterial, "lucius", nil, 0.5); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := store.Ingest(ctx, "archivus memory", TypeMinisterial, "archivus", nil, 0.5); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	n, err := store.DeleteByMinister(ctx, "lucius")
	if err != nil {
		t.Fatalf("DeleteByMinister: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ByMinister["lucius"] != 0 {
		t.Errorf("lucius memories remain: %d", stats.ByMinister["lucius"])
	}
	if stats.ByMinister["archivus"] != 1 {
		t.Errorf("archivus count = %d, want 1", stats.ByMinister["archivus"])
	}
}

func TestSemanticSearchWithoutIndex(t *testing.T) {
	store := setupStore(t)

	if _, err := store.SemanticSearch(context.Background(), "anything", 5, 0); err == nil {
		t.Error("expected error when no vector index is configured")
	}
}

func TestIngestRoute(t *testing.T) {
	store := setupStore(t)

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	body := `{"content":"via http","minister":"frontinus","memory_type":"user_interaction"}`
	req := httptest.NewRequest("POST", "/api/memory/ingest", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/memory/search?q=via+http", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
