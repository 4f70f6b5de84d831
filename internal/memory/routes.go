package memory

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts memory endpoints under /api/memory on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/memory", func(r chi.Router) {
		r.Post("/ingest", handleIngest(store))
		r.Get("/search", handleSearch(store))
		r.Get("/semantic", handleSemantic(store))
		r.Get("/stats", handleStats(store))
		r.Get("/{id}", handleGetByID(store))
	})
}

type ingestRequest struct {
	Content    string            `json:"content"`
	Type       string            `json:"memory_type"`
	Minister   string            `json:"minister"`
	Metadata   map[string]string `json:"metadata"`
	Importance float64           `json:"importance"`
}

func handleIngest(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Content == "" {
			http.Error(w, `{"error":"content is required"}`, http.StatusBadRequest)
			return
		}
		if req.Type == "" {
			req.Type = string(TypeMinisterial)
		}
		if req.Minister == "" {
			req.Minister = "coordinator"
		}
		if req.Importance == 0 {
			req.Importance = 0.5
		}

		id, err := store.Ingest(r.Context(), req.Content, Type(req.Type), req.Minister, req.Metadata, req.Importance)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

func handleSearch(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") == "" {
			http.Error(w, `{"error":"q parameter is required"}`, http.StatusBadRequest)
			return
		}

		opts := SearchOptions{Query: q.Get("q")}
		for _, t := range splitParam(q.Get("types")) {
			opts.Types = append(opts.Types, Type(t))
		}
		opts.Ministers = splitParam(q.Get("ministers"))
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				opts.Limit = n
			}
		}
		if v := q.Get("similarity_threshold"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				opts.SimilarityThreshold = f
			}
		}

		records, err := store.Search(r.Context(), opts)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []Record{}
		}

		writeJSON(w, http.StatusOK, records)
	}
}

func handleSemantic(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") == "" {
			http.Error(w, `{"error":"q parameter is required"}`, http.StatusBadRequest)
			return
		}

		limit := defaultSearchLimit
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		var threshold float32
		if v := q.Get("similarity_threshold"); v != "" {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				threshold = float32(f)
			}
		}

		results, err := store.SemanticSearch(r.Context(), q.Get("q"), limit, threshold)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusServiceUnavailable)
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}

func handleStats(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleGetByID(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
