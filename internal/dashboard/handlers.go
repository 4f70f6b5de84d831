package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/coordinator"
	"github.com/aetheroos/aethero/internal/memory"
)

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	Initialized    bool                       `json:"initialized"`
	Bridges        []coordinator.BridgeHealth `json:"bridges"`
	ActiveSessions int                        `json:"active_sessions"`
	Memory         *memory.Stats              `json:"memory"`
}

// recentResponse is the JSON response for the recent activity endpoint.
type recentResponse struct {
	Memories []memory.Record `json:"memories"`
	Audit    []audit.Entry   `json:"audit"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := d.memory.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Initialized:    d.coord.Initialized(),
		Bridges:        d.coord.Health(),
		ActiveSessions: d.coord.ActiveSessions(),
		Memory:         stats,
	})
}

func (d *Dashboard) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	memories, err := d.memory.Search(ctx, memory.SearchOptions{Limit: 10})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	entries, err := d.audit.Query(ctx, audit.QueryFilter{Limit: 10})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if memories == nil {
		memories = []memory.Record{}
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	writeJSON(w, http.StatusOK, recentResponse{
		Memories: memories,
		Audit:    entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
