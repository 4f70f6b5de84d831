package memory

import "time"

// Type classifies a stored memory record.
type Type string

const (
	TypeCognitiveEvent  Type = "cognitive_event"
	TypeDecisionTrace   Type = "decision_trace"
	TypeUserInteraction Type = "user_interaction"
	TypeSystemState     Type = "system_state"
	TypeErrorIncident   Type = "error_incident"
	TypeMinisterial     Type = "ministerial"
)

// Record is a single stored memory item.
type Record struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Type       Type              `json:"memory_type"`
	Minister   string            `json:"minister"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Importance float64           `json:"importance"`
}

// SearchOptions controls a keyword search over stored records.
type SearchOptions struct {
	Query     string
	Types     []Type
	Ministers []string
	Limit     int

	// SimilarityThreshold is accepted for API compatibility with the
	// semantic search path but has no effect on keyword search: substring
	// matching produces no similarity score to compare against.
	SimilarityThreshold float64
}

// Stats summarises the contents of the store.
type Stats struct {
	TotalRecords      int            `json:"total_records"`
	ByType            map[string]int `json:"by_type"`
	ByMinister        map[string]int `json:"by_minister"`
	AverageImportance float64        `json:"average_importance"`
	IndexedVectors    int            `json:"indexed_vectors"`
	MostRecent        *time.Time     `json:"most_recent,omitempty"`
}
