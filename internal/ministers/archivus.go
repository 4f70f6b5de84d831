package ministers

import (
	"context"
	"fmt"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/cognitive"
	"github.com/aetheroos/aethero/internal/memory"
)

const recallLimit = 5

// Archivus recalls related memories for the request and records the
// cognitive event itself so future requests can find it.
type Archivus struct {
	store *memory.Store
}

func NewArchivus(store *memory.Store) *Archivus {
	return &Archivus{store: store}
}

func (a *Archivus) Minister() asl.Minister { return asl.MinisterArchivus }

func (a *Archivus) Process(ctx context.Context, pc *cognitive.Context) (map[string]any, error) {
	query := pc.UserInput
	if pc.Parsed != nil {
		if intent, ok := pc.Parsed.Tags[asl.TagIntent]; ok {
			query = intent
		}
	}

	related, err := a.store.Search(ctx, memory.SearchOptions{
		Query: query,
		Limit: recallLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("recalling memories: %w", err)
	}

	recalled := make([]map[string]any, 0, len(related))
	for _, r := range related {
		recalled = append(recalled, map[string]any{
			"id":         r.ID,
			"minister":   r.Minister,
			"content":    r.Content,
			"importance": r.Importance,
		})
	}

	id, err := a.store.Ingest(ctx, pc.UserInput, memory.TypeCognitiveEvent,
		string(asl.MinisterArchivus), map[string]string{
			"session_id": pc.SessionID,
		}, 0.5)
	if err != nil {
		return nil, fmt.Errorf("recording cognitive event: %w", err)
	}

	return map[string]any{
		"recalled":     recalled,
		"recall_count": len(recalled),
		"recorded_id":  id,
	}, nil
}
