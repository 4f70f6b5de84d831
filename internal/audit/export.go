package audit

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var csvHeader = []string{"id", "timestamp", "event_type", "minister", "action", "compliance", "signature"}

// ExportCSV appends the entries matching filter to an append-only CSV
// file at path, creating it (with a header row) when missing.
func (s *Store) ExportCSV(ctx context.Context, path string, filter QueryFilter) (int, error) {
	entries, err := s.Query(ctx, filter)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating export directory: %w", err)
	}

	info, statErr := os.Stat(path)
	needHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("opening export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("writing CSV header: %w", err)
		}
	}

	for _, e := range entries {
		row := []string{
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			string(e.EventType),
			e.Minister,
			e.Action,
			string(e.Compliance),
			e.Signature,
		}
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flushing CSV: %w", err)
	}
	return len(entries), nil
}
