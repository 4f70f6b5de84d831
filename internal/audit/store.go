package audit

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aetheroos/aethero/internal/db"
)

// Store provides the audit trail over SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new audit entry. A zero ID, Timestamp, Compliance, or
// Signature is filled in; a caller-provided signature is preserved so
// imported trails keep their original evidence.
func (s *Store) Log(ctx context.Context, entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = "audit_" + uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Compliance == "" {
		entry.Compliance = ComplianceCompliant
	}
	if entry.Details == nil {
		entry.Details = map[string]string{}
	}
	if entry.Signature == "" {
		sig, err := Sign(entry)
		if err != nil {
			return "", fmt.Errorf("signing audit entry: %w", err)
		}
		entry.Signature = sig
	}

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return "", fmt.Errorf("marshalling details: %w", err)
	}

	var sessionID sql.NullString
	if entry.SessionID != "" {
		sessionID = sql.NullString{String: entry.SessionID, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, timestamp, event_type, minister, action, target, compliance, signature, details, session_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.RFC3339Nano),
		string(entry.EventType),
		entry.Minister,
		entry.Action,
		entry.Target,
		string(entry.Compliance),
		entry.Signature,
		string(detailsJSON),
		sessionID,
	)
	if err != nil {
		return "", fmt.Errorf("inserting audit entry: %w", err)
	}
	return entry.ID, nil
}

// Sign computes the tamper-evidence signature for an entry: the sha256
// of its canonical JSON, excluding the signature field itself.
func Sign(entry Entry) (string, error) {
	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return "", err
	}
	canonical, err := json.Marshal(map[string]string{
		"id":        entry.ID,
		"timestamp": entry.Timestamp.UTC().Format(time.RFC3339Nano),
		"minister":  entry.Minister,
		"action":    entry.Action,
		"target":    entry.Target,
		"details":   hashHex(detailsJSON),
	})
	if err != nil {
		return "", err
	}
	return hashHex(canonical), nil
}

// Verify recomputes an entry's signature and reports whether it matches
// the stored one.
func Verify(entry Entry) (bool, error) {
	want, err := Sign(entry)
	if err != nil {
		return false, err
	}
	return want == entry.Signature, nil
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, event_type, minister, action, target, compliance, signature, details, session_id
		FROM audit_entries WHERE id = ?`, id)
	return scanEntry(row)
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	Minister   string
	EventType  EventType
	Compliance ComplianceLevel
	SessionID  string
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

// Query returns audit entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Minister != "" {
		clauses = append(clauses, "minister = ?")
		args = append(args, filter.Minister)
	}
	if filter.EventType != "" {
		clauses = append(clauses, "event_type = ?")
		args = append(args, string(filter.EventType))
	}
	if filter.Compliance != "" {
		clauses = append(clauses, "compliance = ?")
		args = append(args, string(filter.Compliance))
	}
	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.RFC3339Nano))
	}

	query := "SELECT id, timestamp, event_type, minister, action, target, compliance, signature, details, session_id FROM audit_entries"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Report builds a compliance summary for the given timeframe, optionally
// restricted to one minister.
func (s *Store) Report(ctx context.Context, timeframeHours int, minister string) (*Report, error) {
	since := time.Now().UTC().Add(-time.Duration(timeframeHours) * time.Hour)

	entries, err := s.Query(ctx, QueryFilter{Minister: minister, Since: &since})
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:    time.Now().UTC(),
		TimeframeHours: timeframeHours,
		MinisterFilter: minister,
		TotalAudited:   len(entries),
		ByCompliance:   make(map[string]int),
		ByMinister:     make(map[string]MinisterStats),
	}

	for _, e := range entries {
		report.ByCompliance[string(e.Compliance)]++

		stats := report.ByMinister[e.Minister]
		stats.TotalActions++
		if e.Compliance == ComplianceViolation || e.Compliance == ComplianceCritical {
			stats.Violations++
		}
		report.ByMinister[e.Minister] = stats
	}

	for name, stats := range report.ByMinister {
		stats.ComplianceRate = float64(stats.TotalActions-stats.Violations) / float64(stats.TotalActions)
		report.ByMinister[name] = stats
	}

	return report, nil
}

// DeleteBefore removes all audit entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_entries WHERE timestamp < ?",
		before.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old audit entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e                         Entry
		ts, eventType, compliance string
		detailsJSON               string
		sessionID                 sql.NullString
	)

	err := sc.Scan(&e.ID, &ts, &eventType, &e.Minister, &e.Action, &e.Target,
		&compliance, &e.Signature, &detailsJSON, &sessionID)
	if err != nil {
		return nil, err
	}

	e.EventType = EventType(eventType)
	e.Compliance = ComplianceLevel(compliance)

	if t, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	}

	if sessionID.Valid {
		e.SessionID = sessionID.String
	}
	if err := json.Unmarshal([]byte(detailsJSON), &e.Details); err != nil {
		e.Details = nil
	}

	return &e, nil
}
