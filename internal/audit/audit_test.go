package audit

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

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
	return NewStore(database)
}

func TestLogAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Log(ctx, Entry{
		EventType:  EventMinisterialAction,
		Minister:   "lucius",
		Action:     "execute_plan",
		Target:     "system_state",
		Compliance: ComplianceCompliant,
		Details:    map[string]string{"plan": "deploy gateway"},
		SessionID:  "s1",
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Minister != "lucius" {
		t.Errorf("Minister = %q, want lucius", got.Minister)
	}
	if got.Action != "execute_plan" {
		t.Errorf("Action = %q, want execute_plan", got.Action)
	}
	if got.Signature == "" {
		t.Error("expected generated signature")
	}
	if got.Details["plan"] != "deploy gateway" {
		t.Errorf("Details = %v", got.Details)
	}
	if got.SessionID != "s1" {
		t.Errorf("SessionID = %q, want s1", got.SessionID)
	}
}

func TestSignatureVerifies(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	id, err := store.Log(ctx, Entry{
		EventType: EventDecisionExecution,
		Minister:  "primus",
		Action:    "approve",
		Target:    "request",
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	entry, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	ok, err := Verify(*entry)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("stored entry should verify")
	}

	// A tampered copy must not verify.
	entry.Action = "deny"
	ok, err = Verify(*entry)
	if err != nil {
		t.Fatalf("Verify tampered: %v", err)
	}
	if ok {
		t.Error("tampered entry should not verify")
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seed := []Entry{
		{EventType: EventMinisterialAction, Minister: "primus", Action: "a", Compliance: ComplianceCompliant},
		{EventType: EventErrorOccurrence, Minister: "lucius", Action: "b", Compliance: ComplianceViolation},
		{EventType: EventMinisterialAction, Minister: "primus", Action: "c", Compliance: ComplianceWarning},
	}
	for _, e := range seed {
		if _, err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	entries, err := store.Query(ctx, QueryFilter{Minister: "primus"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 primus entries, got %d", len(entries))
	}

	entries, err = store.Query(ctx, QueryFilter{Compliance: ComplianceViolation})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].Minister != "lucius" {
		t.Errorf("compliance filter failed: %+v", entries)
	}
}

func TestReport(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, level := range []ComplianceLevel{ComplianceCompliant, ComplianceCompliant, ComplianceViolation} {
		if _, err := store.Log(ctx, Entry{
			EventType:  EventMinisterialAction,
			Minister:   "archivus",
			Action:     "store",
			Compliance: level,
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	report, err := store.Report(ctx, 24, "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.TotalAudited != 3 {
		t.Errorf("TotalAudited = %d, want 3", report.TotalAudited)
	}
	if report.ByCompliance["compliant"] != 2 {
		t.Errorf("compliant count = %d, want 2", report.ByCompliance["compliant"])
	}

	stats := report.ByMinister["archivus"]
	if stats.Violations != 1 {
		t.Errorf("Violations = %d, want 1", stats.Violations)
	}
	if want := 2.0 / 3.0; stats.ComplianceRate < want-1e-9 || stats.ComplianceRate > want+1e-9 {
		t.Errorf("ComplianceRate = %f, want %f", stats.ComplianceRate, want)
	}
}

func TestExportCSVAppends(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trail.csv")

	if _, err := store.Log(ctx, Entry{EventType: EventUserInteraction, Minister: "frontinus", Action: "render"}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	n, err := store.ExportCSV(ctx, path, QueryFilter{})
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if n != 1 {
		t.Errorf("exported %d rows, want 1", n)
	}

	// Second export appends without rewriting the header.
	if _, err := store.ExportCSV(ctx, path, QueryFilter{}); err != nil {
		t.Fatalf("second ExportCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(rows) != 3 { // header + two data rows
		t.Fatalf("expected 3 CSV rows, got %d", len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("first row should be the header, got %v", rows[0])
	}
}

func TestReportRoute(t *testing.T) {
	store := setupStore(t)

	if _, err := store.Log(context.Background(), Entry{
		EventType: EventMinisterialAction,
		Minister:  "primus",
		Action:    "analyze",
	}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest("GET", "/api/audit/report?hours=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var report Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if report.TotalAudited != 1 {
		t.Errorf("TotalAudited = %d, want 1", report.TotalAudited)
	}
}

func TestVerifyRoute(t *testing.T) {
	store := setupStore(t)

	id, err := store.Log(context.Background(), Entry{
		EventType: EventDataAccess,
		Minister:  "archivus",
		Action:    "recall",
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest("GET", "/api/audit/"+id+"/verify", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Valid bool `json:"valid"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Valid {
		t.Error("expected valid signature")
	}
}
