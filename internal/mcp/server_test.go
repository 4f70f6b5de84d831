package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/cognitive"
	"github.com/aetheroos/aethero/internal/coordinator"
	"github.com/aetheroos/aethero/internal/db"
	"github.com/aetheroos/aethero/internal/memory"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	mem := memory.NewStore(database, nil)
	auditStore := audit.NewStore(database)
	coord := coordinator.New(coordinator.Options{
		Dispatcher: cognitive.NewDispatcher(),
		Memory:     mem,
		Audit:      auditStore,
	})
	if err := coord.InitializeAll(context.Background()); err != nil {
		t.Fatalf("initializing coordinator: %v", err)
	}
	return NewServer(mem, auditStore, coord)
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"recall_memories", recallMemoriesTool, "recall_memories"},
		{"system_status", systemStatusTool, "system_status"},
		{"audit_query", auditQueryTool, "audit_query"},
		{"process_request", processRequestTool, "process_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleRecallMemories(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()

	if _, err := srv.memory.Ingest(ctx, "deployment of the gateway", memory.TypeMinisterial, "lucius", nil, 0.9); err != nil {
		t.Fatalf("seeding memory: %v", err)
	}

	t.Run("basic recall", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "gateway"}

		result, err := srv.handleRecallMemories(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleRecallMemories(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected tool error for missing query")
		}
	})

	t.Run("minister filter excludes others", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "gateway", "minister": "primus"}

		result, err := srv.handleRecallMemories(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := resultText(t, result)
		if text != "No memories matched the query." {
			t.Errorf("unexpected text: %s", text)
		}
	})
}

func TestHandleSystemStatus(t *testing.T) {
	srv := setupServer(t)

	result, err := srv.handleSystemStatus(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
}

func TestHandleAuditQuery(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()

	if _, err := srv.audit.Log(ctx, audit.Entry{
		EventType: audit.EventMinisterialAction,
		Minister:  "lucius",
		Action:    "deploy",
		Target:    "gateway",
	}); err != nil {
		t.Fatalf("seeding audit: %v", err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"minister": "lucius"}

	result, err := srv.handleAuditQuery(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
}

func TestHandleProcessRequest(t *testing.T) {
	srv := setupServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"input": "[INTENT:status][ACTION:show status]"}

	result, err := srv.handleProcessRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is not text: %T", result.Content[0])
	}
	return tc.Text
}
