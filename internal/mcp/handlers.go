package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/memory"
)

func (s *Server) handleRecallMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	opts := memory.SearchOptions{Query: query, Limit: limit}
	if m := request.GetString("minister", ""); m != "" {
		opts.Ministers = []string{m}
	}
	if mt := request.GetString("memory_type", ""); mt != "" {
		opts.Types = []memory.Type{memory.Type(mt)}
	}

	records, err := s.memory.Search(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("No memories matched the query."), nil
	}

	return mcp.NewToolResultText(formatMemories(records)), nil
}

func (s *Server) handleSystemStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.memory.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading memory stats: %v", err)), nil
	}

	status := map[string]any{
		"initialized":     s.coord.Initialized(),
		"bridges":         s.coord.Health(),
		"active_sessions": s.coord.ActiveSessions(),
		"memory":          stats,
	}
	out, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleAuditQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	filter := audit.QueryFilter{
		Minister:   request.GetString("minister", ""),
		Compliance: audit.ComplianceLevel(request.GetString("compliance", "")),
		Limit:      limit,
	}
	entries, err := s.audit.Query(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("audit query failed: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No audit entries matched the query."), nil
	}

	return mcp.NewToolResultText(formatAuditEntries(entries)), nil
}

func (s *Server) handleProcessRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := request.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: input"), nil
	}
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp, err := s.coord.ProcessRequest(ctx, sessionID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func formatMemories(records []memory.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d memories:\n\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "%d. [%s] %s (importance %.2f, %s)\n", i+1, r.Minister, r.ID, r.Importance, r.Type)
		fmt.Fprintf(&b, "   %s\n", r.Content)
	}
	return b.String()
}

func formatAuditEntries(entries []audit.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d audit entries:\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s %s/%s -> %s [%s] at %s\n",
			i+1, e.ID, e.Minister, e.Action, e.Target, e.Compliance, e.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}
