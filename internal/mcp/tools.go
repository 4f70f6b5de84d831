package mcp

import "github.com/mark3labs/mcp-go/mcp"

// recallMemoriesTool defines the recall_memories MCP tool.
var recallMemoriesTool = mcp.NewTool("recall_memories",
	mcp.WithDescription("Search the ministerial memory store. Returns stored memories ranked by importance."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Text to match against stored memory content"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of memories to return (default 10)"),
	),
	mcp.WithString("minister",
		mcp.Description("Restrict results to one minister"),
		mcp.Enum("primus", "lucius", "archivus", "frontinus"),
	),
	mcp.WithString("memory_type",
		mcp.Description("Restrict results to one memory type"),
		mcp.Enum("cognitive_event", "decision_trace", "user_interaction", "system_state", "error_incident", "ministerial"),
	),
)

// systemStatusTool defines the system_status MCP tool.
var systemStatusTool = mcp.NewTool("system_status",
	mcp.WithDescription("Get bridge health, active session count, and memory statistics for the running cabinet."),
)

// auditQueryTool defines the audit_query MCP tool.
var auditQueryTool = mcp.NewTool("audit_query",
	mcp.WithDescription("Query the constitutional audit trail."),
	mcp.WithString("minister",
		mcp.Description("Restrict entries to one minister"),
	),
	mcp.WithString("compliance",
		mcp.Description("Restrict entries to one compliance level"),
		mcp.Enum("compliant", "warning", "violation", "critical"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return (default 20)"),
	),
)

// processRequestTool defines the process_request MCP tool.
var processRequestTool = mcp.NewTool("process_request",
	mcp.WithDescription("Run an ASL-tagged request through the full four-stage cognitive pipeline."),
	mcp.WithString("input",
		mcp.Required(),
		mcp.Description("Request text, optionally containing [INTENT:...], [ACTION:...], [OUTPUT:...], [HOOK:...] tags"),
	),
	mcp.WithString("session_id",
		mcp.Description("Session identifier; generated when omitted"),
	),
)
