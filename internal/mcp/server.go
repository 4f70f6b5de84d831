// Package mcp exposes the cabinet's memory, status, and audit trail as
// MCP tools over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/coordinator"
	"github.com/aetheroos/aethero/internal/memory"
)

// Version is reported in the MCP handshake; the CLI overrides it at
// startup.
var Version = "dev"

// Server wraps an MCP server that exposes cabinet tools.
type Server struct {
	memory *memory.Store
	audit  *audit.Store
	coord  *coordinator.Coordinator
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(mem *memory.Store, auditStore *audit.Store, coord *coordinator.Coordinator) *Server {
	s := &Server{
		memory: mem,
		audit:  auditStore,
		coord:  coord,
	}

	s.mcp = server.NewMCPServer(
		"aethero",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(recallMemoriesTool, s.handleRecallMemories)
	s.mcp.AddTool(systemStatusTool, s.handleSystemStatus)
	s.mcp.AddTool(auditQueryTool, s.handleAuditQuery)
	s.mcp.AddTool(processRequestTool, s.handleProcessRequest)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP
// protocol messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
