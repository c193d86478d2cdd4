package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/gof/internal/listener"
	"github.com/btouchard/gof/internal/store"
)

// NewServer creates the MCP server without tools. It doubles as the
// notification sender for mcp listeners, so it exists before the registry.
func NewServer(version string) *server.MCPServer {
	return server.NewMCPServer(
		"gof",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)
}

// RegisterTools exposes the registry as MCP tools. The journal tool is
// skipped when journal is nil.
func RegisterTools(s *server.MCPServer, reg *listener.Registry, journal store.Store) {
	registerTools(s, reg, journal)
}
