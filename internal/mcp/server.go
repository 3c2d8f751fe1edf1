// ABOUTME: MCP server setup for the workout log.
// ABOUTME: Wraps the MCP server around the application context.
package mcp

import (
	"context"

	"github.com/harperreed/gymlog/internal/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with access to the log.
type Server struct {
	mcpServer *mcp.Server
	app       *app.App
}

// NewServer creates a new MCP server over the given application.
func NewServer(a *app.App) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gymlog",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		app:       a,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.app.Log.Debug("serving mcp over stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
