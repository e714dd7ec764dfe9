// Package mcp exposes the assistant's retrieval and logging surfaces as
// MCP tools over stdio, for use by MCP-capable chat agents.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/sportzvillage/svassist/internal/chatlog"
	"github.com/sportzvillage/svassist/internal/pricing"
	"github.com/sportzvillage/svassist/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Refresher rebuilds the vector cache from the source tables.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Server wraps an MCP server that exposes retrieval and chat-log tools.
type Server struct {
	engine    *search.Engine
	refresher Refresher
	chatLog   *chatlog.Logger
	tiers     []pricing.Tier
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(engine *search.Engine, refresher Refresher, chatLog *chatlog.Logger, tiers []pricing.Tier) *Server {
	s := &Server{
		engine:    engine,
		refresher: refresher,
		chatLog:   chatLog,
		tiers:     tiers,
	}

	s.mcp = server.NewMCPServer(
		"svassist",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(semanticSearchTool, s.handleSemanticSearch)
	s.mcp.AddTool(getRelevantContextTool, s.handleGetRelevantContext)
	s.mcp.AddTool(refreshCacheTool, s.handleRefreshCache)
	s.mcp.AddTool(logInteractionTool, s.handleLogInteraction)
	s.mcp.AddTool(getChatAnalyticsTool, s.handleGetChatAnalytics)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
