// Package mcp exposes the triage pipeline, incident store, and backup catalog
// to AI assistants over the Model Context Protocol. The server speaks JSON-RPC
// on stdio; every tool has a typed input and output schema.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/smartcompute/monitoring-system/internal/backup"
	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
	"github.com/smartcompute/monitoring-system/internal/core/service"
)

const (
	serverName    = "smartcompute"
	serverVersion = "1.0.0"
)

// Deps carries the services the MCP tools are bound to.
type Deps struct {
	BizCtx       domain.BusinessContext
	Orchestrator *service.Orchestrator
	Triage       ports.TriageService
	Incidents    ports.IncidentService
	Catalog      backup.CatalogStore
	Log          zerolog.Logger
}

// Server wraps the MCP server with its tool bindings.
type Server struct {
	mcpServer *mcp.Server
	log       zerolog.Logger
}

// NewServer creates an MCP server with every tool registered.
func NewServer(deps Deps) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, TriagePreviewTool(), TriagePreviewHandler(deps.BizCtx, deps.Orchestrator))
	mcp.AddTool(mcpServer, SubmitEventTool(), SubmitEventHandler(deps.Triage))
	mcp.AddTool(mcpServer, GetIncidentTool(), GetIncidentHandler(deps.Incidents))
	mcp.AddTool(mcpServer, ListIncidentsTool(), ListIncidentsHandler(deps.Incidents))
	mcp.AddTool(mcpServer, BackupStatusTool(), BackupStatusHandler(deps.Catalog))

	return &Server{mcpServer: mcpServer, log: deps.Log}
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Str("server", serverName).Str("version", serverVersion).Msg("mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
