// Package mcp exposes docstring extraction and vault queries as MCP tools.
package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docvault/internal/miner"
)

// ServerName identifies the server to MCP clients.
const ServerName = "docvault"

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	vault *Vault
	mcp   *server.MCPServer
}

// NewMCPServer registers every tool. db may be nil, in which case only the
// extraction tools are offered.
func NewMCPServer(version string, pipeline *miner.Pipeline, db *sql.DB) *MCPServer {
	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddExtractTool(mcpServer, pipeline)
	AddNormalizeTool(mcpServer, pipeline.Normalizer)

	var vault *Vault
	if db != nil {
		vault = NewVault(db)
		AddSearchTool(mcpServer, vault)
		AddHierarchyTool(mcpServer, vault)
		AddQueryTool(mcpServer, db)
	}

	return &MCPServer{vault: vault, mcp: mcpServer}
}

// Serve runs the server on stdio and blocks until ctx is cancelled or the
// client disconnects.
func (s *MCPServer) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	}
}

// Close releases the search index.
func (s *MCPServer) Close() error {
	if s.vault != nil {
		return s.vault.Close()
	}
	return nil
}
