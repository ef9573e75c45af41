// Package mcp implements the Model Context Protocol server, exposing
// safechange operations to LLM agents. An agent gets the same guarantees
// as a human operator: backup before mutate, the single-match gate, and a
// log entry for every attempt - which is exactly why agent-driven config
// edits should go through this tool rather than raw shell access.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/jpl-au/safechange/internal/backup"
	"github.com/mark3labs/mcp-go/server"
)

// Version is advertised to clients for capability negotiation.
const Version = "1.0.0"

// Serve starts the MCP server over stdio. Uses stdio transport for
// compatibility with Claude Desktop and other MCP clients.
func Serve(st *backup.Store, backupAlways bool) error {
	// Log to stderr; stdout is reserved for MCP JSON-RPC messages
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	h := &handlers{store: st, backupAlways: backupAlways}

	s := server.NewMCPServer(
		"safechange",
		Version,
		server.WithToolCapabilities(true),
	)

	registerTools(s, h)

	slog.Info("safechange MCP server ready", "version", Version, "transport", "stdio")

	err := server.ServeStdio(s)
	if errors.Is(err, context.Canceled) {
		slog.Info("server stopped")
		return nil
	}
	return err
}

// handlers provides MCP request handlers with access to the backup store.
type handlers struct {
	store        *backup.Store
	backupAlways bool
}
