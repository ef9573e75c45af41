// tools.go defines the MCP tools and their handlers. Each tool wraps one
// CLI operation with the same identity, backup, and audit discipline; the
// declared identity still has to match the user the server runs as.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/jpl-au/safechange/internal/identity"
	"github.com/jpl-au/safechange/internal/insert"
	"github.com/jpl-au/safechange/internal/modify"
	"github.com/jpl-au/safechange/internal/restore"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools exposes safechange operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcp.NewTool("safechange_modify",
			mcp.WithDescription("Replace text on the single line of a file that contains it. Refuses ambiguous edits; backs the file up first."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the target file")),
			mcp.WithString("search", mcp.Required(), mcp.Description("Literal text to find (must match exactly one line)")),
			mcp.WithString("replace", mcp.Required(), mcp.Description("Literal replacement text")),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Declared operating identity (must match the server's user)")),
		),
		h.modifyFile,
	)

	s.AddTool(
		mcp.NewTool("safechange_add",
			mcp.WithDescription("Append content to a file, or insert it after a uniquely matching anchor line. Backs the file up first."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the target file")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New content; may be multi-line")),
			mcp.WithString("anchor", mcp.Description("Line prefix to insert after (default: end of file)")),
			mcp.WithString("identity", mcp.Required(), mcp.Description("Declared operating identity (must match the server's user)")),
		),
		h.addToFile,
	)

	s.AddTool(
		mcp.NewTool("safechange_rollback",
			mcp.WithDescription("Restore a file from a backup (most recent unless one is named)."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the target file")),
			mcp.WithString("backup", mcp.Description("Specific backup path (default: most recent)")),
		),
		h.rollbackFile,
	)

	s.AddTool(
		mcp.NewTool("safechange_backups",
			mcp.WithDescription("List stored backups of a file, oldest first."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the target file")),
		),
		h.listBackups,
	)
}

// modifyFile handles safechange_modify tool calls.
func (h *handlers) modifyFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}
	search, err := req.RequireString("search")
	if err != nil {
		return mcp.NewToolResultError("search is required"), nil //nolint:nilerr
	}
	replace, err := req.RequireString("replace")
	if err != nil {
		return mcp.NewToolResultError("replace is required"), nil //nolint:nilerr
	}
	declared, err := req.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError("identity is required"), nil //nolint:nilerr
	}

	invoker, err := identity.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil //nolint:nilerr
	}

	opts := modify.Options{
		Search:       search,
		Replace:      replace,
		Identity:     identity.Identity(declared),
		Invoker:      invoker,
		BackupAlways: h.backupAlways,
	}

	var buf bytes.Buffer
	result, err := modify.Run(&buf, h.store, path, opts)

	audit.Event("mcp:modify", "modify").
		Actor(declared).
		Path(path).
		Backup(result.Backup).
		Detail("search", search).
		Detail("replace", replace).
		Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// addToFile handles safechange_add tool calls.
func (h *handlers) addToFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content is required"), nil //nolint:nilerr
	}
	declared, err := req.RequireString("identity")
	if err != nil {
		return mcp.NewToolResultError("identity is required"), nil //nolint:nilerr
	}
	anchor := getString(req, "anchor", "")

	invoker, err := identity.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil //nolint:nilerr
	}

	opts := insert.Options{
		Content:  content,
		Anchor:   anchor,
		Identity: identity.Identity(declared),
		Invoker:  invoker,
	}

	var buf bytes.Buffer
	result, err := insert.Run(&buf, h.store, path, opts)

	ev := audit.Event("mcp:add", "add").
		Actor(declared).
		Path(path).
		Backup(result.Backup)
	if anchor != "" {
		ev.Detail("anchor", anchor)
	}
	ev.Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// rollbackFile handles safechange_rollback tool calls.
func (h *handlers) rollbackFile(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}
	backupPath := getString(req, "backup", "")

	var buf bytes.Buffer
	result, err := restore.Run(&buf, h.store, path, backupPath)

	audit.Event("mcp:rollback", "rollback").
		Actor("mcp").
		Path(path).
		Backup(result.Backup).
		Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

// listBackups handles safechange_backups tool calls.
func (h *handlers) listBackups(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}

	backups, err := h.store.List(path)

	audit.Event("mcp:backups", "list").Actor("mcp").Path(path).Write(err)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(backups)
}

// getString extracts an optional string parameter, returning def when the
// parameter is missing. An LLM omitting an optional parameter should not
// cause a cryptic tool failure.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// jsonResult marshals v as the tool's text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
