// mcp.go implements the "safechange mcp" command: serve the edit
// operations over the Model Context Protocol on stdio.

package cmd

import (
	"github.com/jpl-au/safechange/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve safechange operations over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdio, exposing modify,
add, rollback and backups as tools for LLM agents. Agent edits get the
same backup, single-match, and audit guarantees as CLI edits.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			st, err := Store()
			if err != nil {
				return err
			}
			return mcp.Serve(st, cfg.BackupAlways())
		},
	}
}

func init() {
	rootCmd.AddCommand(newMCPCmd())
}
