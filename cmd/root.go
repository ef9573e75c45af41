/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Design: PersistentPreRunE loads config and opens the audit sinks after
// flags are parsed, because the log paths depend on --dir. The guide and
// completion commands skip audit setup - reading documentation should not
// create state directories.

package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/jpl-au/safechange/internal/config"
	"github.com/spf13/cobra"
)

// noAuditCommands are commands that never touch the state directory.
var noAuditCommands = map[string]bool{
	"guide":      true,
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:   "safechange",
	Short: "Auditable single-occurrence edits to live config files",
	Long: `Scripted, reversible text substitution and append operations on
configuration files, with versioned backups, an append-only activity log,
and rollback. Edits that would match more than one line are refused.`,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// Assigned in init rather than in the composite literal above: the closure
// references PrintJSONError, which references rootCmd, and a literal field
// assignment would form an initialization cycle.
func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		c, err := config.Load()
		if err != nil {
			return PrintJSONError(err)
		}
		cfg = c

		if !noAuditCommands[cmd.Name()] {
			// Best-effort: a broken audit store warns but does not block
			// the operation; each operation still reports its own errors.
			if err := audit.Open(cfg.LogFile(Dir()), cfg.LogDB(Dir())); err != nil {
				fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
			}
		}
		return nil
	}
}

// Execute runs the root command and handles process lifecycle.
// Exit code 1 indicates error.
func Execute() {
	err := rootCmd.Execute()
	audit.Close()
	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
