// log.go implements the "safechange log" command: query recent activity
// from the audit database. The flat activity.log stays the canonical
// record; this is the filtered view for "what touched this file".

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity",
		Long: `Query the audit database for recent operations.

  safechange log
  safechange log -n 50
  safechange log --path /etc/app.conf`,
		Args: cobra.NoArgs,
		RunE: runLog,
	}
	c.Flags().IntP("limit", "n", 20, "Maximum entries to show")
	c.Flags().String("path", "", "Only entries touching this file")
	return c
}

func runLog(c *cobra.Command, _ []string) error {
	limit, _ := c.Flags().GetInt("limit")
	pathFilter, _ := c.Flags().GetString("path")
	if pathFilter != "" {
		if abs, err := filepath.Abs(pathFilter); err == nil {
			pathFilter = abs
		}
	}

	entries, err := audit.Recent(limit, pathFilter)
	if err != nil {
		return PrintJSONError(fmt.Errorf("query audit log: %w", err))
	}

	if JSON() {
		return PrintJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(Out(), "No activity recorded")
		return nil
	}
	for _, e := range entries {
		status := "ok"
		if !e.Success {
			status = "FAILED"
		}
		fmt.Fprintf(Out(), "%s  %-8s %-8s %-10s %s\n",
			e.Time.Format("2006-01-02 15:04:05"), orDash(e.Actor), e.Op, status, e.Path)
		if e.Error != "" {
			fmt.Fprintf(Out(), "%21s %s\n", "", e.Error)
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(newLogCmd())
}
