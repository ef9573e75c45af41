// diff.go implements the "safechange diff" command: show what changed
// between a backup and the live file.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/jpl-au/safechange/internal/backup"
	"github.com/jpl-au/safechange/internal/change"
	"github.com/jpl-au/safechange/internal/diff"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <path> [backup]",
		Short: "Diff the live file against a backup",
		Long: `Show the differences between a backup and the live file.

  safechange diff /etc/app.conf        # against the most recent backup
  safechange diff /etc/app.conf /var/lib/safechange/backups/app.conf.CHG-1042_2.bak`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDiff,
	}
}

func runDiff(_ *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return PrintJSONError(err)
	}

	st, err := Store()
	if err != nil {
		return PrintJSONError(err)
	}

	var h backup.Handle
	if len(args) == 2 {
		h, err = st.Resolve(path, args[1])
	} else {
		h, err = st.Latest(path)
	}
	if err == nil {
		var result diff.Result
		result, err = computeDiff(h.Path, path)
		if err == nil {
			audit.Event("cli:diff", "diff").Actor(Operator()).Path(path).Backup(h.Path).Write(nil)
			if JSON() {
				return PrintJSON(result)
			}
			if result.Diff == "" {
				fmt.Fprintf(Out(), "No differences between %s and %s\n", h.Path, path)
			} else {
				fmt.Fprint(Out(), result.Format(colourOut()))
			}
			return nil
		}
	}

	audit.Event("cli:diff", "diff").Actor(Operator()).Path(path).Write(err)
	return PrintJSONError(fmt.Errorf("diff %s: %w", path, err))
}

func computeDiff(backupPath, livePath string) (diff.Result, error) {
	old, err := os.ReadFile(backupPath)
	if err != nil {
		return diff.Result{}, fmt.Errorf("%w: read %s: %v", change.ErrIO, backupPath, err)
	}
	live, err := os.ReadFile(livePath)
	if err != nil {
		return diff.Result{}, fmt.Errorf("%w: read %s: %v", change.ErrIO, livePath, err)
	}
	return diff.Compute(string(old), string(live), backupPath, livePath), nil
}

func init() {
	rootCmd.AddCommand(newDiffCmd())
}
