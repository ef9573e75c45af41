// rollback.go implements the "safechange rollback" command: copy a backup
// back over the live file.

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/jpl-au/safechange/internal/restore"
	"github.com/spf13/cobra"
)

func newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <path> [backup]",
		Short: "Restore a file from a backup",
		Long: `Overwrite the live file with a backup's content.

  safechange rollback /etc/app.conf                       # most recent backup
  safechange rollback /etc/app.conf /var/lib/safechange/backups/app.conf.CHG-1042_2.bak

An explicit backup must be named after the target file; unrelated
backups are refused.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runRollback,
	}
}

func runRollback(_ *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return PrintJSONError(err)
	}
	backupPath := ""
	if len(args) == 2 {
		backupPath = args[1]
	}

	st, err := Store()
	if err != nil {
		return PrintJSONError(err)
	}

	w := Out()
	if JSON() {
		w = io.Discard
	}

	result, err := restore.Run(w, st, path, backupPath)

	ev := audit.Event("cli:rollback", "rollback").
		Actor(Operator()).
		Path(path).
		Backup(result.Backup)
	if Reason() != "" {
		ev.Detail("reason", Reason())
	}
	ev.Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("rollback %s: %w", path, err))
	}
	return PrintJSON(result)
}

func init() {
	rootCmd.AddCommand(newRollbackCmd())
}
