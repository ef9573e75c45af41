// backups.go implements the "safechange backups" command: list the stored
// backups of a file, oldest first.

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/spf13/cobra"
)

func newBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups <path>",
		Short: "List stored backups of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackups,
	}
}

func runBackups(_ *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return PrintJSONError(err)
	}

	st, err := Store()
	if err != nil {
		return PrintJSONError(err)
	}

	backups, err := st.List(path)

	audit.Event("cli:backups", "list").Actor(Operator()).Path(path).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("backups %s: %w", path, err))
	}

	if JSON() {
		return PrintJSON(backups)
	}
	if len(backups) == 0 {
		fmt.Fprintf(Out(), "No backups for %s\n", path)
		return nil
	}
	for _, b := range backups {
		if b.Version > 0 {
			fmt.Fprintf(Out(), "v%-4d %s  %6d bytes  %s\n", b.Version, b.Created.Format("2006-01-02 15:04:05"), b.Size, b.Path)
		} else {
			fmt.Fprintf(Out(), "      %s  %6d bytes  %s\n", b.Created.Format("2006-01-02 15:04:05"), b.Size, b.Path)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newBackupsCmd())
}
