// modify.go implements the "safechange modify" command: exactly-one-match
// text substitution with automatic backup.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/jpl-au/safechange/internal/change"
	"github.com/jpl-au/safechange/internal/identity"
	"github.com/jpl-au/safechange/internal/modify"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newModifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modify <path> <search> <replace>",
		Short: "Replace text on the single line matching search",
		Long: `Replace every occurrence of the search text on the one line that
contains it, after backing the file up.

  safechange -u svc-deploy -t CHG-1042 modify /etc/app.conf "timeout=30" "timeout=60"

The search text is literal, not a pattern. Zero matching lines is a
benign no-op; more than one matching line refuses the edit and lists
the collisions.`,
		Args: cobra.ExactArgs(3),
		RunE: runModify,
	}
}

func runModify(_ *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return PrintJSONError(err)
	}
	search, replace := args[1], args[2]

	result, err := doModify(path, search, replace, "cli:modify")
	if err != nil {
		printAmbiguity(err)
		return PrintJSONError(fmt.Errorf("modify %s: %w", path, err))
	}
	return PrintJSON(result)
}

// doModify runs the modify operation and records the audit entry. Shared
// with the sed command, which is a different spelling of the same edit.
func doModify(path, search, replace, source string) (modify.Result, error) {
	invoker, err := identity.Current()
	if err != nil {
		return modify.Result{Path: path}, err
	}

	st, err := Store()
	if err != nil {
		return modify.Result{Path: path}, err
	}

	opts := modify.Options{
		Search:       search,
		Replace:      replace,
		Identity:     identity.Identity(Operator()),
		Invoker:      invoker,
		BackupAlways: cfg.BackupAlways(),
		Colour:       colourOut(),
	}

	w := Out()
	if JSON() {
		w = io.Discard
	}

	result, err := modify.Run(w, st, path, opts)

	ev := audit.Event(source, "modify").
		Actor(Operator()).
		Path(path).
		Backup(result.Backup).
		Detail("search", search).
		Detail("replace", replace)
	if Reason() != "" {
		ev.Detail("reason", Reason())
	}
	if result.Warning != "" {
		ev.Detail("warning", result.Warning)
	}
	ev.Write(err)

	return result, err
}

// printAmbiguity lists the colliding lines when an edit was refused as
// ambiguous, so the operator can tighten the search text.
func printAmbiguity(err error) {
	var amb *change.AmbiguityError
	if !errors.As(err, &amb) || JSON() {
		return
	}
	for _, m := range amb.Matches {
		fmt.Fprintf(os.Stderr, "  line %d: %s\n", m.Line, m.Text)
	}
}

func colourOut() bool {
	return !JSON() && term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	rootCmd.AddCommand(newModifyCmd())
}
