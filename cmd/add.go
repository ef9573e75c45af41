// add.go implements the "safechange add" command: append content at
// end-of-file or insert it after a uniquely matching anchor line.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/jpl-au/safechange/internal/identity"
	"github.com/jpl-au/safechange/internal/insert"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "add <path> <content>",
		Short: "Append content, or insert it after a unique anchor line",
		Long: `Add new content to a file, after backing it up.

  safechange -u svc-deploy add /etc/app.conf "pool_size=10"
  safechange -u svc-deploy add /etc/app.conf "pool_size=10" --after "[database]"

Pass "-" as content to read it from stdin; multi-line content is
inserted as one block. The anchor matches the start of a line and must
match exactly one line.`,
		Args: cobra.ExactArgs(2),
		RunE: runAdd,
	}
	c.Flags().String("after", "", "Anchor line prefix to insert after (default: end of file)")
	return c
}

func runAdd(c *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return PrintJSONError(err)
	}

	content := args[1]
	if content == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return PrintJSONError(fmt.Errorf("read stdin: %w", err))
		}
		content = string(data)
	}
	anchor, _ := c.Flags().GetString("after")

	invoker, err := identity.Current()
	if err != nil {
		return PrintJSONError(err)
	}
	st, err := Store()
	if err != nil {
		return PrintJSONError(err)
	}

	opts := insert.Options{
		Content:  content,
		Anchor:   anchor,
		Identity: identity.Identity(Operator()),
		Invoker:  invoker,
	}

	w := Out()
	if JSON() {
		w = io.Discard
	}

	result, err := insert.Run(w, st, path, opts)

	ev := audit.Event("cli:add", "add").
		Actor(Operator()).
		Path(path).
		Backup(result.Backup).
		Detail("content", firstLine(content))
	if anchor != "" {
		ev.Detail("anchor", anchor)
	}
	if Reason() != "" {
		ev.Detail("reason", Reason())
	}
	ev.Write(err)

	if err != nil {
		printAmbiguity(err)
		return PrintJSONError(fmt.Errorf("add %s: %w", path, err))
	}
	return PrintJSON(result)
}

// firstLine truncates multi-line content to its first line for the log.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(newAddCmd())
}
