// sed.go implements the "safechange sed" command, a sed-spelled front end
// to the modify operation for scripts written against sed muscle memory.

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jpl-au/safechange/internal/sed"
	"github.com/spf13/cobra"
)

func newSedCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "sed [-i] <expression> <path>",
		Short: "Modify a file using sed-style substitution syntax",
		Long: `Run a modify operation expressed in sed substitution syntax.

  safechange -u svc-deploy sed -i 's/timeout=30/timeout=60/' /etc/app.conf
  safechange -u svc-deploy sed -i 's|http://|https://|' /etc/app.conf

The -i flag (in-place) is required, matching sed behaviour. Both sides
are literal text, and the same single-matching-line rule applies as for
modify. Only substitution (s) commands are supported.`,
		Args: cobra.ExactArgs(2),
		RunE: runSed,
	}
	c.Flags().BoolP("in-place", "i", false, "Edit file in place (required)")
	return c
}

func runSed(c *cobra.Command, args []string) error {
	inPlace, _ := c.Flags().GetBool("in-place")
	if !inPlace {
		return PrintJSONError(errors.New("the -i flag is required (sed only supports in-place editing)"))
	}

	expr, err := sed.ParseExpr(args[0])
	if err != nil {
		return PrintJSONError(err)
	}
	path, err := filepath.Abs(args[1])
	if err != nil {
		return PrintJSONError(err)
	}

	result, err := doModify(path, expr.Old, expr.New, "cli:sed")
	if err != nil {
		printAmbiguity(err)
		return PrintJSONError(fmt.Errorf("sed %s: %w", path, err))
	}
	return PrintJSON(result)
}

func init() {
	rootCmd.AddCommand(newSedCmd())
}
