/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// flags.go defines global CLI flags and accessors for shared state.
//
// Separated from root.go to isolate flag definitions from command logic.
// Commands access these via accessor functions rather than directly
// accessing the variables.
//
// Design: Flags are defined as package-level variables and bound to the
// root command. The JSON() helper simplifies output format detection
// across all commands.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jpl-au/safechange/internal/backup"
	"github.com/jpl-au/safechange/internal/config"
	"github.com/spf13/cobra"
)

var validOutputFormats = []string{"json"}

var (
	output       string
	operatorFlag string
	tagFlag      string
	dirFlag      string
	reason       string
)

// out is the output writer for commands. Defaults to os.Stdout.
// Tests can replace this to capture output.
var out io.Writer = os.Stdout

// cfg is loaded once in PersistentPreRunE.
var cfg *config.Config

// Out returns the output writer.
func Out() io.Writer { return out }

// SetOut sets the output writer (for testing).
func SetOut(w io.Writer) { out = w }

// Operator returns the declared operating identity (-u flag).
func Operator() string { return operatorFlag }

// Reason returns the free-text reason recorded in the activity log.
func Reason() string { return reason }

// Dir returns the state directory holding backups and logs.
// Priority: --dir flag > SAFECHANGE_DIR env var > default.
func Dir() string {
	if dirFlag != "" {
		return dirFlag
	}
	if d := os.Getenv("SAFECHANGE_DIR"); d != "" {
		return d
	}
	return config.DefaultStateDir
}

// Tag returns the change tag namespacing sequential backup versions.
// Priority: --tag flag > config > default.
func Tag() string {
	if tagFlag != "" {
		return tagFlag
	}
	return cfg.Tag()
}

// Store builds the backup store from the resolved config and flags.
func Store() (*backup.Store, error) {
	scheme, err := backup.ParseScheme(cfg.Scheme())
	if err != nil {
		return nil, err
	}
	return &backup.Store{
		Dir:    cfg.BackupDir(Dir()),
		Tag:    Tag(),
		Scheme: scheme,
	}, nil
}

// JSON returns true if JSON output is requested.
func JSON() bool { return output == "json" }

// PrintJSON marshals v to JSON and writes it to the output writer.
// Returns nil if output format is not JSON.
func PrintJSON(v any) error {
	if output != "json" {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(out, string(b))
	return nil
}

// PrintJSONError prints an error in JSON format if output is JSON, and
// silences Cobra's duplicate printing. The error is still returned so the
// process exits 1 - scripts rely on the exit code, whatever the output
// format.
func PrintJSONError(err error) error {
	if output != "json" || err == nil {
		return err
	}
	// If we cannot print the error, checking the print error is futile.
	_ = PrintJSON(map[string]string{"error": err.Error()})
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format: json")
	rootCmd.PersistentFlags().StringVarP(&operatorFlag, "identity", "u", "", "Declared operating identity (must match the invoking user)")
	rootCmd.PersistentFlags().StringVarP(&tagFlag, "tag", "t", "", "Change tag namespacing backup versions (e.g. CHG-1042)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "State directory for backups and logs (env: SAFECHANGE_DIR)")
	rootCmd.PersistentFlags().StringVarP(&reason, "reason", "m", "", "Free-text reason recorded in the activity log")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validOutputFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
