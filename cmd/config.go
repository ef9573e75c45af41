// config.go implements the "safechange config" command for configuration
// management.
//
// Design: Config follows a cascade model similar to git: local config
// (.safechange/config.yaml) takes precedence over global
// (~/.safechange/config.yaml). The --local flag forces the local file even
// if it doesn't exist yet.

package cmd

import (
	"fmt"
	"sort"

	"github.com/jpl-au/safechange/internal/audit"
	"github.com/jpl-au/safechange/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  safechange config                          # show config
  safechange config backup.scheme            # show backup.scheme value
  safechange config backup.scheme timestamp  # set backup.scheme

Configuration locations:
  Global: ~/.safechange/config.yaml
  Local:  .safechange/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool("local", false, "Use local config (.safechange/config.yaml)")
	return c
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool("local")

	var conf *config.Config
	var err error
	if forceLocal {
		conf, err = config.LoadScope(config.ScopeLocal)
	} else {
		conf, err = config.Load()
	}
	if err != nil {
		return PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	scopeName := "global"
	if conf.Scope() == config.ScopeLocal {
		scopeName = "local"
	}

	switch len(args) {
	case 0:
		all := conf.All()
		if JSON() {
			return PrintJSON(all)
		}
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(Out(), "%s: %s\n", k, all[k])
		}
		audit.Event("cli:config", "list").Actor(Operator()).Write(nil)

	case 1:
		v, err := conf.Get(args[0])
		audit.Event("cli:config", "get").Actor(Operator()).Detail("key", args[0]).Write(err)
		if err != nil {
			return PrintJSONError(fmt.Errorf("config get %q: %w", args[0], err))
		}
		fmt.Fprintln(Out(), v)

	case 2:
		if err := conf.Set(args[0], args[1]); err != nil {
			audit.Event("cli:config", "set").Actor(Operator()).Detail("key", args[0]).Write(err)
			return PrintJSONError(fmt.Errorf("config set %q: %w", args[0], err))
		}

		saveErr := conf.Save()
		audit.Event("cli:config", "set").Actor(Operator()).Detail("key", args[0]).Detail("scope", scopeName).Write(saveErr)
		if saveErr != nil {
			return PrintJSONError(fmt.Errorf("config save: %w", saveErr))
		}
		fmt.Fprintf(Out(), "%s = %s (%s)\n", args[0], args[1], scopeName)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newConfigCmd())
}
