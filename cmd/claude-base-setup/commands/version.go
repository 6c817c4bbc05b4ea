package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claude-base-setup/cmd"
	"github.com/thoreinstein/claude-base-setup/internal/config"
	"github.com/thoreinstein/claude-base-setup/internal/paths"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, build date, and Go runtime of claude-base-setup, and the config file in use.`,
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		w := c.OutOrStdout()
		fmt.Fprintf(w, "%s version %s\n", paths.AppName, cmd.Version)
		fmt.Fprintf(w, "  commit:    %s\n", cmd.Commit)
		fmt.Fprintf(w, "  built:     %s\n", cmd.Date)
		fmt.Fprintf(w, "  go:        %s\n", runtime.Version())

		file := config.FileUsed()
		if file == "" {
			file = "(defaults)"
		}
		fmt.Fprintf(w, "  config:    %s\n", file)
	},
}
