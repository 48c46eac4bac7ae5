package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protonpatch/protonpatch/cmd"
)

func init() {
	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("protonpatch version {{.Version}}\n")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of protonpatch.`,
	Run: func(c *cobra.Command, _ []string) {
		fmt.Fprintf(c.OutOrStdout(), "protonpatch version %s\n  commit: %s\n  built:  %s\n",
			cmd.Version, cmd.Commit, cmd.Date)
	},
}
