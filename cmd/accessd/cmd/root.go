package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "accessd",
	Short: "Administrative access-control backend",
	Long: `accessd is an administrative backend for managing user groups and
permissions: paginated listing, creation, partial edits, enable/disable
toggling, soft deletion, and group-to-role bindings, with every mutating
operation gated by a per-capability permission check.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("accessd", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
