package cli

import (
	"github.com/spf13/cobra"
)

// version is overridden via -ldflags at release time.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("kvlite version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
