package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display flakelab version information",
	Long:  `Display the current version of flakelab along with build information.`,
	Run: func(cmd *cobra.Command, args []string) {
		printf(cmd, "flakelab version %s\n", Version)
		printf(cmd, "Built at: %s\n", BuildTime)
	},
}

func init() {
	addCommand(versionCmd)
}
