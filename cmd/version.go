package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cloudcurio/cloudcurio-installer/internal/version"
	"github.com/spf13/cobra"
)

var versionOutputWriter io.Writer = os.Stdout

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show the current version of cloudcurio.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		PrintVersion()
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

// GetVersion returns the version string.
func GetVersion() string {
	return version.String()
}

// PrintVersion prints the version banner.
func PrintVersion() {
	fmt.Fprintln(versionOutputWriter, version.Banner(ProgramName))
}
