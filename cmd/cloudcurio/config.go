package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cloudcurio/cloudcurio-installer/cmd"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/spf13/cobra"
)

var configOutputWriter io.Writer = os.Stdout

// NewConfigCmd creates the config command.
func NewConfigCmd() *cobra.Command {
	var pathOnly bool

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration as TOML, after defaults, the config
file, CLOUDCURIO_* environment variables and flags are applied.

USAGE:
    cloudcurio config [--path]`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			path := config.Path()
			if pathOnly {
				fmt.Fprintln(configOutputWriter, path)
				return nil
			}
			data, err := config.Dump()
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(path); statErr == nil {
				fmt.Fprintf(configOutputWriter, "# %s\n", path)
			} else {
				fmt.Fprintf(configOutputWriter, "# %s (not found, using defaults)\n", path)
			}
			_, err = configOutputWriter.Write(data)
			return err
		},
	}

	configCmd.Flags().BoolVar(&pathOnly, "path", false, "Print only the config file path")

	return configCmd
}

// configCmd represents the config command
var configCmd = NewConfigCmd()

func init() {
	cmd.RootCmd.AddCommand(configCmd)
}
