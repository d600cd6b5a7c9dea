// Package cmd holds the root cobra command shared by every subcommand.
package cmd

import (
	stderrors "errors"
	"fmt"

	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/cloudcurio/cloudcurio-installer/internal/logging"
	"github.com/spf13/cobra"
)

// ProgramName is the binary name used in help and version output.
const ProgramName = "cloudcurio"

// RootCmd represents the base command when called without any subcommands.
// Its Run is installed by the binary so that the TUI can be wired with its
// dependencies.
var RootCmd = &cobra.Command{
	Use:               ProgramName,
	Short:             "Select and install DevOps tools",
	Long:              `Select DevOps and infrastructure tools from a catalog and install them with ansible-playbook.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

// Flags that override config keys of the same name.
var overrideFlags = []struct {
	name  string
	usage string
}{
	{name: "inventory", usage: "inventory file passed to the runner with -i"},
	{name: "playbook", usage: "playbook passed to the runner"},
	{name: "runner", usage: "runner executable"},
	{name: "workdir", usage: "directory the runner is started in"},
}

// Execute runs the root command. The returned error may be an *ExitError.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.Version = GetVersion()

	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		PrintHelp(cmd.Root())
	})

	for _, f := range overrideFlags {
		RootCmd.PersistentFlags().String(f.name, "", f.usage)
	}
	RootCmd.PersistentFlags().Bool("debug", false, "print debug output and structured logs")
}

// setup loads configuration, applies flag overrides and starts the file logger.
func setup(cmd *cobra.Command, args []string) error {
	config.Load()
	if err := applyFlags(cmd); err != nil {
		return err
	}
	colors.SetDebug(config.GetBool("debug", false))

	if err := logging.InitGlobal(); err != nil {
		// The installer works without a log file.
		colors.Warning(fmt.Sprintf("file logging disabled: %v", err))
	}
	logging.Info("command started", "command", cmd.CommandPath())
	colors.StructuredDebug("config", "load", "completed", nil, "", map[string]interface{}{"path": config.Path()})
	return nil
}

func applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for _, f := range overrideFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		config.Set(f.name, v)
	}
	if flags.Changed("debug") {
		debug, err := flags.GetBool("debug")
		if err != nil {
			return err
		}
		config.Set("debug", fmt.Sprint(debug))
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	logging.Info("command finished", "command", cmd.CommandPath())
	if err := logging.ShutdownGlobal(); err != nil {
		colors.Debug(fmt.Sprintf("logger shutdown: %v", err))
	}
}

// ExitError makes the process exit with Code. Err, when set, has not been
// shown to the user yet.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an Execute error to a process exit status. Codes outside
// 1-255, such as -1 for a signalled runner, become 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) && exitErr.Code > 0 && exitErr.Code < 256 {
		return exitErr.Code
	}
	return 1
}

// Reportable returns the error that still has to be shown, or nil when the
// command already told the user.
func Reportable(err error) error {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Err
	}
	return err
}
