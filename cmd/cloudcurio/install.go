package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudcurio/cloudcurio-installer/cmd"
	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/errors"
	"github.com/cloudcurio/cloudcurio-installer/internal/hooks"
	"github.com/cloudcurio/cloudcurio-installer/internal/install"
	"github.com/spf13/cobra"
)

// exitCancelled is the status used when an install is interrupted, as a shell would report SIGINT.
const exitCancelled = 130

var installOutputWriter io.Writer = os.Stdout

const installCommandLong = `Install tools without the interactive UI.

Runner output is streamed as it arrives. Ctrl+C cancels the installation.
The exit status is the runner's exit status.

USAGE:
    cloudcurio install [OPTIONS] TAG...

OPTIONS:
    --category <name>    Also install every tool of a category (repeatable)
    --dry-run            Print the command without running it
    -h, --help           Show this help

EXAMPLES:
    cloudcurio install docker podman
    cloudcurio install --category Databases --inventory prod.ini`

// NewInstallCmd creates the install command.
func NewInstallCmd(load catalogLoader) *cobra.Command {
	if load == nil {
		panic("NewInstallCmd: catalog loader cannot be nil")
	}

	var categories []string
	var dryRun bool

	installCmd := &cobra.Command{
		Use:   "install TAG...",
		Short: "Install tools by tag",
		Long:  installCommandLong,
		RunE: func(c *cobra.Command, args []string) error {
			cat, err := load()
			if err != nil {
				return fmt.Errorf("loading tool catalog: %w", err)
			}
			tags, err := expandCategories(cat, args, categories)
			if err != nil {
				return err
			}
			inv, err := install.NewBuilderFromConfig(cat).Build(tags)
			if err != nil {
				return err
			}

			fmt.Fprintf(installOutputWriter, "Installing %d tool(s)...\n", len(inv.Tags))
			fmt.Fprintf(installOutputWriter, "Command: %s\n", inv.CommandLine())
			if dryRun {
				return nil
			}

			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunInstall(ctx, inv)
		},
	}

	installCmd.Flags().StringArrayVar(&categories, "category", nil, "Also install every tool of a category")
	installCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the command without running it")

	return installCmd
}

// expandCategories appends the tags of each named category to tags.
func expandCategories(cat *catalog.Catalog, tags, categories []string) ([]string, error) {
	out := append([]string(nil), tags...)
	for _, name := range categories {
		tools, err := cat.ToolsIn(name)
		if err != nil {
			return nil, err
		}
		for _, tool := range tools {
			out = append(out, tool.Tag)
		}
	}
	return out, nil
}

// RunInstall runs inv to completion, streaming its output. Cancelling ctx
// cancels the installation. A non-successful session yields a *cmd.ExitError.
func RunInstall(ctx context.Context, inv install.Invocation) error {
	store := openHistoryIfEnabled()
	if store != nil {
		defer closeHistory(store)
	}
	hookRunner := hooks.NewRunnerFromConfig(hooks.WithReporter(errors.NewDefaultCLIHandler()))
	defer waitForHooks(hookRunner)
	manager := newManager(managerOptions(store, hookRunner, lineStreamer{w: installOutputWriter})...)

	session, err := manager.Start(ctx, inv)
	if err != nil {
		return err
	}
	// Done closes once the process is gone, also after a cancel.
	status, _ := session.Wait(context.Background())

	switch status {
	case install.StatusSucceeded:
		colors.Success(fmt.Sprintf("Installed %s", strings.Join(inv.Tags, ", ")))
		return nil
	case install.StatusCancelled:
		colors.Warning("Installation cancelled")
		return &cmd.ExitError{Code: exitCancelled}
	default:
		// A launch error was already streamed as the only log line.
		code, _ := session.ExitCode()
		colors.Error(fmt.Sprintf("Installation failed with exit code %d", code))
		return &cmd.ExitError{Code: code}
	}
}

// lineStreamer prints runner output as the session records it.
type lineStreamer struct {
	w io.Writer
}

func (l lineStreamer) LogAppended(_ *install.Session, line string) {
	fmt.Fprintln(l.w, line)
}

func (l lineStreamer) StatusChanged(*install.Session, install.Status) {}

// installCmd represents the install command
var installCmd = NewInstallCmd(func() (*catalog.Catalog, error) { return loadCatalog() })

func init() {
	cmd.RootCmd.AddCommand(installCmd)
}
