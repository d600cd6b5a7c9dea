package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// outputWriter is where help is printed. Nil means stdout.
var outputWriter io.Writer

// helpCmd represents the help command
var helpCmd = &cobra.Command{
	Use:   "help",
	Short: "Show this help message",
	Long:  `Show this help message.`,
	Run: func(cmd *cobra.Command, args []string) {
		PrintHelp(cmd.Root())
	},
}

func init() {
	RootCmd.SetHelpCommand(helpCmd)
}

// commandOrder is the order commands appear in help output.
var commandOrder = []string{
	"list",
	"install",
	"status",
	"config",
	"help",
	"version",
}

// PrintHelp writes the help text for root.
func PrintHelp(root *cobra.Command) {
	w := outputWriter
	if w == nil {
		w = os.Stdout
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-16s %s", found.Use, found.Short))
	}

	fmt.Fprintf(w, `%s v%s

%s

USAGE:
    %s [COMMAND] [OPTIONS]

Without a command the interactive installer starts.

COMMANDS:
%s

OPTIONS:
    --inventory <path>   Inventory file passed to the runner
    --playbook <path>    Playbook passed to the runner
    --runner <name>      Runner executable (default: ansible-playbook)
    --workdir <dir>      Directory the runner is started in
    --debug              Print debug output
    -h, --help           Show help message

KEYS:
    up/down, j/k    Move within the focused pane
    tab, h/l        Switch between categories and tools
    space, enter    Toggle the tool under the cursor
    a               Toggle the whole category
    i               Install the selected tools
    c               Cancel the running installation
    y               Copy the install command
    s               Show installation status and history
    r               Refresh
    q, ctrl+c       Quit
`, root.Name(), root.Version, root.Long, root.Name(), strings.Join(cmdLines, "\n"))
}
