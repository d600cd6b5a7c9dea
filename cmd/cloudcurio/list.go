package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cloudcurio/cloudcurio-installer/cmd"
	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/spf13/cobra"
)

var listOutputWriter io.Writer = os.Stdout

const listCommandLong = `List the tool catalog.

USAGE:
    cloudcurio list [OPTIONS]

OPTIONS:
    --category <name>    Only list one category
    --tags               Print bare tags, one per line
    -h, --help           Show this help`

// NewListCmd creates the list command.
func NewListCmd(load catalogLoader) *cobra.Command {
	if load == nil {
		panic("NewListCmd: catalog loader cannot be nil")
	}

	var category string
	var tagsOnly bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the tool catalog",
		Long:  listCommandLong,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			cat, err := load()
			if err != nil {
				return fmt.Errorf("loading tool catalog: %w", err)
			}
			return PrintCatalog(listOutputWriter, cat, category, tagsOnly)
		},
	}

	listCmd.Flags().StringVar(&category, "category", "", "Only list one category")
	listCmd.Flags().BoolVar(&tagsOnly, "tags", false, "Print bare tags, one per line")

	return listCmd
}

// PrintCatalog writes the catalog, or the single category when only is set.
func PrintCatalog(w io.Writer, cat *catalog.Catalog, only string, tagsOnly bool) error {
	names := cat.Categories()
	if only != "" {
		names = []string{only}
	}

	width := 0
	for _, tag := range cat.Tags() {
		width = max(width, len(tag))
	}

	for i, name := range names {
		category, err := cat.Category(name)
		if err != nil {
			return err
		}
		if tagsOnly {
			for _, tool := range category.Tools {
				fmt.Fprintln(w, tool.Tag)
			}
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s - %s\n", category.Name, category.Description)
		for _, tool := range category.Tools {
			fmt.Fprintf(w, "    %-*s  %s\n", width, tool.Tag, tool.Label())
		}
	}
	return nil
}

// listCmd represents the list command
var listCmd = NewListCmd(func() (*catalog.Catalog, error) { return loadCatalog() })

func init() {
	cmd.RootCmd.AddCommand(listCmd)
}
