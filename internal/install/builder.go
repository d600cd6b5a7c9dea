// Package install turns a tool selection into a runner invocation and tracks
// the resulting installation session.
package install

import (
	"sort"
	"strings"

	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/cloudcurio/cloudcurio-installer/internal/runner"
)

// Defaults used when no option or config value overrides them.
const (
	DefaultRunner    = "ansible-playbook"
	DefaultInventory = "inventory/hosts.ini"
	DefaultPlaybook  = "sites.yml"
)

// Invocation is a fully derived runner command.
type Invocation struct {
	Runner    string
	Inventory string
	Playbook  string
	// Tags are unique and in catalog order.
	Tags      []string
	ExtraArgs []string
}

// Args returns the runner arguments:
// -i <inventory> <playbook> --tags <a,b,c> [extra...].
func (inv Invocation) Args() []string {
	args := []string{"-i", inv.Inventory, inv.Playbook, "--tags", strings.Join(inv.Tags, ",")}
	return append(args, inv.ExtraArgs...)
}

// Command returns the process description for the runner package.
func (inv Invocation) Command() runner.Command {
	return runner.Command{Name: inv.Runner, Args: inv.Args()}
}

// CommandLine renders the invocation as a shell-like string for display.
func (inv Invocation) CommandLine() string {
	parts := make([]string, 0, len(inv.ExtraArgs)+6)
	parts = append(parts, shellQuote(inv.Runner))
	for _, arg := range inv.Args() {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Builder derives Invocations from a selection.
type Builder struct {
	catalog   *catalog.Catalog
	runner    string
	inventory string
	playbook  string
	extraArgs []string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithRunner sets the runner executable.
func WithRunner(name string) BuilderOption {
	return func(b *Builder) {
		if name != "" {
			b.runner = name
		}
	}
}

// WithInventory sets the inventory reference.
func WithInventory(path string) BuilderOption {
	return func(b *Builder) {
		if path != "" {
			b.inventory = path
		}
	}
}

// WithPlaybook sets the playbook reference.
func WithPlaybook(path string) BuilderOption {
	return func(b *Builder) {
		if path != "" {
			b.playbook = path
		}
	}
}

// WithExtraArgs appends arguments after --tags.
func WithExtraArgs(args ...string) BuilderOption {
	return func(b *Builder) {
		b.extraArgs = append(b.extraArgs, args...)
	}
}

// NewBuilder returns a Builder over c.
func NewBuilder(c *catalog.Catalog, opts ...BuilderOption) *Builder {
	b := &Builder{
		catalog:   c,
		runner:    DefaultRunner,
		inventory: DefaultInventory,
		playbook:  DefaultPlaybook,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBuilderFromConfig reads runner, inventory, playbook and extra_args from
// the loaded configuration.
func NewBuilderFromConfig(c *catalog.Catalog) *Builder {
	return NewBuilder(c,
		WithRunner(config.Get("runner", DefaultRunner)),
		WithInventory(config.Get("inventory", DefaultInventory)),
		WithPlaybook(config.Get("playbook", DefaultPlaybook)),
		WithExtraArgs(config.GetFields("extra_args")...),
	)
}

// Build derives the invocation for tags. It returns ErrEmptySelection for an
// empty input and a *catalog.NotFoundError for the first unknown tag.
// Duplicates are dropped and the result follows catalog order.
func (b *Builder) Build(tags []string) (Invocation, error) {
	if len(tags) == 0 {
		return Invocation{}, ErrEmptySelection
	}
	seen := make(map[string]struct{}, len(tags))
	filters := make([]string, 0, len(tags))
	for _, tag := range tags {
		if _, err := b.catalog.FindTag(tag); err != nil {
			return Invocation{}, err
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		filters = append(filters, tag)
	}
	sort.Slice(filters, func(i, j int) bool {
		return b.catalog.Index(filters[i]) < b.catalog.Index(filters[j])
	})

	return Invocation{
		Runner:    b.runner,
		Inventory: b.inventory,
		Playbook:  b.playbook,
		Tags:      filters,
		ExtraArgs: append([]string(nil), b.extraArgs...),
	}, nil
}
