package catalog

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func port(n int) *int { return &n }

func scenarioCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := New([]CategoryDef{
		{Name: "Containers", Description: "Container runtimes", Tools: []ToolDef{
			{Tag: "docker", Name: "Docker Engine"},
			{Tag: "podman", Name: "Podman"},
		}},
		{Name: "Databases", Description: "Database systems", Tools: []ToolDef{
			{Tag: "postgresql", Name: "PostgreSQL 15", Port: port(5432)},
		}},
	})
	require.NoError(t, err)
	return c
}

func TestCategoriesKeepDeclarationOrder(t *testing.T) {
	c := scenarioCatalog(t)

	assert.Equal(t, []string{"Containers", "Databases"}, c.Categories())
	assert.Equal(t, c.Categories(), c.Categories())
	assert.Equal(t, []string{"docker", "podman", "postgresql"}, c.Tags())
	assert.Equal(t, 3, c.Len())
}

func TestToolsIn(t *testing.T) {
	c := scenarioCatalog(t)

	tools, err := c.ToolsIn("Containers")
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "docker", tools[0].Tag)
	assert.Equal(t, "Containers", tools[0].Category)
	assert.False(t, tools[0].HasPort())

	_, err = c.ToolsIn("Nope")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "category", nf.Kind)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindTag(t *testing.T) {
	c := scenarioCatalog(t)

	tool, err := c.FindTag("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL 15", tool.Name)
	assert.Equal(t, 5432, tool.Port)
	assert.Equal(t, "PostgreSQL 15 (Port: 5432)", tool.Label())
	assert.Equal(t, "Databases", tool.Category)

	_, err = c.FindTag("kubernetes")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, `tag "kubernetes" not found in catalog`)
}

func TestIndex(t *testing.T) {
	c := scenarioCatalog(t)

	assert.Equal(t, 0, c.Index("docker"))
	assert.Equal(t, 2, c.Index("postgresql"))
	assert.Equal(t, -1, c.Index("missing"))
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	c := scenarioCatalog(t)

	tools, err := c.ToolsIn("Containers")
	require.NoError(t, err)
	tools[0].Tag = "mutated"
	names := c.Categories()
	names[0] = "mutated"
	tags := c.Tags()
	tags[0] = "mutated"

	again, err := c.ToolsIn("Containers")
	require.NoError(t, err)
	assert.Equal(t, "docker", again[0].Tag)
	assert.Equal(t, "Containers", c.Categories()[0])
	assert.Equal(t, "docker", c.Tags()[0])
}

func TestNewRejectsMalformedDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs []CategoryDef
		want string
	}{
		{
			name: "no categories",
			defs: nil,
			want: "no categories defined",
		},
		{
			name: "empty category",
			defs: []CategoryDef{{Name: "Empty"}},
			want: `category "Empty" has no tools`,
		},
		{
			name: "duplicate category",
			defs: []CategoryDef{
				{Name: "A", Tools: []ToolDef{{Tag: "a", Name: "A"}}},
				{Name: "A", Tools: []ToolDef{{Tag: "b", Name: "B"}}},
			},
			want: `duplicate category "A"`,
		},
		{
			name: "tag unique across categories",
			defs: []CategoryDef{
				{Name: "A", Tools: []ToolDef{{Tag: "docker", Name: "Docker"}}},
				{Name: "B", Tools: []ToolDef{{Tag: "docker", Name: "Docker again"}}},
			},
			want: `tag "docker" in "B" already defined in "A"`,
		},
		{
			name: "port out of range",
			defs: []CategoryDef{{Name: "A", Tools: []ToolDef{{Tag: "x", Name: "X", Port: port(70000)}}}},
			want: `tool "x" in "A" has invalid port 70000`,
		},
		{
			name: "zero port",
			defs: []CategoryDef{{Name: "A", Tools: []ToolDef{{Tag: "x", Name: "X", Port: port(0)}}}},
			want: `tool "x" in "A" has invalid port 0`,
		},
		{
			name: "missing display name",
			defs: []CategoryDef{{Name: "A", Tools: []ToolDef{{Tag: "x"}}}},
			want: `tool "x" in "A" has no display name`,
		},
		{
			name: "tag with comma",
			defs: []CategoryDef{{Name: "A", Tools: []ToolDef{{Tag: "x,y", Name: "X"}}}},
			want: `tag "x,y" in "A" contains a comma or whitespace`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.defs)
			assert.Nil(t, c)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Problems, tt.want)
		})
	}
}

func TestValidationErrorCollectsAllProblems(t *testing.T) {
	_, err := New([]CategoryDef{
		{Name: "A", Tools: []ToolDef{{Tag: "", Name: "X"}, {Tag: "y", Name: ""}}},
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)
	assert.Contains(t, err.Error(), "2 problems")
}

func TestConcurrentReads(t *testing.T) {
	c := scenarioCatalog(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range c.Categories() {
				tools, err := c.ToolsIn(name)
				assert.NoError(t, err)
				for _, tool := range tools {
					_, err := c.FindTag(tool.Tag)
					assert.NoError(t, err)
				}
			}
		}()
	}
	wg.Wait()
}
