package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintCatalog(&buf, testCatalog(t), "", false))

	expected := "Containers - Container runtimes\n" +
		"    docker      Docker Engine\n" +
		"    podman      Podman\n" +
		"\n" +
		"Databases - Database systems\n" +
		"    postgresql  PostgreSQL 15 (Port: 5432)\n"
	assert.Equal(t, expected, buf.String())
}

func TestPrintCatalogFilters(t *testing.T) {
	c := testCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, PrintCatalog(&buf, c, "Databases", false))
	assert.NotContains(t, buf.String(), "docker")
	assert.Contains(t, buf.String(), "PostgreSQL 15 (Port: 5432)")

	buf.Reset()
	require.NoError(t, PrintCatalog(&buf, c, "", true))
	assert.Equal(t, "docker\npodman\npostgresql\n", buf.String())

	err := PrintCatalog(&buf, c, "Nope", false)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListCmd(t *testing.T) {
	out := captureWriter(t, &listOutputWriter)

	listCmd := NewListCmd(staticLoader(testCatalog(t)))
	listCmd.SetArgs([]string{"--category", "Containers", "--tags"})
	require.NoError(t, listCmd.Execute())
	assert.Equal(t, "docker\npodman\n", out.String())
}

func TestListCmdCatalogError(t *testing.T) {
	broken := errors.New("catalog: 1 problem")
	listCmd := NewListCmd(func() (*catalog.Catalog, error) { return nil, broken })
	listCmd.SetArgs([]string{})
	listCmd.SilenceUsage = true
	listCmd.SilenceErrors = true

	err := listCmd.Execute()
	assert.ErrorIs(t, err, broken)
}

func TestNewListCmdRequiresLoader(t *testing.T) {
	assert.Panics(t, func() { NewListCmd(nil) })
}
