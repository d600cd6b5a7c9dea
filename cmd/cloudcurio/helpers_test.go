package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudcurio/cloudcurio-installer/internal/catalog"
	"github.com/cloudcurio/cloudcurio-installer/internal/colors"
	"github.com/cloudcurio/cloudcurio-installer/internal/config"
	"github.com/stretchr/testify/require"
)

// setupConfig loads configuration from empty temp dirs so the user's files
// and state are never touched.
func setupConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("CLOUDCURIO_CONFIG_PATH", "")
	config.Load()
}

func port(n int) *int { return &n }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.CategoryDef{
		{Name: "Containers", Description: "Container runtimes", Tools: []catalog.ToolDef{
			{Tag: "docker", Name: "Docker Engine"},
			{Tag: "podman", Name: "Podman"},
		}},
		{Name: "Databases", Description: "Database systems", Tools: []catalog.ToolDef{
			{Tag: "postgresql", Name: "PostgreSQL 15", Port: port(5432)},
		}},
	})
	require.NoError(t, err)
	return c
}

func staticLoader(c *catalog.Catalog) catalogLoader {
	return func() (*catalog.Catalog, error) { return c, nil }
}

// fakeRunner writes a shell script standing in for ansible-playbook and
// points the runner setting at it.
func fakeRunner(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-playbook")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	config.Set("runner", path)
	return path
}

// captureColors redirects colors output for the duration of the test.
func captureColors(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	colors.SetOutput(stdout, stderr)
	t.Cleanup(func() { colors.SetOutput(nil, nil) })
	return stdout, stderr
}

// captureWriter swaps *w for a buffer until the test ends.
func captureWriter(t *testing.T, w *io.Writer) *bytes.Buffer {
	t.Helper()
	orig := *w
	buf := &bytes.Buffer{}
	*w = buf
	t.Cleanup(func() { *w = orig })
	return buf
}
