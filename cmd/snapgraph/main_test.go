package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownCommand(t *testing.T) {
	err := run([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestMissingCommand(t *testing.T) {
	require.Error(t, run(nil))
}

func TestHelp(t *testing.T) {
	require.NoError(t, run([]string{"help", "serve"}))
	require.Error(t, run([]string{"help", "frobnicate"}))
}

func TestPrintSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, run([]string{"print-schema", "-out", out}))

	sdl, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(sdl), "type Query")
	assert.Contains(t, string(sdl), "union AgendaItem")
	assert.Contains(t, string(sdl), "enum PhotoCategory")
}
