package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/blockflow/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidDocument(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	invalidHCL := `
		step "core/print@v1" "A" {
			value = "x"
		// Missing closing brace here
	`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")
	out, errW := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, errW, []string{"validate", filePath})

	// --- Assert ---
	require.Error(t, runErr)
	var exitErr *cli.ExitError
	require.ErrorAs(t, runErr, &exitErr)
	require.Equal(t, cli.ExitFailure, exitErr.Code)
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out, errW := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(context.Background(), out, errW, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out, errW := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(context.Background(), out, errW, []string{"describe", "--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
