package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL syntax error makes app.NewApp panic while loading.
	invalidHCL := `
		action "broken" {
			factory = "inline-body"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0600), "failed to set up test file")

	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, []string{"-log-level", "error", filePath})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	assert.Contains(t, runErr.Error(), "application startup panicked", "The error message should indicate that a panic was recovered.")
	assert.Contains(t, runErr.Error(), "failed to load configuration", "The error message should contain the underlying reason for the panic.")
}

func TestRun_ProcessesFragments(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(`
action "hello" {
  factory = "inline-body"
  config  = { body = "<p>hello</p>" }
}

task "page" {
  root = "hello"
  node "hello" {
    action = "hello"
  }
}
`), 0600))
	fragmentsPath := filepath.Join(tempDir, "fragments.yaml")
	require.NoError(t, os.WriteFile(fragmentsPath, []byte(`
- id: header
  type: snippet
  configuration:
    data-task: page
`), 0600))
	outputPath := filepath.Join(tempDir, "out.json")

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{
		"-log-level", "error", "-f", fragmentsPath, "-o", outputPath, configPath,
	})

	// --- Assert ---
	require.NoError(t, err)
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"body": "<p>hello</p>"`)
	assert.Contains(t, string(data), `"status": "SUCCESS"`)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
