//go:build e2e
// +build e2e

package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSmoke_SimpleMarkdownParse drives the parse command against the
// markdown pipeline end to end: real binary, real fixture, real stdout.
func TestSmoke_SimpleMarkdownParse(t *testing.T) {
	binary := buildBinary(t)
	inputPath := filepath.Join("fixtures", "markdown", "simple.md")

	result := runOmniparser(t, binary, "parse", inputPath)

	assert.Equal(t, 0, result.ExitCode, "exit code should be 0")
	assert.Contains(t, result.Stdout, "Parsed with markdown", "should report the parser used")
	assert.Contains(t, result.Stdout, "Title:    Smoke Test Document", "should report the frontmatter title")
	assert.Contains(t, result.Stdout, "Chapters: 2", "should report two detected chapters")
}

// TestSmoke_JSONOutput tests the --format json path produces a decodable
// Document with the expected top-level shape.
func TestSmoke_JSONOutput(t *testing.T) {
	binary := buildBinary(t)
	inputPath := filepath.Join("fixtures", "text", "simple.txt")

	result := runOmniparser(t, binary, "parse", inputPath, "--format", "json")

	assert.Equal(t, 0, result.ExitCode, "exit code should be 0")
	assert.Contains(t, result.Stdout, `"document_id"`, "JSON output should contain document_id")
	assert.Contains(t, result.Stdout, `"parser_used": "text"`, "JSON output should name the text parser")
}

// TestSmoke_CLIHelpDisplay tests root and subcommand help output.
func TestSmoke_CLIHelpDisplay(t *testing.T) {
	binary := buildBinary(t)

	result := runOmniparser(t, binary, "--help")
	assert.Equal(t, 0, result.ExitCode, "exit code should be 0")
	assert.Contains(t, result.Stdout, "Usage:", "should contain Usage section")
	assert.Contains(t, result.Stdout, "parse", "should mention the parse command")

	parseHelp := runOmniparser(t, binary, "parse", "--help")
	assert.Equal(t, 0, parseHelp.ExitCode, "exit code should be 0")
	assert.Contains(t, parseHelp.Stdout, "--format", "parse help should mention --format flag")
	assert.Contains(t, parseHelp.Stdout, "--ocr", "parse help should mention --ocr flag")
}

// TestSmoke_CLINoArguments tests that invoking with no arguments prints
// usage rather than failing.
func TestSmoke_CLINoArguments(t *testing.T) {
	binary := buildBinary(t)

	result := runOmniparser(t, binary)
	assert.Equal(t, 0, result.ExitCode, "exit code should be 0")
	assert.Contains(t, result.Stdout, "Usage:", "should show usage")
	assert.Contains(t, result.Stdout, "Available Commands", "should list commands")
}

// TestSmoke_InvalidInputFile checks the file-read exit code for a source
// path that does not exist.
func TestSmoke_InvalidInputFile(t *testing.T) {
	binary := buildBinary(t)
	nonExistentFile := "nonexistent.md"

	result := runOmniparser(t, binary, "parse", nonExistentFile)

	assert.Equal(t, 3, result.ExitCode, "exit code should be ExitFileRead")
	assert.Contains(t, result.Stderr, nonExistentFile, "error should mention the file")
}

// TestSmoke_UnsupportedFormat checks the unsupported-format exit code for
// a source with no registered extension.
func TestSmoke_UnsupportedFormat(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()
	unsupported := filepath.Join(dir, "data.xyz")
	require.NoError(t, os.WriteFile(unsupported, []byte("whatever"), 0o644))

	result := runOmniparser(t, binary, "parse", unsupported)

	assert.Equal(t, 2, result.ExitCode, "exit code should be ExitUnsupportedFmt")
}

// TestSmoke_EmptyFileIsValidation checks that an empty file surfaces as a
// validation error through the whole dispatch + pipeline path.
func TestSmoke_EmptyFileIsValidation(t *testing.T) {
	binary := buildBinary(t)
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	result := runOmniparser(t, binary, "parse", empty)

	assert.Equal(t, 6, result.ExitCode, "exit code should be ExitValidation")
}

// Helper types and functions

type cliResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "omniparser")
	if strings.Contains(os.Getenv("GOOS"), "windows") {
		binaryPath += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/omniparser")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build binary: %s", string(output))

	return binaryPath
}

func runOmniparser(t *testing.T, binary string, args ...string) *cliResult {
	t.Helper()

	cmd := exec.Command(binary, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	return &cliResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
}
