package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fcmcmp/internal/testutil"
)

func TestValidate_ValidMetadata(t *testing.T) {
	path := writeMetadataFixture(t)

	stdout, _, err := runCLI(t, "validate", path)
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓")
	assert.Contains(t, stdout, "2 experiment(s)")
	assert.Contains(t, stdout, "3 condition(s)")
	assert.Contains(t, stdout, "3 well reference(s)")
}

func TestValidate_ValidMetadataJSON(t *testing.T) {
	path := writeMetadataFixture(t)

	stdout, _, err := runCLI(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, float64(2), data["experiments"])
	assert.Equal(t, float64(3), data["wells"])
}

func TestValidate_MissingFile(t *testing.T) {
	stdout, _, err := runCLI(t, "validate", "/nonexistent/experiment.yml")
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "LOAD_ERROR")
}

func TestValidate_AmbiguousWell(t *testing.T) {
	path := writeMetadataFixture(t)

	// A second file carrying the A1 token makes the reference ambiguous.
	plate := filepath.Join(filepath.Dir(path), "plates", "p1")
	testutil.WriteFCS(t, filepath.Join(plate, "export_A1_002.fcs"),
		[]string{"FSC-A"}, [][]float64{{1}}, nil)

	stdout, _, err := runCLI(t, "validate", path)
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "AMBIGUOUS_WELL")
}

func TestValidate_UnknownPlate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yml")
	metadata := `label: lonely
wells:
  only: [nope/A1]
`
	require.NoError(t, os.WriteFile(path, []byte(metadata), 0o644))

	stdout, _, err := runCLI(t, "validate", path)
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "UNKNOWN_PLATE")
}

func TestValidate_MalformedExperimentJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "experiment.yml")
	require.NoError(t, os.WriteFile(path, []byte("wells:\n  only: [A1]\n"), 0o644))

	stdout, _, err := runCLI(t, "--format", "json", "validate", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MALFORMED_EXPERIMENT", resp.Error.Code)
}

func TestValidate_VerboseLogsToStderr(t *testing.T) {
	path := writeMetadataFixture(t)

	stdout, stderr, err := runCLI(t, "--verbose", "--format", "json", "validate", path)
	require.NoError(t, err)

	// Loader logs go to stderr so the JSON on stdout stays parseable.
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Contains(t, stderr, "loaded experiments")
}

func TestInvalidFormatRejected(t *testing.T) {
	path := writeMetadataFixture(t)

	_, _, err := runCLI(t, "--format", "xml", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
