package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fcmcmp/internal/testutil"
)

// writeMetadataFixture lays out a plate with two wells and a metadata file
// holding two experiments, one of which revisits the A1 well.
func writeMetadataFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	plate := filepath.Join(dir, "plates", "p1")
	require.NoError(t, os.MkdirAll(plate, 0o755))

	testutil.WriteFCS(t, filepath.Join(plate, "export_A1_001.fcs"),
		[]string{"FSC-A", "FITC-A"},
		[][]float64{{100, 200}, {1, 10}},
		nil,
	)
	testutil.WriteFCS(t, filepath.Join(plate, "export_B1_001.fcs"),
		[]string{"FSC-A", "FITC-A"},
		[][]float64{{300, 400, 500}, {2, 20, 200}},
		nil,
	)

	metadata := `plates:
  p1: plates/p1
---
label: dilution
pH: 7.4
wells:
  without: [p1/A1]
  with: [p1/B1]
---
label: repeat
wells:
  without: [p1/A1]
`
	path := filepath.Join(dir, "experiment.yml")
	require.NoError(t, os.WriteFile(path, []byte(metadata), 0o644))
	return path
}

// runCLI executes the root command with the given arguments and captures
// both output streams.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}
