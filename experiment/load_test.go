package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fcmcmp/fcs"
	"github.com/roach88/fcmcmp/internal/testutil"
)

func writeMetadata(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadExperiments_InferredPlate(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "plate_1")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")
	writeWellFixture(t, plate, "export_B1_001.fcs")

	// No header: the plate directory is inferred from the file's own name.
	metaPath := filepath.Join(dir, "plate_1.yml")
	writeMetadata(t, metaPath, `
label: sgGFP
channel: FITC-A
wells:
  without: [A1]
  with: [B1]
`)

	experiments, err := LoadExperiments(metaPath)
	require.NoError(t, err)
	require.Len(t, experiments, 1)

	exp := experiments[0]
	assert.Equal(t, "sgGFP", exp.Label)
	assert.Equal(t, "FITC-A", exp.Extra["channel"])

	require.Len(t, exp.Conditions, 2)
	assert.Equal(t, "without", exp.Conditions[0].Name)
	assert.Equal(t, "with", exp.Conditions[1].Name)

	well := exp.Conditions[0].Wells[0]
	assert.Equal(t, "A1", well.Label)
	assert.Equal(t, 2, well.Data().NumRows())
	assert.Equal(t, []string{"FSC-A", "FITC-A"}, well.Data().Columns())
}

func TestLoadExperiments_PlateHeader(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")

	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
plate: data
---
label: sgRFP
wells:
  with: [A1]
`)

	experiments, err := LoadExperiments(metaPath)
	require.NoError(t, err)
	require.Len(t, experiments, 1)
	assert.Equal(t, "sgRFP", experiments[0].Label)
}

func TestLoadExperiments_PlatesHeader(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"rep1", "rep2"} {
		plate := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(plate, 0o755))
		writeWellFixture(t, plate, "export_A1_001.fcs")
	}

	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
plates:
  one: rep1
  two: rep2
---
label: sgNull
wells:
  with: [one/A1]
  without: [two/A1]
`)

	experiments, err := LoadExperiments(metaPath)
	require.NoError(t, err)
	require.Len(t, experiments, 1)

	with := experiments[0].Condition("with")
	without := experiments[0].Condition("without")
	require.NotNil(t, with)
	require.NotNil(t, without)
	assert.NotEqual(t, with.Wells[0].PhysicalID(), without.Wells[0].PhysicalID())
}

func TestLoadExperiments_AliasedReferencesLoadOnce(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "plate")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")

	// Two plate names for one directory: "a/A1" and "b/A1" are aliases
	// for the same physical well.
	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
plates:
  a: plate
  b: plate
---
label: aliased
wells:
  with: [a/A1]
  without: [b/A1]
`)

	parser := testutil.NewCountingParser(fcs.FileParser{})
	experiments, err := LoadExperiments(metaPath, WithParser(parser))
	require.NoError(t, err)

	assert.Equal(t, 1, parser.Total())

	w1 := experiments[0].Condition("with").Wells[0]
	w2 := experiments[0].Condition("without").Wells[0]

	// Two distinct wrappers sharing the loaded frame and metadata.
	assert.NotSame(t, w1, w2)
	assert.Same(t, w1.Data(), w2.Data())
	assert.Equal(t, w1.PhysicalID(), w2.PhysicalID())
	assert.Equal(t, "a/A1", w1.Label)
	assert.Equal(t, "b/A1", w2.Label)
}

func TestLoadExperiments_AmbiguousHeader(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
plate: data
plates:
  one: rep1
---
label: broken
wells:
  with: [A1]
`)

	parser := testutil.NewCountingParser(fcs.FileParser{})
	_, err := LoadExperiments(metaPath, WithParser(parser))
	require.Error(t, err)
	assert.True(t, IsMalformedHeader(err))
	// The header fails before any well resolution: no loads happened.
	assert.Equal(t, 0, parser.Total())
}

func TestLoadExperiments_TooManyHeaderFields(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
plate: data
notes: extra
---
label: broken
wells:
  with: [A1]
`)

	_, err := LoadExperiments(metaPath)
	require.Error(t, err)
	assert.True(t, IsMalformedHeader(err))
	assert.Contains(t, err.Error(), "too many fields")
}

func TestLoadExperiments_MissingLabel(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
wells:
  with: [A1]
`)

	_, err := LoadExperiments(metaPath)
	require.Error(t, err)
	assert.True(t, IsMalformedExperiment(err))
	assert.Contains(t, err.Error(), "missing a label")
	assert.Contains(t, err.Error(), "document=1")
}

func TestLoadExperiments_MissingWells(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
label: lonely
`)

	_, err := LoadExperiments(metaPath)
	require.Error(t, err)
	assert.True(t, IsMalformedExperiment(err))
	assert.Contains(t, err.Error(), "doesn't have any wells")
}

func TestLoadExperiments_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "empty.yml")
	writeMetadata(t, metaPath, "")

	_, err := LoadExperiments(metaPath)
	require.Error(t, err)
	assert.True(t, IsMalformedExperiment(err))
	assert.Contains(t, err.Error(), "is empty")
}

func TestLoadExperiments_UnknownPlate(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "exp")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")

	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
label: sgGFP
wells:
  with: [undefined/A1]
`)

	_, err := LoadExperiments(metaPath)
	require.Error(t, err)
	assert.True(t, IsUnknownPlate(err))
	assert.Contains(t, err.Error(), `"undefined"`)
}

func TestLoadExperiments_UnparseableReference(t *testing.T) {
	dir := t.TempDir()
	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
label: sgGFP
wells:
  with: [notawell]
`)

	_, err := LoadExperiments(metaPath)
	require.Error(t, err)
	assert.True(t, IsMalformedExperiment(err))
	assert.Contains(t, err.Error(), "cannot parse well reference")
}

func TestLoadExperiments_FailFastOnSecondDocument(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "exp")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")

	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
label: good
wells:
  with: [A1]
---
label: bad
wells:
  with: [Z9]
`)

	experiments, err := LoadExperiments(metaPath)
	require.Error(t, err)
	// No partial collection on failure.
	assert.Nil(t, experiments)
	assert.True(t, IsMalformedExperiment(err))
	assert.Contains(t, err.Error(), "document=2")
}

func TestLoadExperiments_WellLoadError(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "exp")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	// A matching filename with garbage contents.
	require.NoError(t, os.WriteFile(filepath.Join(plate, "export_A1_001.fcs"), []byte("not fcs"), 0o644))

	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
label: sgGFP
wells:
  with: [A1]
`)

	_, err := LoadExperiments(metaPath)
	require.Error(t, err)
	assert.True(t, IsWellLoad(err))
	assert.Contains(t, err.Error(), "export_A1_001.fcs")
}

func TestLoadExperiments_DocumentOrderPreserved(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "exp")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")
	writeWellFixture(t, plate, "export_A2_001.fcs")

	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
label: second-alphabetically
wells:
  zeta: [A1, A2]
  alpha: [A1]
---
label: another
wells:
  with: [A2]
`)

	experiments, err := LoadExperiments(metaPath)
	require.NoError(t, err)
	require.Len(t, experiments, 2)

	assert.Equal(t, "second-alphabetically", experiments[0].Label)
	assert.Equal(t, "another", experiments[1].Label)

	// Condition order follows the document, not any sort.
	assert.Equal(t, "zeta", experiments[0].Conditions[0].Name)
	assert.Equal(t, "alpha", experiments[0].Conditions[1].Name)

	// Well order follows the source list.
	labels := []string{}
	for _, w := range experiments[0].Conditions[0].Wells {
		labels = append(labels, w.Label)
	}
	assert.Equal(t, []string{"A1", "A2"}, labels)
}

func TestLoadExperiments_InjectedCacheSharesLoads(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "exp")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")

	metaPath := filepath.Join(dir, "exp.yml")
	writeMetadata(t, metaPath, `
label: sgGFP
wells:
  with: [A1]
`)

	parser := testutil.NewCountingParser(fcs.FileParser{})

	// Default: a fresh cache per call, so two calls parse twice.
	_, err := LoadExperiments(metaPath, WithParser(parser))
	require.NoError(t, err)
	_, err = LoadExperiments(metaPath, WithParser(parser))
	require.NoError(t, err)
	assert.Equal(t, 2, parser.Total())

	// With an injected cache the second call reuses the first parse.
	shared := NewLoader(parser, nil)
	_, err = LoadExperiments(metaPath, WithCache(shared))
	require.NoError(t, err)
	_, err = LoadExperiments(metaPath, WithCache(shared))
	require.NoError(t, err)
	assert.Equal(t, 3, parser.Total())
}

func TestLoadExperiments_AbsolutePlatePath(t *testing.T) {
	dir := t.TempDir()
	plate := filepath.Join(dir, "elsewhere")
	require.NoError(t, os.MkdirAll(plate, 0o755))
	writeWellFixture(t, plate, "export_A1_001.fcs")

	metaDir := t.TempDir()
	metaPath := filepath.Join(metaDir, "exp.yml")
	writeMetadata(t, metaPath, `
plate: `+plate+`
---
label: sgGFP
wells:
  with: [A1]
`)

	experiments, err := LoadExperiments(metaPath)
	require.NoError(t, err)
	require.Len(t, experiments, 1)
}
