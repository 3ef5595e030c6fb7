package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const attributesJSON = `[
  {"AREA_NAME": "Regent Park", "ASSAULT_2016": 40, "ASSAULT_2017": 44},
  {"AREA_NAME": "North Toronto", "ASSAULT_2016": 10, "ASSAULT_2017": 9},
  {"AREA_NAME": "Annex", "ASSAULT_2016": 5, "ASSAULT_2017": 10}
]`

// execute runs the root command in a scratch directory against a small
// attribute table and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	attrs := filepath.Join(dir, "crime.json")
	require.NoError(t, os.WriteFile(attrs, []byte(attributesJSON), 0o644))

	t.Cleanup(func() {
		for _, name := range []string{"attributes", "geometry", "control", "format"} {
			rootCmd.PersistentFlags().Lookup(name).Changed = false
		}
		outputFormat = "table"
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--attributes=" + attrs, "--geometry="}, args...))
	err = rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"index", "did", "trend", "spatial", "crimetypes", "neighborhood", "search", "controls", "report", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "cts-trends", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	for _, name := range []string{"attributes", "geometry", "control", "format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestSpatialCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range spatialCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"zones", "compare", "distances", "bounds"} {
		assert.True(t, names[name], "spatial should have subcommand %q", name)
	}
}

func TestCommandFlags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	require.NotNil(t, reportCmd.Flags().Lookup("out"))
	require.NotNil(t, indexCmd.Flags().Lookup("baseline-year"))
	require.NotNil(t, didCmd.Flags().Lookup("cohort-year"))
	require.NotNil(t, spatialCompareCmd.Flags().Lookup("near-km"))

	flag = searchCmd.Flags().Lookup("filter")
	require.NotNil(t, flag)
	assert.Equal(t, "all", flag.DefValue)
}

func TestIndexCommand_JSON(t *testing.T) {
	out, err := execute(t, "index", "--format", "json")
	require.NoError(t, err)

	var points []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &points), out)
	for _, p := range points {
		if p["year"] == float64(2017) {
			assert.EqualValues(t, 110, p["cts_index"])
			assert.EqualValues(t, 90, p["control_index"])
		}
	}
}

func TestSearchCommand_Table(t *testing.T) {
	out, err := execute(t, "search", "park", "--filter", "cts")
	require.NoError(t, err)
	assert.Contains(t, out, "Regent Park")
	assert.NotContains(t, out, "Annex")
}

func TestNeighborhoodCommand_Unknown(t *testing.T) {
	_, err := execute(t, "neighborhood", "Atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestSpatialCommand_NeedsGeometry(t *testing.T) {
	_, err := execute(t, "spatial", "zones")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geometry")
}

func TestReportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	out, err := execute(t, "report", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 8 sheets")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestControlsCommand_Override(t *testing.T) {
	out, err := execute(t, "controls", "--control", "Annex", "--format", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	require.Len(t, rows, 2)
	assert.Equal(t, "North Toronto", rows[0]["name"])
	assert.Equal(t, false, rows[0]["selected"])
	assert.Equal(t, "Annex", rows[1]["name"])
	assert.Equal(t, true, rows[1]["selected"])
}

func TestBadFormat(t *testing.T) {
	_, err := execute(t, "trend", "--format", "csv")
	assert.Error(t, err)
}

func TestCrimeTypesCommand_YearOutOfRange(t *testing.T) {
	t.Cleanup(func() { crimeTypesYear = 0 })

	_, err := execute(t, "crimetypes", "--year=1999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1999")
}

func TestCrimeTypesCommand_Year(t *testing.T) {
	t.Cleanup(func() { crimeTypesYear = 0 })

	_, err := execute(t, "crimetypes", "--year=2017")
	require.NoError(t, err)
}

func TestSpatialZonesCommand_YearOutOfRange(t *testing.T) {
	t.Cleanup(func() { spatialYear = 0 })

	// Rejected before boundaries are required.
	_, err := execute(t, "spatial", "zones", "--year=2030")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2030")
	assert.NotContains(t, err.Error(), "geometry")
}

func TestCompareYear(t *testing.T) {
	y, err := compareYear(0)
	require.NoError(t, err)
	assert.Equal(t, 2023, y)

	y, err = compareYear(2014)
	require.NoError(t, err)
	assert.Equal(t, 2014, y)

	_, err = compareYear(2013)
	assert.Error(t, err)
}
