package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshcore/internal/catalog"
)

func TestRunPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	gj := filepath.Join(dir, "cells.geojson")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--nlon", "16", "--nlat", "4", "--layers", "2", "--timesteps", "2", "--geojson", gj, "--metrics"})
	require.NoError(t, cmd.Execute())

	raw := out.String()
	dec := json.NewDecoder(strings.NewReader(raw))
	var s summary
	require.NoError(t, dec.Decode(&s))
	assert.Equal(t, 64, s.Cells)
	assert.Equal(t, "theta", s.Variable.Name)
	assert.Equal(t, "plottable", s.Variable.Class)
	assert.Equal(t, "K", s.Variable.Unit)
	assert.Equal(t, []string{"Time", "nCells", "nVertLevels"}, s.Variable.Dims)
	assert.Equal(t, 4, s.SplitCells)
	assert.Equal(t, 68, s.IndexCells)
	assert.Len(t, s.Layers, 2)
	assert.Len(t, s.Times, 2)
	assert.Equal(t, 4, s.ScanProgress)
	assert.InDelta(t, 22.5, s.AvgDiamDeg, 1e-9)
	assert.Contains(t, raw, "mesh_cells_total")

	b, err := os.ReadFile(gj)
	require.NoError(t, err)
	assert.Contains(t, string(b), "FeatureCollection")
}

func TestSurfaceFieldDims(t *testing.T) {
	d := fieldDesc(&options{})
	assert.Equal(t, []string{"nCells"}, d.Dims)
	assert.Equal(t, catalog.Plottable, catalog.Default().Classify(d))
}

func TestRunRejectsOddGrid(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--nlon", "5"})
	assert.Error(t, cmd.Execute())
}

func TestDegreeConversion(t *testing.T) {
	assert.InDelta(t, 180.0, deg(3.141592653589793), 1e-12)
	assert.InDelta(t, 3.141592653589793, rad(180), 1e-12)
}
