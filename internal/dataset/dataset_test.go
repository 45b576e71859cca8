package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshcore/internal/config"
	"meshcore/internal/frame"
	"meshcore/internal/mesh"
	"meshcore/internal/minmax"
	"meshcore/internal/synth"
)

func open(t *testing.T) *Dataset {
	t.Helper()
	cfg := config.Default()
	cfg.ScanWorkers = 2
	d, err := Open("grid", synth.LatLonGrid(32, 8), cfg)
	require.NoError(t, err)
	return d
}

func TestOpenExposesGeometry(t *testing.T) {
	d := open(t)
	defer d.Close()

	cells, err := d.Cells()
	require.NoError(t, err)
	assert.Len(t, cells, 256)
	all, err := d.AllCells()
	require.NoError(t, err)
	assert.Len(t, all, 264)
	lon, err := d.LonSorted()
	require.NoError(t, err)
	lat, err := d.LatSorted()
	require.NoError(t, err)
	assert.ElementsMatch(t, lon, lat)
	splits, err := d.SplitCells()
	require.NoError(t, err)
	assert.Len(t, splits, 8)

	c, err := d.CellByID(17)
	require.NoError(t, err)
	assert.Equal(t, 17, c.ID())
	_, err = d.CellByID(999)
	assert.ErrorIs(t, err, ErrUnknownCell)

	e, err := d.Extents()
	require.NoError(t, err)
	assert.Equal(t, 2*math.Pi, e.DataWidth)
	diam, err := d.AvgCellDiameter()
	require.NoError(t, err)
	assert.Greater(t, diam.Radians(), 0.0)

	hit, approx, err := d.CellAt(0.1, 0.1)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.False(t, approx)

	b, err := d.GeoJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), "FeatureCollection")

	h, err := d.Elevation(synth.Heights{Step: 100}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 250.0, h)

	cat, err := d.Catalog()
	require.NoError(t, err)
	assert.Equal(t, "K", cat.Unit("theta", ""))
	assert.Equal(t, "grid", d.Name())
}

func TestQueries(t *testing.T) {
	d := open(t)
	defer d.Close()
	f := synth.NewFrame("theta", 256, 2, 3, synth.Field{Fill: 1e37, FillEvery: 5})

	global, err := d.PlotMinMax(f, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, global.Completion())
	assert.Less(t, global.Max(), 1e30)

	ch, err := d.StartPlotMinMax(f, nil)
	require.NoError(t, err)
	assert.Same(t, global, <-ch)

	layer, err := d.LayerMinMax(f, 1, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, layer.Min(), 9.0)

	step, err := d.TimestepMinMax(f, 0, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, step.Max(), 3.0)

	full, err := d.PlotMinMaxLon(f, 2, -math.Pi, 2*math.Pi)
	require.NoError(t, err)
	top, err := d.TimestepMinMax(f, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, top.Max(), full.Max())
	assert.Equal(t, step.Min(), full.Min())

	band, err := d.PlotMinMaxLat(f, 0, 0, 0.2)
	require.NoError(t, err)
	assert.False(t, band.Empty())

	_, err = d.LayerMinMax(f, 5, nil)
	assert.ErrorIs(t, err, minmax.ErrOutOfRange)
	_, err = d.PlotMinMax(nil, nil)
	assert.ErrorIs(t, err, ErrNoFrame)
	_, err = d.PlotMinMaxLon(&frame.Static{Name: "x"}, 0, 0, 1)
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestSliceRejectsTimestepOutsideFrame(t *testing.T) {
	d := open(t)
	defer d.Close()

	// 读取器按 data[ts][cell] 取值，越界即 panic
	data := make([][]float64, 3)
	for ts := range data {
		data[ts] = make([]float64, 100)
		for c := range data[ts] {
			data[ts][c] = float64(ts*1000 + c)
		}
	}
	f := &frame.Static{
		Name: "theta",
		Ax:   frame.Axes{Time: frame.NewRange(0, 3), Cell: frame.Range{Extent: 100}},
		Data: frame.ReaderFunc(func(_ frame.Frame, ts, cell, _ int) float64 { return data[ts][cell] }),
	}

	_, err := d.PlotMinMaxLon(f, 5, 0, 0.1)
	assert.ErrorIs(t, err, minmax.ErrOutOfRange)
	_, err = d.PlotMinMaxLat(f, -1, 0, 0.1)
	assert.ErrorIs(t, err, minmax.ErrOutOfRange)

	// 网格有 256 个单元，帧只覆盖前 100 个
	info, err := d.PlotMinMaxLon(f, 2, -math.Pi, 2*math.Pi)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, info.Min())
	assert.Equal(t, 2099.0, info.Max())
}

func TestClosedDatasetFails(t *testing.T) {
	d := open(t)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	_, err := d.Cells()
	assert.ErrorIs(t, err, ErrClosed)
	_, _, err = d.CellAt(0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.PlotMinMax(synth.NewFrame("theta", 256, 1, 1, synth.Field{}), nil)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = d.PlotMinMaxLat(synth.NewFrame("theta", 256, 1, 1, synth.Field{}), 0, 0, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenRejectsBadMesh(t *testing.T) {
	_, err := Open("empty", mesh.Raw{}, config.Default())
	assert.ErrorIs(t, err, mesh.ErrDataFormat)

	cfg := config.Default()
	cfg.CatalogPath = "/nonexistent/catalog.yaml"
	_, err = Open("grid", synth.LatLonGrid(4, 2), cfg)
	assert.Error(t, err)
}
