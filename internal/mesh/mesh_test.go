package mesh

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toSource：归一化经度还原为 [0, 2π) 约定
func toSource(lon float64) float64 {
	if lon < 0 {
		return lon + 2*math.Pi
	}
	return lon
}

// rawOf：每个环独立占用顶点，中心取首顶点
func rawOf(rings ...[][2]float64) Raw {
	var raw Raw
	for _, r := range rings {
		row := make([]int, len(r))
		for j, p := range r {
			row[j] = len(raw.LatVertex)
			raw.LatVertex = append(raw.LatVertex, p[0])
			raw.LonVertex = append(raw.LonVertex, toSource(p[1]))
		}
		raw.VertexCounts = append(raw.VertexCounts, len(r))
		raw.VerticesOnCell = append(raw.VerticesOnCell, row)
		raw.LatCell = append(raw.LatCell, r[0][0])
		raw.LonCell = append(raw.LonCell, toSource(r[0][1]))
	}
	return raw
}

func TestNormalizeLon(t *testing.T) {
	assert.InDelta(t, 0, NormalizeLon(0), 1e-12)
	assert.InDelta(t, math.Pi/2, NormalizeLon(math.Pi/2), 1e-12)
	assert.InDelta(t, -math.Pi/2, NormalizeLon(1.5*math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi, NormalizeLon(math.Pi), 1e-12)
}

func TestBBoxFirstIndexWinsTies(t *testing.T) {
	c, err := NewCell(0, []float64{0.1, 0.1, 0.3}, []float64{1, 1, 0.5}, 0, 0)
	require.NoError(t, err)
	b := c.BBox()
	assert.Equal(t, 0, b.MaxLonPos)
	assert.Equal(t, 2, b.MinLonPos)
	assert.Equal(t, 0, b.MinLatPos)
	assert.Equal(t, 2, b.MaxLatPos)
	assert.InDelta(t, 0.5, c.Span(), 1e-12)
}

func TestSplitAcrossAntimeridian(t *testing.T) {
	lats := []float64{0.1, 0.2, 0.3, 0.0}
	lons := []float64{3.00, 3.05, -3.10, -3.05}
	ring := make([][2]float64, len(lats))
	for i := range lats {
		ring[i] = [2]float64{lats[i], lons[i]}
	}
	m, err := Build(rawOf(ring), Options{})
	require.NoError(t, err)

	all := m.Index().All()
	require.Len(t, all, 2)
	splits := m.SplitCells()
	require.Len(t, splits, 1)

	neg, ok := m.CellByID(0)
	require.True(t, ok)
	var pos *Cell
	for c, at := range splits {
		pos = c
		assert.Equal(t, 0, at)
	}
	assert.Equal(t, 0, neg.ID())
	assert.Equal(t, 0, pos.ID())
	assert.True(t, neg.Split())
	assert.True(t, pos.Split())

	// 线性插值交点
	dx1, dx2 := math.Pi-3.10, math.Pi-3.05
	latA := 0.2 + dx1*(0.3-0.2)/(dx1+dx2)
	dx1, dx2 = math.Pi-3.00, math.Pi-3.05
	latB := 0.0 + dx1*(0.1-0.0)/(dx1+dx2)

	require.Equal(t, 4, pos.NumVertices())
	wantPos := [][2]float64{{0.1, 3.00}, {0.2, 3.05}, {latA, math.Pi}, {latB, math.Pi}}
	for i, w := range wantPos {
		assert.InDelta(t, w[0], pos.Lat(i), 1e-12, "pos lat %d", i)
		assert.InDelta(t, w[1], pos.Lon(i), 1e-12, "pos lon %d", i)
	}
	require.Equal(t, 4, neg.NumVertices())
	wantNeg := [][2]float64{{latA, -math.Pi}, {0.3, -3.10}, {0.0, -3.05}, {latB, -math.Pi}}
	for i, w := range wantNeg {
		assert.InDelta(t, w[0], neg.Lat(i), 1e-12, "neg lat %d", i)
		assert.InDelta(t, w[1], neg.Lon(i), 1e-12, "neg lon %d", i)
	}

	for i := 0; i < pos.NumVertices(); i++ {
		assert.GreaterOrEqual(t, pos.Lon(i), 0.0)
	}
	for i := 0; i < neg.NumVertices(); i++ {
		assert.Less(t, neg.Lon(i), 0.0)
	}

	lat, lon := pos.Center()
	assert.InDelta(t, 0.1, lat, 1e-12)
	assert.InDelta(t, (3.00+math.Pi)/2, lon, 1e-12)
	lat, lon = neg.Center()
	assert.InDelta(t, 0.1, lat, 1e-12)
	assert.InDelta(t, (-math.Pi-3.05)/2, lon, 1e-12)

	// 对半单元再次检测不会拆分
	assert.False(t, needsSplit(pos, DefaultSplitSpan))
	assert.False(t, needsSplit(neg, DefaultSplitSpan))
	// 拆分单元不参与平均直径
	assert.Zero(t, m.AvgCellDiameter())
	assert.InDelta(t, 3.05-(-3.10), m.Extents().ExactWidth, 1e-12)
}

func TestBuildRejectsMalformedInput(t *testing.T) {
	tri := [][2]float64{{0, 0}, {0, 0.1}, {0.1, 0.05}}
	cases := map[string]func(r *Raw){
		"empty":         func(r *Raw) { *r = Raw{} },
		"ragged":        func(r *Raw) { r.LatCell = nil },
		"ragged_vertex": func(r *Raw) { r.LonVertex = r.LonVertex[:2] },
		"too_few":       func(r *Raw) { r.VertexCounts[0] = 2 },
		"row_too_short": func(r *Raw) { r.VertexCounts[0] = 4 },
		"out_of_range":  func(r *Raw) { r.VerticesOnCell[0][1] = 99 },
		"unmapped_id":   func(r *Raw) { r.VertexIDs = []int{10, 11, 12}; r.VerticesOnCell[0][0] = 7 },
		"bad_id_table":  func(r *Raw) { r.VertexIDs = []int{1} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			raw := rawOf(tri)
			mutate(&raw)
			_, err := Build(raw, Options{})
			assert.ErrorIs(t, err, ErrDataFormat)
		})
	}
}

func TestVertexIDMapping(t *testing.T) {
	raw := rawOf([][2]float64{{0, 0}, {0, 0.1}, {0.1, 0.05}})
	raw.VertexIDs = []int{101, 102, 103}
	raw.VerticesOnCell[0] = []int{103, 101, 102}
	m, err := Build(raw, Options{})
	require.NoError(t, err)
	c, _ := m.CellByID(0)
	assert.InDelta(t, 0.1, c.Lat(0), 1e-12)
	assert.InDelta(t, 0.0, c.Lon(1), 1e-12)
}

func TestIndexRebuildsSortedViewsOnVersion(t *testing.T) {
	a, _ := NewCell(0, []float64{0.5, 0.6, 0.7}, []float64{0.3, 0.4, 0.35}, 0, 0)
	b, _ := NewCell(1, []float64{-0.2, -0.1, 0}, []float64{-1, -0.9, -0.95}, 0, 0)
	idx := NewIndex(a)
	first := idx.Sorted(AxisLon)
	require.Len(t, first, 1)
	assert.Same(t, &first[0], &idx.Sorted(AxisLon)[0])

	idx.Add(b)
	lon := idx.Sorted(AxisLon)
	require.Len(t, lon, 2)
	assert.Equal(t, 1, lon[0].ID())
	lat := idx.Sorted(AxisLat)
	assert.Equal(t, 1, lat[0].ID())
	assert.ElementsMatch(t, idx.All(), lon)
	assert.Equal(t, "lat", AxisLat.String())
}

func TestSnapExtents(t *testing.T) {
	e := snapExtents(-3.1, 3.1, -1.52, 1.52)
	assert.Equal(t, -math.Pi, e.LonMin)
	assert.Equal(t, math.Pi/2, e.LatMax)
	assert.InDelta(t, 6.2, e.ExactWidth, 1e-12)
	assert.InDelta(t, 2*math.Pi, e.DataWidth, 1e-12)
	assert.InDelta(t, 2.0, e.DataRatio, 1e-12)

	e = snapExtents(0, 1, 0, 0.5)
	assert.Equal(t, 1.0, e.DataWidth)
	assert.InDelta(t, 2.0, e.DataRatio, 1e-12)
}

func TestLocatorNearestFallback(t *testing.T) {
	m, err := Build(rawOf([][2]float64{{0, 0}, {0, 0.1}, {0.1, 0.05}}), Options{})
	require.NoError(t, err)

	hit, approx := NewLocator(m.Index(), 0).CellAt(0.02, 0.05)
	require.NotNil(t, hit)
	assert.False(t, approx)

	miss, _ := NewLocator(m.Index(), 0).CellAt(0.5, 0.5)
	assert.Nil(t, miss)

	near, approx := NewLocator(m.Index(), 1).CellAt(0.5, 0.5)
	require.NotNil(t, near)
	assert.True(t, approx)
}

func TestPolygonAndGeoJSON(t *testing.T) {
	c, err := NewCell(7, []float64{0, 0, 0.1}, []float64{0, 0.1, 0.05}, 0, 0)
	require.NoError(t, err)
	poly, err := c.Polygon()
	require.NoError(t, err)
	coords := poly.Coords()
	require.Len(t, coords, 1)
	require.Len(t, coords[0], 4)
	assert.Equal(t, coords[0][0], coords[0][3])
	assert.InDelta(t, c.LonDeg(1), coords[0][1].X(), 1e-12)

	b, err := MarshalGeoJSON([]*Cell{c})
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])
	features := doc["features"].([]interface{})
	require.Len(t, features, 1)
	props := features[0].(map[string]interface{})["properties"].(map[string]interface{})
	assert.Equal(t, 7.0, props["cell_id"])
}
