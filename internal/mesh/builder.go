package mesh

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/geo/s1"

	"meshcore/internal/logger"
	"meshcore/internal/metrics"
)

// 文档注释：构建网格所需的原始数组
// 背景：与 MPAS 变量一一对应：nEdgesOnCell、verticesOnCell、indexToVertexID、latVertex/lonVertex、latCell/lonCell；坐标均为弧度，经度取 [0, 2π) 约定。
// 约束：VertexIDs 为空时顶点 id 即顶点下标；VerticesOnCell 每行宽度不小于对应顶点数。
type Raw struct {
	VertexCounts   []int
	VerticesOnCell [][]int
	VertexIDs      []int
	LatVertex      []float64
	LonVertex      []float64
	LatCell        []float64
	LonCell        []float64
}

// Options：构建参数；SplitSpan 为 0 时取 DefaultSplitSpan
type Options struct {
	SplitSpan float64
}

// 文档注释：全局范围
// 背景：Exact* 为全部单元（拆分前几何）的实际跨度；接近全球时吸附到整球，Data* 与 DataRatio 基于吸附后的范围。
type Extents struct {
	LonMin, LonMax float64
	LatMin, LatMax float64

	ExactWidth  float64
	ExactHeight float64
	DataWidth   float64
	DataHeight  float64
	DataRatio   float64
}

// Mesh：构建完成的只读网格
type Mesh struct {
	cells     []*Cell
	index     *Index
	splits    map[*Cell]int
	extents   Extents
	avgDiam   s1.Angle
	splitSpan float64
}

// NormalizeLon：将 [0, 2π) 约定的经度映射到 (-π, π]
func NormalizeLon(lon float64) float64 {
	lon -= 2 * math.Pi
	if lon < -math.Pi {
		lon += 2 * math.Pi
	}
	return lon
}

// NormalizeLat：纬度保持不变
func NormalizeLat(lat float64) float64 { return lat }

// 文档注释：由原始数组构建网格
// 背景：逐单元归一化顶点、计算包围盒并累计全局范围；跨度超过阈值的单元就地拆分，其余单元累计平均直径。
// 约束：任何数组不一致立即以 ErrDataFormat 失败，不做部分构建。
func Build(raw Raw, opts Options) (*Mesh, error) {
	start := time.Now()
	span := opts.SplitSpan
	if span <= 0 {
		span = DefaultSplitSpan
	}
	n := len(raw.VertexCounts)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty mesh", ErrDataFormat)
	}
	if len(raw.VerticesOnCell) != n || len(raw.LatCell) != n || len(raw.LonCell) != n {
		return nil, fmt.Errorf("%w: ragged cell arrays (counts=%d verticesOnCell=%d latCell=%d lonCell=%d)",
			ErrDataFormat, n, len(raw.VerticesOnCell), len(raw.LatCell), len(raw.LonCell))
	}
	if len(raw.LatVertex) != len(raw.LonVertex) {
		return nil, fmt.Errorf("%w: ragged vertex arrays (lat=%d lon=%d)", ErrDataFormat, len(raw.LatVertex), len(raw.LonVertex))
	}
	positions, err := vertexPositions(raw)
	if err != nil {
		return nil, err
	}

	m := &Mesh{
		cells:     make([]*Cell, n),
		splits:    make(map[*Cell]int),
		splitSpan: span,
	}
	var halves []*Cell
	lonMin, lonMax := math.Inf(1), math.Inf(-1)
	latMin, latMax := math.Inf(1), math.Inf(-1)
	var diamSum float64
	var diamCount int

	for i := 0; i < n; i++ {
		count := raw.VertexCounts[i]
		row := raw.VerticesOnCell[i]
		if count < 3 {
			return nil, fmt.Errorf("%w: cell %d has %d vertices", ErrDataFormat, i, count)
		}
		if count > len(row) {
			return nil, fmt.Errorf("%w: cell %d declares %d vertices but row holds %d", ErrDataFormat, i, count, len(row))
		}
		lats := make([]float64, count)
		lons := make([]float64, count)
		for j := 0; j < count; j++ {
			pos, ok := positions(row[j])
			if !ok {
				return nil, fmt.Errorf("%w: cell %d vertex id %d is not mapped", ErrDataFormat, i, row[j])
			}
			if pos < 0 || pos >= len(raw.LatVertex) {
				return nil, fmt.Errorf("%w: cell %d vertex position %d out of range", ErrDataFormat, i, pos)
			}
			lats[j] = NormalizeLat(raw.LatVertex[pos])
			lons[j] = NormalizeLon(raw.LonVertex[pos])
		}
		c, err := NewCell(i, lats, lons, NormalizeLat(raw.LatCell[i]), NormalizeLon(raw.LonCell[i]))
		if err != nil {
			return nil, err
		}
		m.cells[i] = c
		lonMin = math.Min(lonMin, c.bbox.MinLon)
		lonMax = math.Max(lonMax, c.bbox.MaxLon)
		latMin = math.Min(latMin, c.bbox.MinLat)
		latMax = math.Max(latMax, c.bbox.MaxLat)

		if needsSplit(c, span) {
			half, err := splitCell(c)
			if err != nil {
				return nil, err
			}
			m.splits[half] = i
			halves = append(halves, half)
			logger.L().Debug("cell_split", "cell_id", i, "vertices_neg", c.NumVertices(), "vertices_pos", half.NumVertices())
			continue
		}
		diamSum += c.Span()
		diamCount++
	}

	m.extents = snapExtents(lonMin, lonMax, latMin, latMax)
	if diamCount > 0 {
		m.avgDiam = s1.Angle(diamSum / float64(diamCount))
	}
	m.index = NewIndex(m.cells...)
	m.index.Add(halves...)

	metrics.CellsTotal.Set(float64(m.index.Len()))
	metrics.SplitCellsTotal.Set(float64(len(halves)))
	metrics.BuildDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	logger.L().Info("mesh_build_done",
		"cells", n,
		"split", len(halves),
		"lon_min", m.extents.LonMin, "lon_max", m.extents.LonMax,
		"lat_min", m.extents.LatMin, "lat_max", m.extents.LatMax,
		"avg_diam_deg", m.avgDiam.Degrees(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return m, nil
}

// 顶点 id → 顶点下标
func vertexPositions(raw Raw) (func(id int) (int, bool), error) {
	if len(raw.VertexIDs) == 0 {
		return func(id int) (int, bool) { return id, true }, nil
	}
	if len(raw.VertexIDs) != len(raw.LatVertex) {
		return nil, fmt.Errorf("%w: indexToVertexID has %d entries for %d vertices", ErrDataFormat, len(raw.VertexIDs), len(raw.LatVertex))
	}
	pos := make(map[int]int, len(raw.VertexIDs))
	for i, id := range raw.VertexIDs {
		pos[id] = i
	}
	return func(id int) (int, bool) {
		p, ok := pos[id]
		return p, ok
	}, nil
}

// 文档注释：全局范围吸附
// 约束：宽度超过 1.9π 吸附到 [-π, π]，高度超过 0.95π 吸附到 [-π/2, π/2]；比例取吸附后的宽高比。
func snapExtents(lonMin, lonMax, latMin, latMax float64) Extents {
	e := Extents{LonMin: lonMin, LonMax: lonMax, LatMin: latMin, LatMax: latMax}
	e.ExactWidth = lonMax - lonMin
	e.ExactHeight = latMax - latMin
	if e.ExactWidth > 1.9*math.Pi {
		e.LonMin, e.LonMax = -math.Pi, math.Pi
	}
	if e.ExactHeight > 0.95*math.Pi {
		e.LatMin, e.LatMax = -math.Pi/2, math.Pi/2
	}
	e.DataWidth = e.LonMax - e.LonMin
	e.DataHeight = e.LatMax - e.LatMin
	if e.DataHeight > 0 {
		e.DataRatio = e.DataWidth / e.DataHeight
	}
	return e
}

// Cells：按 id 排列的单元；拆分单元位置上是负经度一半
func (m *Mesh) Cells() []*Cell {
	out := make([]*Cell, len(m.cells))
	copy(out, m.cells)
	return out
}

func (m *Mesh) Len() int { return len(m.cells) }

// CellByID：按原始单元 id 查找（拆分单元返回负经度一半）
func (m *Mesh) CellByID(id int) (*Cell, bool) {
	if id < 0 || id >= len(m.cells) {
		return nil, false
	}
	return m.cells[id], true
}

func (m *Mesh) Index() *Index { return m.index }

// SplitCells：拆分产生的新半单元 → 插入下标（原始单元 id）
func (m *Mesh) SplitCells() map[*Cell]int {
	out := make(map[*Cell]int, len(m.splits))
	for k, v := range m.splits {
		out[k] = v
	}
	return out
}

func (m *Mesh) Extents() Extents { return m.extents }

// AvgCellDiameter：未拆分单元经度跨度的平均值
func (m *Mesh) AvgCellDiameter() s1.Angle { return m.avgDiam }

// SplitSpan：本网格使用的拆分阈值（弧度）
func (m *Mesh) SplitSpan() float64 { return m.splitSpan }
