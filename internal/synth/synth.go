// 包 synth：确定性的经纬网格与解析数据场，供命令行与测试替代外部数据装载器
package synth

import (
	"math"

	"meshcore/internal/frame"
	"meshcore/internal/mesh"
)

// 文档注释：规则经纬四边形网格
// 背景：顶点经度取 [0, 2π) 约定并偏移半个步长，使恰好一列单元跨越源坐标 π（归一化后的日界线）并触发拆分。
// 约束：nlon 为偶数、nlat ≥ 1；顶点 id 从 1 开始并经 VertexIDs 映射，以覆盖 indexToVertexID 路径。单元 id = j*nlon + i。
func LatLonGrid(nlon, nlat int) mesh.Raw {
	dLon := 2 * math.Pi / float64(nlon)
	dLat := math.Pi / float64(nlat)
	nv := nlon * (nlat + 1)
	raw := mesh.Raw{
		VertexIDs: make([]int, nv),
		LatVertex: make([]float64, nv),
		LonVertex: make([]float64, nv),
	}
	for j := 0; j <= nlat; j++ {
		for i := 0; i < nlon; i++ {
			k := j*nlon + i
			raw.VertexIDs[k] = k + 1
			raw.LatVertex[k] = -math.Pi/2 + float64(j)*dLat
			raw.LonVertex[k] = float64(i)*dLon + dLon/2
		}
	}
	vid := func(i, j int) int { return j*nlon + (i % nlon) + 1 }
	for j := 0; j < nlat; j++ {
		for i := 0; i < nlon; i++ {
			raw.VertexCounts = append(raw.VertexCounts, 4)
			raw.VerticesOnCell = append(raw.VerticesOnCell, []int{vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)})
			raw.LatCell = append(raw.LatCell, -math.Pi/2+(float64(j)+0.5)*dLat)
			raw.LonCell = append(raw.LonCell, math.Mod(float64(i+1)*dLon, 2*math.Pi))
		}
	}
	return raw
}

// 文档注释：解析数据场
// 背景：取值 = 10·layer + timestep + sin(cell)；FillEvery > 0 时每 FillEvery 个单元中的最后一个返回 Fill，用于覆盖哨兵屏蔽路径。
type Field struct {
	Fill      float64
	FillEvery int
}

func (f Field) Get(_ frame.Frame, timestep, cellID, layer int) float64 {
	if f.FillEvery > 0 && cellID%f.FillEvery == f.FillEvery-1 {
		return f.Fill
	}
	return Value(timestep, cellID, layer)
}

// Value：未屏蔽单元的解析值
func Value(timestep, cellID, layer int) float64 {
	return 10*float64(layer) + float64(timestep) + math.Sin(float64(cellID))
}

// 文档注释：构造帧
// 约束：layers 或 times 为 0 时对应坐标轴缺省。
func NewFrame(name string, cells, layers, times int, r frame.Reader) *frame.Static {
	ax := frame.Axes{Cell: frame.Range{Origin: 0, Extent: cells}}
	if layers > 0 {
		ax.Layer = frame.NewRange(0, layers)
	}
	if times > 0 {
		ax.Time = frame.NewRange(0, times)
	}
	return &frame.Static{Name: name, Ax: ax, Data: r}
}

// Heights：等间距层界面高度，Level(cell, k) = k·Step
type Heights struct {
	Step float64
}

func (h Heights) Level(_ int, level int) float64 { return float64(level) * h.Step }
