package mesh

import (
	"fmt"
	"math"
)

// DefaultSplitSpan：经度跨度超过 1.5π 的单元视为跨越日界线
const DefaultSplitSpan = 1.5 * math.Pi

func needsSplit(c *Cell, span float64) bool {
	return c.Span() > span
}

// 侧别：0 为非负经度，1 为负经度
func sideOf(lon float64) int {
	if lon < 0 {
		return 1
	}
	return 0
}

// 文档注释：计算 p1→p2 穿越 ±π 处的纬度与 p1 侧的边界经度
// 背景：按线性插值求交点；边界经度取 +π，p1 位于负经度侧时取 -π。
func crossing(lat1, lon1, lat2, lon2 float64) (lat, boundary float64) {
	var dx1, dx2 float64
	if lon2 < 0 {
		dx1 = math.Pi + lon2
		dx2 = math.Pi - lon1
	} else {
		dx1 = math.Pi - lon2
		dx2 = math.Pi + lon1
	}
	ratio := (lat2 - lat1) / (dx1 + dx2)
	lat = lat1 + dx1*ratio
	boundary = math.Pi
	if lon1 < 0 {
		boundary = -math.Pi
	}
	return lat, boundary
}

type ring struct {
	lats, lons []float64
}

func (r *ring) add(lat, lon float64) {
	r.lats = append(r.lats, lat)
	r.lons = append(r.lons, lon)
}

// 文档注释：沿 ±π 拆分单元
// 背景：原单元就地改写为负经度一半，返回的新单元承载非负经度一半并沿用同一 id；两半中心经度取各自包围盒中点，中心纬度沿用原值。
// 约束：任一半不足 3 个顶点时返回 ErrDataFormat，原单元保持不变。
func splitCell(c *Cell) (*Cell, error) {
	var sides [2]ring
	n := len(c.lats)
	for i := 0; i < n; i++ {
		lat2, lon2 := c.lats[i], c.lons[i]
		if i > 0 {
			lat1, lon1 := c.lats[i-1], c.lons[i-1]
			if from, to := sideOf(lon1), sideOf(lon2); from != to {
				lat, b := crossing(lat1, lon1, lat2, lon2)
				sides[from].add(lat, b)
				sides[to].add(lat, -b)
			}
		}
		sides[sideOf(lon2)].add(lat2, lon2)
	}
	// 闭合边：末点 → 首点，仅追加边界点
	latL, lonL := c.lats[n-1], c.lons[n-1]
	latF, lonF := c.lats[0], c.lons[0]
	if from, to := sideOf(lonL), sideOf(lonF); from != to {
		lat, b := crossing(latL, lonL, latF, lonF)
		sides[from].add(lat, b)
		sides[to].add(lat, -b)
	}

	for s := range sides {
		if len(sides[s].lats) < 3 {
			return nil, fmt.Errorf("%w: cell %d split leaves %d vertices on side %d", ErrDataFormat, c.id, len(sides[s].lats), s)
		}
	}

	half, err := NewCell(c.id, sides[0].lats, sides[0].lons, c.centerLat, 0)
	if err != nil {
		return nil, err
	}
	half.centerLon = (half.bbox.MinLon + half.bbox.MaxLon) / 2
	half.split = true

	c.lats, c.lons = sides[1].lats, sides[1].lons
	c.bbox = computeBBox(c.lats, c.lons)
	c.centerLon = (c.bbox.MinLon + c.bbox.MaxLon) / 2
	c.split = true
	return half, nil
}
