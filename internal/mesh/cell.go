// 包 mesh：非结构化网格的单元多边形、跨日界线拆分、排序索引与单元拾取
package mesh

import (
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// 文档注释：单元包围盒
// 背景：除极值外同时记录取得极值的顶点下标，切片查询与渲染均以下边界作为排序键。
// 约束：并列极值时保留最先出现的顶点下标。
type BBox struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64

	MinLonPos, MaxLonPos int
	MinLatPos, MaxLatPos int
}

// Contains：点是否落在包围盒内（含边界）
func (b BBox) Contains(lat, lon float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// 文档注释：网格单元多边形
// 背景：坐标以弧度保存，经度已归一化到 (-π, π]；拆分单元的两半共享原始单元 id，数据查值一律使用该 id。
// 约束：仅在构建与拆分期间可变，构建完成后只读并可并发共享。
type Cell struct {
	id   int
	lats []float64
	lons []float64
	bbox BBox

	centerLat float64
	centerLon float64
	split     bool
}

// 文档注释：由已归一化的顶点坐标构造单元
// 约束：顶点数不少于 3，经纬数组长度一致；否则返回 ErrDataFormat。
func NewCell(id int, lats, lons []float64, centerLat, centerLon float64) (*Cell, error) {
	if len(lats) != len(lons) {
		return nil, fmt.Errorf("%w: cell %d has %d lats and %d lons", ErrDataFormat, id, len(lats), len(lons))
	}
	if len(lats) < 3 {
		return nil, fmt.Errorf("%w: cell %d has %d vertices", ErrDataFormat, id, len(lats))
	}
	c := &Cell{
		id:        id,
		lats:      lats,
		lons:      lons,
		centerLat: centerLat,
		centerLon: centerLon,
	}
	c.bbox = computeBBox(lats, lons)
	return c, nil
}

func computeBBox(lats, lons []float64) BBox {
	b := BBox{MinLon: lons[0], MaxLon: lons[0], MinLat: lats[0], MaxLat: lats[0]}
	for i := 1; i < len(lons); i++ {
		if lons[i] < b.MinLon {
			b.MinLon, b.MinLonPos = lons[i], i
		}
		if lons[i] > b.MaxLon {
			b.MaxLon, b.MaxLonPos = lons[i], i
		}
		if lats[i] < b.MinLat {
			b.MinLat, b.MinLatPos = lats[i], i
		}
		if lats[i] > b.MaxLat {
			b.MaxLat, b.MaxLatPos = lats[i], i
		}
	}
	return b
}

func (c *Cell) ID() int          { return c.id }
func (c *Cell) NumVertices() int { return len(c.lats) }

// Lat/Lon：第 i 个顶点坐标（弧度）
func (c *Cell) Lat(i int) float64 { return c.lats[i] }
func (c *Cell) Lon(i int) float64 { return c.lons[i] }

func (c *Cell) LatDeg(i int) float64 { return s1.Angle(c.lats[i]).Degrees() }
func (c *Cell) LonDeg(i int) float64 { return s1.Angle(c.lons[i]).Degrees() }

func (c *Cell) BBox() BBox { return c.bbox }

func (c *Cell) MinLon() float64 { return c.bbox.MinLon }
func (c *Cell) MaxLon() float64 { return c.bbox.MaxLon }
func (c *Cell) MinLat() float64 { return c.bbox.MinLat }
func (c *Cell) MaxLat() float64 { return c.bbox.MaxLat }

func (c *Cell) MinLonDeg() float64 { return s1.Angle(c.bbox.MinLon).Degrees() }
func (c *Cell) MaxLonDeg() float64 { return s1.Angle(c.bbox.MaxLon).Degrees() }
func (c *Cell) MinLatDeg() float64 { return s1.Angle(c.bbox.MinLat).Degrees() }
func (c *Cell) MaxLatDeg() float64 { return s1.Angle(c.bbox.MaxLat).Degrees() }

// Span：经度跨度（弧度）
func (c *Cell) Span() float64 { return c.bbox.MaxLon - c.bbox.MinLon }

// Center：中心点（lat, lon），弧度
func (c *Cell) Center() (float64, float64) { return c.centerLat, c.centerLon }

func (c *Cell) CenterLatLng() s2.LatLng {
	return s2.LatLng{Lat: s1.Angle(c.centerLat), Lng: s1.Angle(c.centerLon)}
}

// Split：是否为跨日界线拆分后的一半
func (c *Cell) Split() bool { return c.split }

// Vertices：顶点序列拷贝
func (c *Cell) Vertices() []s2.LatLng {
	out := make([]s2.LatLng, len(c.lats))
	for i := range c.lats {
		out[i] = s2.LatLng{Lat: s1.Angle(c.lats[i]), Lng: s1.Angle(c.lons[i])}
	}
	return out
}
