package mesh

import (
	"math"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// 文档注释：单元拾取器（包围盒候选 → 点入多边形 → 最近中心兜底）
// 背景：用于"点击了哪个单元"的交互；候选按经度下边界二分截取，再以射线法精确判定；未命中时在半径内取最近单元中心并标记为近似。
// 约束：坐标为弧度，经度位于 (-π, π]；拆分后的两半各自参与判定。
type Locator struct {
	byLon   []*Cell
	maxSpan float64
	root    *kdNode
	radius  s1.Angle
}

// NewLocator：radius 为最近中心兜底的最大角距离，0 表示不兜底
func NewLocator(idx *Index, radius s1.Angle) *Locator {
	cells := idx.Sorted(AxisLon)
	l := &Locator{byLon: cells, radius: radius}
	pts := make([]kdPoint, 0, len(cells))
	for _, c := range cells {
		if s := c.Span(); s > l.maxSpan {
			l.maxSpan = s
		}
		pts = append(pts, kdPoint{cell: c, p: s2.PointFromLatLng(c.CenterLatLng())})
	}
	l.root = buildKD(pts, 0)
	return l
}

// 文档注释：定位包含 (lat, lon) 的单元
// 返回：命中单元与 approx（true 表示来自最近中心兜底）；均未命中返回 nil。
func (l *Locator) CellAt(lat, lon float64) (*Cell, bool) {
	lo := sort.Search(len(l.byLon), func(i int) bool { return l.byLon[i].MinLon() >= lon-l.maxSpan })
	for i := lo; i < len(l.byLon) && l.byLon[i].MinLon() <= lon; i++ {
		c := l.byLon[i]
		if !c.bbox.Contains(lat, lon) {
			continue
		}
		if pointInRing(lat, lon, c.lats, c.lons) {
			return c, false
		}
	}
	if l.root == nil || l.radius <= 0 {
		return nil, false
	}
	q := s2.PointFromLatLng(s2.LatLng{Lat: s1.Angle(lat), Lng: s1.Angle(lon)})
	best, _ := nearest(l.root, q)
	if best == nil || q.Distance(best.p) > l.radius {
		return nil, false
	}
	return best.cell, true
}

// 射线法（even-odd）判定点是否在环内；经度为 x，纬度为 y
func pointInRing(lat, lon float64, lats, lons []float64) bool {
	n := len(lats)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := lons[i], lats[i]
		xj, yj := lons[j], lats[j]
		if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

type kdPoint struct {
	cell *Cell
	p    s2.Point
}

// 文档注释：三维 KD-Tree（单位球面上的单元中心）
// 背景：在单位向量空间按 x/y/z 交替取中位数分割；弦长与球面角距离单调对应，剪枝条件精确。
type kdNode struct {
	pt   kdPoint
	axis int
	l, r *kdNode
}

func buildKD(pts []kdPoint, depth int) *kdNode {
	if len(pts) == 0 {
		return nil
	}
	ax := depth % 3
	mid := len(pts) / 2
	selectNth(pts, mid, ax)
	node := &kdNode{pt: pts[mid], axis: ax}
	node.l = buildKD(pts[:mid], depth+1)
	node.r = buildKD(pts[mid+1:], depth+1)
	return node
}

// 原地 nth 元素选择
func selectNth(a []kdPoint, n, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []kdPoint, lo, hi, pivot, ax int) int {
	pv := coord(a[pivot].p, ax)
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if coord(a[j].p, ax) < pv {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func coord(p s2.Point, ax int) float64 {
	switch ax {
	case 0:
		return p.X
	case 1:
		return p.Y
	}
	return p.Z
}

// 最近邻查询，返回最近点与弦长
func nearest(root *kdNode, q s2.Point) (*kdPoint, float64) {
	var best *kdPoint
	bestD := math.MaxFloat64
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := q.Sub(n.pt.p.Vector).Norm(); d < bestD {
			bestD = d
			best = &n.pt
		}
		key, split := coord(q, n.axis), coord(n.pt.p, n.axis)
		first, second := n.l, n.r
		if key > split {
			first, second = n.r, n.l
		}
		dfs(first)
		// 仅当分割平面距离小于当前最优弦长时才遍历另一侧
		if math.Abs(key-split) < bestD {
			dfs(second)
		}
	}
	dfs(root)
	return best, bestD
}
