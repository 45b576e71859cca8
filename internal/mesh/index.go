package mesh

import (
	"sort"
	"sync"
)

// Axis：切片查询的排序轴
type Axis int

const (
	AxisLon Axis = iota
	AxisLat
)

func (a Axis) String() string {
	if a == AxisLat {
		return "lat"
	}
	return "lon"
}

// LowerEdge：单元在给定轴上的包围盒下边界，即排序键
func LowerEdge(c *Cell, a Axis) float64 {
	if a == AxisLat {
		return c.bbox.MinLat
	}
	return c.bbox.MinLon
}

// 文档注释：空间索引
// 背景：AllCells 保留插入顺序（未拆分单元与拆分后的两半，不含拆分前的原形）；经度/纬度排序视图按需惰性重建。
// 约束：以版本号判断视图是否过期，而不是比较长度；重建在互斥锁内完成，返回的切片只读。
type Index struct {
	mu      sync.Mutex
	all     []*Cell
	version uint64
	sorted  [2][]*Cell
	builtAt [2]uint64
}

func NewIndex(cells ...*Cell) *Index {
	idx := &Index{}
	idx.Add(cells...)
	return idx
}

// Add：追加单元并使排序视图失效
func (x *Index) Add(cells ...*Cell) {
	if len(cells) == 0 {
		return
	}
	x.mu.Lock()
	x.all = append(x.all, cells...)
	x.version++
	x.mu.Unlock()
}

// All：AllCells 快照
func (x *Index) All() []*Cell {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]*Cell, len(x.all))
	copy(out, x.all)
	return out
}

func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.all)
}

// 文档注释：按轴排序的视图
// 约束：并列键之间的相对顺序不作保证；调用方不得修改返回切片。
func (x *Index) Sorted(a Axis) []*Cell {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.sorted[a] != nil && x.builtAt[a] == x.version {
		return x.sorted[a]
	}
	s := make([]*Cell, len(x.all))
	copy(s, x.all)
	sort.Slice(s, func(i, j int) bool { return LowerEdge(s[i], a) < LowerEdge(s[j], a) })
	x.sorted[a] = s
	x.builtAt[a] = x.version
	return s
}
