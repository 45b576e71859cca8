// 包 minmax：带哨兵屏蔽的最小/最大值累加器，以及按层、按时间步的层级计算器与其缓存
package minmax

import (
	"math"
	"sync/atomic"

	"meshcore/internal/metrics"
)

// 文档注释：哨兵值
// 背景：数据集中以极值表示坏值、缺测与填充值；只有严格介于 (BadValue, Missing) 与 Fill 之间的值参与统计。
type Sentinels struct {
	BadValue float64
	Missing  float64
	Fill     float64
}

// DefaultSentinels：BADVAL3 / AMISS3 / NC_FILL_FLOAT
func DefaultSentinels() Sentinels {
	return Sentinels{BadValue: -9.999e36, Missing: -9.999e36, Fill: 9.9692099683868690e36}
}

func (s Sentinels) Valid(v float64) bool {
	return v > s.BadValue && v > s.Missing && v < s.Fill
}

// 文档注释：最小/最大值累加器
// 背景：min/max 默认 +∞/−∞，来源下标默认 -1；并列值取后访问者的下标。
// 约束：Visit 与 Merge 为单写者操作，由调用方串行化；计数为原子操作，可在扫描期间被并发读取以轮询进度。
type Info struct {
	min, max       float64
	minIdx, maxIdx int
	count          atomic.Int64
	total          int64
	s              Sentinels
}

func NewInfo(total int64, s Sentinels) *Info {
	return &Info{
		min:    math.Inf(1),
		max:    math.Inf(-1),
		minIdx: -1,
		maxIdx: -1,
		total:  total,
		s:      s,
	}
}

// Visit：访问一个值；被哨兵屏蔽时返回 false
func (i *Info) Visit(value float64, index int) bool {
	if !i.s.Valid(value) {
		metrics.ValuesScreenedTotal.Inc()
		return false
	}
	if value <= i.min {
		i.min, i.minIdx = value, index
	}
	if value >= i.max {
		i.max, i.maxIdx = value, index
	}
	return true
}

func (i *Info) IncrementCount(n int64) { i.count.Add(n) }

// Merge：并入另一累加器的极值，不合并计数
func (i *Info) Merge(o *Info) {
	if o.minIdx >= 0 && o.min <= i.min {
		i.min, i.minIdx = o.min, o.minIdx
	}
	if o.maxIdx >= 0 && o.max >= i.max {
		i.max, i.maxIdx = o.max, o.maxIdx
	}
}

func (i *Info) Min() float64  { return i.min }
func (i *Info) Max() float64  { return i.max }
func (i *Info) MinIndex() int { return i.minIdx }
func (i *Info) MaxIndex() int { return i.maxIdx }
func (i *Info) Count() int64  { return i.count.Load() }
func (i *Info) Total() int64  { return i.total }

// Empty：尚无任何有效值
func (i *Info) Empty() bool { return i.minIdx < 0 && i.maxIdx < 0 }

// Completion：完成百分比；总量不大于 0 的任务视为已完成
func (i *Info) Completion() float64 {
	if i.total <= 0 {
		return 100
	}
	return float64(i.count.Load()) / float64(i.total) * 100
}

// Snapshot：供监听器使用的值拷贝
type Snapshot struct {
	Min, Max           float64
	MinIndex, MaxIndex int
	Count, Total       int64
	Completion         float64
}

func (i *Info) Snapshot() Snapshot {
	return Snapshot{
		Min:        i.min,
		Max:        i.max,
		MinIndex:   i.minIdx,
		MaxIndex:   i.maxIdx,
		Count:      i.Count(),
		Total:      i.total,
		Completion: i.Completion(),
	}
}
