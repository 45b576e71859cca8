// 包 query：基于排序视图的经度/纬度切片极值查询
package query

import (
	"sort"
	"time"

	"meshcore/internal/frame"
	"meshcore/internal/logger"
	"meshcore/internal/mesh"
	"meshcore/internal/metrics"
	"meshcore/internal/minmax"
)

// Options：哨兵值与切片结果缓存参数
type Options struct {
	Sentinels minmax.Sentinels
	CacheSize int
	CacheTTL  time.Duration
}

type sliceKey struct {
	calc     minmax.Key
	timestep int
	center   float64
	width    float64
	axis     mesh.Axis
}

// 文档注释：切片查询引擎
// 背景：在按包围盒下边界排序的视图上二分定位起点，向前扫描到下边界超过 center+width 为止；以下边界近似代替精确包含。
// 约束：单元值一律按原始单元 id 读取，拆分单元的两半贡献相同的值；结果为只读，缓存命中时返回同一实例。
type Engine struct {
	idx   *mesh.Index
	opts  Options
	cache *LRU[sliceKey, *minmax.Info]
}

func NewEngine(idx *mesh.Index, opts Options) *Engine {
	return &Engine{idx: idx, opts: opts, cache: NewLRU[sliceKey, *minmax.Info](opts.CacheSize, opts.CacheTTL)}
}

// MinMaxLon：固定经度切片（跨全部纬度）
func (e *Engine) MinMaxLon(f frame.Frame, timestep int, lon, width float64) *minmax.Info {
	return e.QueryMinMax(f, timestep, lon, width, mesh.AxisLon)
}

// MinMaxLat：固定纬度切片（跨全部经度）
func (e *Engine) MinMaxLat(f frame.Frame, timestep int, lat, width float64) *minmax.Info {
	return e.QueryMinMax(f, timestep, lat, width, mesh.AxisLat)
}

// 文档注释：切片极值查询
// 背景：对帧层轴 [origin, origin+extent) 的每一层执行一次扫描（无层轴时仅层 0）；访问下标为排序视图中的位置。
// 约束：id 不在帧单元轴内的单元不读取也不计数；时间步范围由调用方校验。
// 返回：候选集为空时返回哨兵状态的结果（Empty() 为 true）。
func (e *Engine) QueryMinMax(f frame.Frame, timestep int, center, width float64, axis mesh.Axis) *minmax.Info {
	metrics.SliceQueriesTotal.WithLabelValues(axis.String()).Inc()
	key := sliceKey{calc: minmax.KeyFor(f), timestep: timestep, center: center, width: width, axis: axis}
	if v, ok := e.cache.Get(key); ok {
		metrics.SliceCacheHitsTotal.Inc()
		return v
	}
	start := time.Now()
	cells := e.idx.Sorted(axis)
	first := startIndex(cells, center, axis)
	end := center + width
	r := f.Array()
	lr := f.Axes().LayerRange()
	cr := f.Axes().Cell

	info := minmax.NewInfo(0, e.opts.Sentinels)
	for layer := lr.Origin; layer < lr.End(); layer++ {
		for i := first; i < len(cells); i++ {
			c := cells[i]
			if mesh.LowerEdge(c, axis) > end {
				break
			}
			if !cr.Contains(c.ID()) {
				continue
			}
			info.Visit(r.Get(f, timestep, c.ID(), layer), i)
			info.IncrementCount(1)
		}
	}
	e.cache.Set(key, info)
	metrics.SliceDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	logger.L().Debug("slice_query",
		"variable", f.Variable(),
		"axis", axis.String(),
		"center", center,
		"width", width,
		"start", first,
		"visited", info.Count(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return info
}

// 文档注释：扫描起点
// 背景：二分查找 center；命中时取第一个相等元素，未命中时从插入点回退一位（不小于 0），保证从切片下边界之前开始。
func startIndex(cells []*mesh.Cell, center float64, axis mesh.Axis) int {
	i := sort.Search(len(cells), func(i int) bool { return mesh.LowerEdge(cells[i], axis) >= center })
	if i < len(cells) && mesh.LowerEdge(cells[i], axis) == center {
		return i
	}
	if i > 0 {
		i--
	}
	return i
}

// Purge：数据集关闭时丢弃缓存的切片结果
func (e *Engine) Purge() { e.cache.Purge() }
