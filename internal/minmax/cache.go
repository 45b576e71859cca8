package minmax

import (
	"sync"

	"meshcore/internal/frame"
	"meshcore/internal/metrics"
)

// 文档注释：计算器缓存键
// 背景：变量名 + 数组形式 + 层区间 + 时间区间；缺省坐标轴分别记为 "nl" / "nt"。
type Key struct {
	Variable string
	Kind     frame.Kind
	Layers   string
	Times    string
}

func KeyFor(f frame.Frame) Key {
	ax := f.Axes()
	k := Key{Variable: f.Variable(), Kind: f.Kind(), Layers: "nl", Times: "nt"}
	if ax.Layer != nil {
		k.Layers = ax.Layer.String()
	}
	if ax.Time != nil {
		k.Times = ax.Time.String()
	}
	return k
}

// 文档注释：计算器缓存
// 约束：相同键始终返回同一实例；较窄的区间不会复用较宽区间的结果，按各自的键独立计算。
type Cache struct {
	mu    sync.Mutex
	opts  Options
	calcs map[Key]*Calculator
}

func NewCache(opts Options) *Cache {
	return &Cache{opts: opts, calcs: make(map[Key]*Calculator)}
}

// Get：取得或创建帧对应的计算器
func (c *Cache) Get(f frame.Frame) *Calculator {
	k := KeyFor(f)
	c.mu.Lock()
	defer c.mu.Unlock()
	if calc, ok := c.calcs[k]; ok {
		metrics.CalculatorCacheTotal.WithLabelValues("hit").Inc()
		return calc
	}
	metrics.CalculatorCacheTotal.WithLabelValues("miss").Inc()
	calc := NewCalculator(f, c.opts)
	c.calcs[k] = calc
	return calc
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calcs)
}

// Clear：数据集关闭时释放全部计算器
func (c *Cache) Clear() {
	c.mu.Lock()
	c.calcs = make(map[Key]*Calculator)
	c.mu.Unlock()
}
