package minmax

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"meshcore/internal/frame"
	"meshcore/internal/logger"
	"meshcore/internal/metrics"
)

// ErrOutOfRange：层或时间步不在帧的坐标轴范围内
var ErrOutOfRange = errors.New("index out of frame range")

// Options：哨兵值与全量扫描的并发度（Workers ≤ 0 时取 CPU 数）
type Options struct {
	Sentinels Sentinels
	Workers   int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

type stepKey struct{ layer, timestep int }

// 文档注释：层级最小/最大值计算器
// 背景：针对一个帧的 (层 × 时间步 × 单元) 数据立方体计算全局、单层与单时间步极值，结果在实例内按粒度记忆化。
// 约束：同一实例上的计算由 mu 串行化；全量扫描内部按层分配给有界工作池，合并与监听回调在 mergeMu 下串行执行。
type Calculator struct {
	f    frame.Frame
	opts Options

	mu      sync.Mutex
	mergeMu sync.Mutex
	global  *Info
	layers  map[int]*Info
	steps   map[stepKey]*Info
}

func NewCalculator(f frame.Frame, opts Options) *Calculator {
	return &Calculator{
		f:      f,
		opts:   opts,
		layers: make(map[int]*Info),
		steps:  make(map[stepKey]*Info),
	}
}

func (c *Calculator) cells() frame.Range { return c.f.Axes().Cell }

// 文档注释：全局极值
// 背景：总量 = 层数 × 时间步数 × 单元数；每完成一个 (层, 时间步) 即更新计数并回调监听器。已记忆化的层直接并入。
func (c *Calculator) PlotMinMax(l Listener) *Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.global != nil {
		notify(l, c.global)
		return c.global
	}
	start := time.Now()
	ax := c.f.Axes()
	lr, tr := ax.LayerRange(), ax.TimeRange()
	global := NewInfo(int64(lr.Extent)*int64(tr.Extent)*int64(ax.Cell.Extent), c.opts.Sentinels)

	var g errgroup.Group
	g.SetLimit(c.opts.workers())
	for layer := lr.Origin; layer < lr.End(); layer++ {
		layer := layer
		g.Go(func() error {
			c.scanLayer(layer, global, l)
			return nil
		})
	}
	_ = g.Wait()

	c.global = global
	metrics.ScanDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	logger.L().Debug("minmax_scan_done",
		"variable", c.f.Variable(),
		"layers", lr.String(),
		"times", tr.String(),
		"min", global.Min(), "max", global.Max(),
		"elapsed_ms", time.Since(start).Milliseconds())
	return global
}

// 文档注释：单层全部时间步的极值
// 约束：层不在层轴范围内返回 ErrOutOfRange。
func (c *Calculator) LayerMinMax(layer int, l Listener) (*Info, error) {
	if !c.f.Axes().LayerRange().Contains(layer) {
		return nil, fmt.Errorf("%w: layer %d not in %s", ErrOutOfRange, layer, c.f.Axes().LayerRange())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanLayer(layer, nil, l), nil
}

// TimestepMinMax：单层单时间步的极值
func (c *Calculator) TimestepMinMax(layer, timestep int) (*Info, error) {
	ax := c.f.Axes()
	if !ax.LayerRange().Contains(layer) {
		return nil, fmt.Errorf("%w: layer %d not in %s", ErrOutOfRange, layer, ax.LayerRange())
	}
	if !ax.TimeRange().Contains(timestep) {
		return nil, fmt.Errorf("%w: timestep %d not in %s", ErrOutOfRange, timestep, ax.TimeRange())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mergeMu.Lock()
	info, ok := c.steps[stepKey{layer, timestep}]
	c.mergeMu.Unlock()
	if ok {
		return info, nil
	}
	info = c.scanStep(layer, timestep)
	c.mergeMu.Lock()
	c.steps[stepKey{layer, timestep}] = info
	c.mergeMu.Unlock()
	return info, nil
}

// Start：在后台协程执行全局扫描，完成后经通道交付结果；不可取消
func (c *Calculator) Start(l Listener) <-chan *Info {
	ch := make(chan *Info, 1)
	go func() {
		ch <- c.PlotMinMax(l)
		close(ch)
	}()
	return ch
}

// 扫描一层；global 非空时逐时间步并入全局结果并回调，否则回调层级进度
func (c *Calculator) scanLayer(layer int, global *Info, l Listener) *Info {
	cells := int64(c.cells().Extent)
	tr := c.f.Axes().TimeRange()

	c.mergeMu.Lock()
	done, ok := c.layers[layer]
	if ok {
		if global != nil {
			global.Merge(done)
			global.IncrementCount(done.Total())
			notify(l, global)
		} else {
			notify(l, done)
		}
		c.mergeMu.Unlock()
		return done
	}
	c.mergeMu.Unlock()

	info := NewInfo(int64(tr.Extent)*cells, c.opts.Sentinels)
	for t := tr.Origin; t < tr.End(); t++ {
		c.mergeMu.Lock()
		step, ok := c.steps[stepKey{layer, t}]
		c.mergeMu.Unlock()
		if !ok {
			step = c.scanStep(layer, t)
		}

		c.mergeMu.Lock()
		c.steps[stepKey{layer, t}] = step
		info.Merge(step)
		info.IncrementCount(cells)
		if global != nil {
			global.Merge(step)
			global.IncrementCount(cells)
			notify(l, global)
		} else {
			notify(l, info)
		}
		c.mergeMu.Unlock()
	}

	c.mergeMu.Lock()
	c.layers[layer] = info
	c.mergeMu.Unlock()
	return info
}

func (c *Calculator) scanStep(layer, timestep int) *Info {
	cr := c.cells()
	r := c.f.Array()
	info := NewInfo(int64(cr.Extent), c.opts.Sentinels)
	for cell := cr.Origin; cell < cr.End(); cell++ {
		info.Visit(r.Get(c.f, timestep, cell, layer), cell)
	}
	info.IncrementCount(int64(cr.Extent))
	return info
}
