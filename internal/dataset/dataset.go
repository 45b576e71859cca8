// 包 dataset：网格数据集的生命周期（打开 → 只读共享 → 关闭）与对外的几何访问、极值查询入口
package dataset

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/golang/geo/s1"

	"meshcore/internal/catalog"
	"meshcore/internal/config"
	"meshcore/internal/frame"
	"meshcore/internal/logger"
	"meshcore/internal/mesh"
	"meshcore/internal/minmax"
	"meshcore/internal/query"
)

var (
	// ErrClosed：数据集已关闭
	ErrClosed = errors.New("dataset closed")
	// ErrNoFrame：帧或其数组读取器为空
	ErrNoFrame = errors.New("frame has no array")
	// ErrUnknownCell：单元 id 超出网格范围
	ErrUnknownCell = errors.New("unknown cell")
)

type state struct {
	mesh   *mesh.Mesh
	loc    *mesh.Locator
	engine *query.Engine
	calcs  *minmax.Cache
	cat    *catalog.Catalog
}

// 文档注释：网格数据集
// 背景：打开时一次性构建几何与索引，之后只读并可并发共享；通过 atomic.Pointer 切换状态，关闭后所有查询返回 ErrClosed 而不阻塞读路径。
// 约束：关闭不会中断已在进行中的查询，它们持有旧状态直至返回。
type Dataset struct {
	name string
	st   atomic.Pointer[state]
}

// 文档注释：打开数据集
// 背景：按配置的拆分阈值构建网格，按配置的哨兵值、并发度与缓存参数装配查询组件；MESH_CATALOG_PATH 未设置时使用内置目录。
func Open(name string, raw mesh.Raw, cfg config.Config) (*Dataset, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	m, err := mesh.Build(raw, mesh.Options{SplitSpan: cfg.SplitSpan})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	s := minmax.Sentinels{BadValue: cfg.BadValue, Missing: cfg.MissingValue, Fill: cfg.FillValue}
	st := &state{
		mesh:   m,
		loc:    mesh.NewLocator(m.Index(), m.AvgCellDiameter()),
		engine: query.NewEngine(m.Index(), query.Options{Sentinels: s, CacheSize: cfg.SliceCacheSize, CacheTTL: cfg.SliceCacheTTL}),
		calcs:  minmax.NewCache(minmax.Options{Sentinels: s, Workers: cfg.ScanWorkers}),
		cat:    cat,
	}
	d := &Dataset{name: name}
	d.st.Store(st)
	logger.L().Info("dataset_opened", "name", name, "cells", m.Len(), "index_cells", m.Index().Len())
	return d, nil
}

func (d *Dataset) Name() string { return d.name }

// Close：释放几何与缓存；重复关闭无副作用
func (d *Dataset) Close() error {
	old := d.st.Swap(nil)
	if old == nil {
		return nil
	}
	old.calcs.Clear()
	old.engine.Purge()
	logger.L().Info("dataset_closed", "name", d.name)
	return nil
}

func (d *Dataset) closed() bool { return d.st.Load() == nil }

func (d *Dataset) load() (*state, error) {
	st := d.st.Load()
	if st == nil {
		return nil, ErrClosed
	}
	return st, nil
}

func checkFrame(f frame.Frame) error {
	if f == nil || f.Array() == nil {
		return ErrNoFrame
	}
	return nil
}

// Mesh：底层网格
func (d *Dataset) Mesh() (*mesh.Mesh, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	return st.mesh, nil
}

// Catalog：变量目录
func (d *Dataset) Catalog() (*catalog.Catalog, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	return st.cat, nil
}

// Cells：按 id 排列的单元
func (d *Dataset) Cells() ([]*mesh.Cell, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	return st.mesh.Cells(), nil
}

func (d *Dataset) CellByID(id int) (*mesh.Cell, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	c, ok := st.mesh.CellByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCell, id)
	}
	return c, nil
}

// AllCells：未拆分单元与拆分后的两半
func (d *Dataset) AllCells() ([]*mesh.Cell, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	return st.mesh.Index().All(), nil
}

func (d *Dataset) LonSorted() ([]*mesh.Cell, error) { return d.sorted(mesh.AxisLon) }
func (d *Dataset) LatSorted() ([]*mesh.Cell, error) { return d.sorted(mesh.AxisLat) }

func (d *Dataset) sorted(a mesh.Axis) ([]*mesh.Cell, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	return st.mesh.Index().Sorted(a), nil
}

func (d *Dataset) SplitCells() (map[*mesh.Cell]int, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	return st.mesh.SplitCells(), nil
}

func (d *Dataset) Extents() (mesh.Extents, error) {
	st, err := d.load()
	if err != nil {
		return mesh.Extents{}, err
	}
	return st.mesh.Extents(), nil
}

func (d *Dataset) AvgCellDiameter() (s1.Angle, error) {
	st, err := d.load()
	if err != nil {
		return 0, err
	}
	return st.mesh.AvgCellDiameter(), nil
}

// CellAt：弧度坐标处的单元；approx 表示来自最近中心兜底
func (d *Dataset) CellAt(lat, lon float64) (*mesh.Cell, bool, error) {
	st, err := d.load()
	if err != nil {
		return nil, false, err
	}
	c, approx := st.loc.CellAt(lat, lon)
	return c, approx, nil
}

// GeoJSON：全部渲染单元的要素集合
func (d *Dataset) GeoJSON() ([]byte, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	return mesh.MarshalGeoJSON(st.mesh.Index().All())
}

// Elevation：单元在层中点处的高度
func (d *Dataset) Elevation(r frame.LevelReader, cellID, layer int) (float64, error) {
	if _, err := d.load(); err != nil {
		return 0, err
	}
	return frame.LayerMidpoint(r, cellID, layer), nil
}

// PlotMinMaxLon：经度切片极值
func (d *Dataset) PlotMinMaxLon(f frame.Frame, timestep int, lon, width float64) (*minmax.Info, error) {
	return d.slice(f, timestep, lon, width, mesh.AxisLon)
}

// PlotMinMaxLat：纬度切片极值
func (d *Dataset) PlotMinMaxLat(f frame.Frame, timestep int, lat, width float64) (*minmax.Info, error) {
	return d.slice(f, timestep, lat, width, mesh.AxisLat)
}

func (d *Dataset) slice(f frame.Frame, timestep int, center, width float64, a mesh.Axis) (*minmax.Info, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	if err := checkFrame(f); err != nil {
		return nil, err
	}
	if tr := f.Axes().TimeRange(); !tr.Contains(timestep) {
		return nil, fmt.Errorf("%w: timestep %d not in %s", minmax.ErrOutOfRange, timestep, tr)
	}
	return st.engine.QueryMinMax(f, timestep, center, width, a), nil
}

func (d *Dataset) calculator(f frame.Frame) (*minmax.Calculator, error) {
	st, err := d.load()
	if err != nil {
		return nil, err
	}
	if err := checkFrame(f); err != nil {
		return nil, err
	}
	return st.calcs.Get(f), nil
}

// PlotMinMax：帧全局极值
func (d *Dataset) PlotMinMax(f frame.Frame, l minmax.Listener) (*minmax.Info, error) {
	c, err := d.calculator(f)
	if err != nil {
		return nil, err
	}
	return c.PlotMinMax(l), nil
}

// StartPlotMinMax：后台执行全局扫描
func (d *Dataset) StartPlotMinMax(f frame.Frame, l minmax.Listener) (<-chan *minmax.Info, error) {
	c, err := d.calculator(f)
	if err != nil {
		return nil, err
	}
	return c.Start(l), nil
}

func (d *Dataset) LayerMinMax(f frame.Frame, layer int, l minmax.Listener) (*minmax.Info, error) {
	c, err := d.calculator(f)
	if err != nil {
		return nil, err
	}
	return c.LayerMinMax(layer, l)
}

func (d *Dataset) TimestepMinMax(f frame.Frame, layer, timestep int) (*minmax.Info, error) {
	c, err := d.calculator(f)
	if err != nil {
		return nil, err
	}
	return c.TimestepMinMax(layer, timestep)
}
