// 包 frame：数据帧与坐标轴的最小契约；引擎只消费这些接口，不拥有底层数组
package frame

import "strconv"

// Range：坐标轴区间，Origin 起始下标，Extent 长度
type Range struct {
	Origin int
	Extent int
}

// End：区间右开端点
func (r Range) End() int { return r.Origin + r.Extent }

func (r Range) Contains(i int) bool { return i >= r.Origin && i < r.End() }

func (r Range) String() string {
	return strconv.Itoa(r.Origin) + ":" + strconv.Itoa(r.Extent)
}

// Kind：数组表示形式（线性/对数），参与层级计算器缓存键
type Kind string

const (
	KindLinear Kind = "linear"
	KindLog    Kind = "log"
)

// 文档注释：帧坐标轴描述
// 背景：时间轴与层轴可缺省（nil 表示该变量不含此维度）；单元轴必有。
type Axes struct {
	Time  *Range
	Layer *Range
	Cell  Range
}

// TimeRange：缺省时间轴视为单一时间步 0
func (a Axes) TimeRange() Range {
	if a.Time == nil {
		return Range{Origin: 0, Extent: 1}
	}
	return *a.Time
}

// LayerRange：缺省层轴视为单层 0
func (a Axes) LayerRange() Range {
	if a.Layer == nil {
		return Range{Origin: 0, Extent: 1}
	}
	return *a.Layer
}

// 文档注释：数组读取能力
// 背景：按 (时间步, 单元 id, 层) 取值；拆分单元的两半均以原始单元 id 查值。
// 约束：实现需支持并发只读调用；越界行为由实现决定。
type Reader interface {
	Get(f Frame, timestep, cellID, layer int) float64
}

// ReaderFunc：函数适配器
type ReaderFunc func(f Frame, timestep, cellID, layer int) float64

func (fn ReaderFunc) Get(f Frame, timestep, cellID, layer int) float64 {
	return fn(f, timestep, cellID, layer)
}

// Frame：被查询的数据数组及其坐标轴
type Frame interface {
	Variable() string
	Kind() Kind
	Axes() Axes
	Array() Reader
}

// Static：不可变帧实现，供装载器与测试直接构造
type Static struct {
	Name      string
	ArrayKind Kind
	Ax        Axes
	Data      Reader
}

func (s *Static) Variable() string { return s.Name }

func (s *Static) Kind() Kind {
	if s.ArrayKind == "" {
		return KindLinear
	}
	return s.ArrayKind
}

func (s *Static) Axes() Axes    { return s.Ax }
func (s *Static) Array() Reader { return s.Data }

// NewRange：便捷构造可取地址的区间
func NewRange(origin, extent int) *Range { return &Range{Origin: origin, Extent: extent} }
