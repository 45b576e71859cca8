// 包 catalog：MPAS 变量目录（单位表、渲染/隐藏变量、维度名），以不可变配置注入
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultYAML []byte

// MissingUnit：未知单位的占位符
const MissingUnit = "-"

// AvgCellDiamVar：合成的平均单元直径变量名，恒为渲染变量
const AvgCellDiamVar = "verdi.avgCellDiam"

// Class：变量分类
type Class int

const (
	// Unsupported：维度不受支持，不对外暴露
	Unsupported Class = iota
	Plottable
	Render
	Hidden
)

func (c Class) String() string {
	switch c {
	case Plottable:
		return "plottable"
	case Render:
		return "render"
	case Hidden:
		return "hidden"
	}
	return "unsupported"
}

// 文档注释：变量目录
// 背景：替代进程级静态表；默认内容随二进制嵌入，可通过 MESH_CATALOG_PATH 指定的 YAML 整体替换。
// 约束：构造后只读，可并发使用。
type Catalog struct {
	CellDimension   string            `yaml:"cell_dimension"`
	RenderPrefix    string            `yaml:"render_prefix"`
	TimeDimensions  []string          `yaml:"time_dimensions"`
	LayerDimensions []string          `yaml:"layer_dimensions"`
	RenderVars      []string          `yaml:"render"`
	HiddenVars      []string          `yaml:"hidden"`
	Units           map[string]string `yaml:"units"`

	render, hidden, timeDims, layerDims map[string]struct{}
}

// VarDesc：待分类变量的名称、维度与 units 属性（无属性时为空）
type VarDesc struct {
	Name  string
	Dims  []string
	Units string
}

// Default：嵌入的默认目录
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded defaults: %v", err))
	}
	return c
}

// Load：path 为空时返回默认目录
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if c.CellDimension == "" {
		c.CellDimension = "nCells"
	}
	c.render = toSet(c.RenderVars)
	c.hidden = toSet(c.HiddenVars)
	c.timeDims = toSet(c.TimeDimensions)
	c.layerDims = toSet(c.LayerDimensions)
	return &c, nil
}

func toSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}

// CleanUnit：去除空格；空串或 "none" 记为 "-"
func CleanUnit(u string) string {
	u = strings.TrimSpace(strings.ReplaceAll(u, " ", ""))
	if u == "" || u == "none" {
		return MissingUnit
	}
	return u
}

// 文档注释：解析变量单位
// 背景：优先 units 属性，其次单位表，最后为 "-"；有值时统一清洗。
func (c *Catalog) Unit(name, attr string) string {
	if attr != "" {
		return CleanUnit(attr)
	}
	if u, ok := c.Units[name]; ok {
		return CleanUnit(u)
	}
	return MissingUnit
}

func (c *Catalog) IsTimeDim(d string) bool {
	_, ok := c.timeDims[d]
	return ok
}

func (c *Catalog) IsLayerDim(d string) bool {
	_, ok := c.layerDims[d]
	return ok
}

// 文档注释：变量分类
// 背景：非渲染变量必须含单元维度，且其余维度只能是时间或层维度；渲染变量与 RenderPrefix 前缀变量归为 Render；隐藏表中的变量归为 Hidden。
func (c *Catalog) Classify(v VarDesc) Class {
	_, render := c.render[v.Name]
	if !render {
		hasCell := false
		for _, d := range v.Dims {
			switch {
			case d == c.CellDimension:
				hasCell = true
			case c.IsTimeDim(d), c.IsLayerDim(d):
			default:
				return Unsupported
			}
		}
		if !hasCell {
			return Unsupported
		}
	}
	if render || (c.RenderPrefix != "" && strings.HasPrefix(v.Name, c.RenderPrefix)) {
		return Render
	}
	if _, ok := c.hidden[v.Name]; ok {
		return Hidden
	}
	return Plottable
}
