package mesh

import (
	"encoding/json"
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// 文档注释：单元转平面多边形
// 背景：以经度为 x、纬度为 y（角度制）输出闭合外环，便于交给 GIS 工具或地图前端。
// 约束：拆分单元的两半分别输出，各自位于日界线一侧。
func (c *Cell) Polygon() (*geom.Polygon, error) {
	ring := make([]geom.Coord, 0, len(c.lats)+1)
	for i := range c.lats {
		ring = append(ring, geom.Coord{c.LonDeg(i), c.LatDeg(i)})
	}
	ring = append(ring, geom.Coord{c.LonDeg(0), c.LatDeg(0)})
	return geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{ring})
}

// Feature：单元的 GeoJSON 要素，属性携带 cell_id 与 split
func (c *Cell) Feature() (*geojson.Feature, error) {
	poly, err := c.Polygon()
	if err != nil {
		return nil, err
	}
	return &geojson.Feature{
		ID:       strconv.Itoa(c.id),
		Geometry: poly,
		Properties: map[string]interface{}{
			"cell_id": c.id,
			"split":   c.split,
		},
	}, nil
}

// FeatureCollection：多个单元组成的要素集合
func FeatureCollection(cells []*Cell) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(cells))}
	for _, c := range cells {
		f, err := c.Feature()
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, f)
	}
	return fc, nil
}

// MarshalGeoJSON：要素集合编码为 GeoJSON 文本
func MarshalGeoJSON(cells []*Cell) ([]byte, error) {
	fc, err := FeatureCollection(cells)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fc)
}
