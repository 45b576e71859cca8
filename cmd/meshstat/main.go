// 程序入口：构建合成网格，执行切片与层级极值查询并输出统计摘要；可选输出 GeoJSON 与 Prometheus 文本指标
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"meshcore/internal/catalog"
	"meshcore/internal/config"
	"meshcore/internal/dataset"
	"meshcore/internal/frame"
	"meshcore/internal/logger"
	"meshcore/internal/metrics"
	"meshcore/internal/minmax"
	"meshcore/internal/synth"
)

type options struct {
	nlon, nlat      int
	layers, times   int
	sliceLon        float64
	sliceLat        float64
	sliceWidth      float64
	fillEvery       int
	geojsonPath     string
	printMetrics    bool
	startTime       string
	timestepSeconds int
}

type extremum struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	MinIndex int     `json:"min_index"`
	MaxIndex int     `json:"max_index"`
	Count    int64   `json:"count"`
	Empty    bool    `json:"empty,omitempty"`
}

type variable struct {
	Name  string   `json:"name"`
	Class string   `json:"class"`
	Unit  string   `json:"unit"`
	Dims  []string `json:"dims"`
}

type summary struct {
	Variable     variable   `json:"variable"`
	Cells        int        `json:"cells"`
	IndexCells   int        `json:"index_cells"`
	SplitCells   int        `json:"split_cells"`
	AvgDiamDeg   float64    `json:"avg_cell_diameter_deg"`
	LonMinDeg    float64    `json:"lon_min_deg"`
	LonMaxDeg    float64    `json:"lon_max_deg"`
	LatMinDeg    float64    `json:"lat_min_deg"`
	LatMaxDeg    float64    `json:"lat_max_deg"`
	DataRatio    float64    `json:"data_ratio"`
	Times        []string   `json:"times,omitempty"`
	Global       extremum   `json:"global"`
	Layers       []extremum `json:"layers"`
	LonSlice     extremum   `json:"lon_slice"`
	LatSlice     extremum   `json:"lat_slice"`
	ScanProgress int        `json:"scan_progress_events"`
}

// 无有效值时 min/max 为 ±Inf，JSON 无法表示，置零并标记 empty
func toExtremum(i *minmax.Info) extremum {
	if i.Empty() {
		return extremum{MinIndex: -1, MaxIndex: -1, Count: i.Count(), Empty: true}
	}
	return extremum{Min: i.Min(), Max: i.Max(), MinIndex: i.MinIndex(), MaxIndex: i.MaxIndex(), Count: i.Count()}
}

const fieldName = "theta"

// 合成场的维度与 MPAS 文件一致：Time、nCells、nVertLevels，缺省的轴不出现
func fieldDesc(o *options) catalog.VarDesc {
	dims := make([]string, 0, 3)
	if o.times > 0 {
		dims = append(dims, "Time")
	}
	dims = append(dims, "nCells")
	if o.layers > 0 {
		dims = append(dims, "nVertLevels")
	}
	return catalog.VarDesc{Name: fieldName, Dims: dims}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "meshstat",
		Short:         "Build a synthetic MPAS-style mesh and report geometry and min/max statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.OutOrStdout(), o)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.nlon, "nlon", 64, "cells along longitude (even)")
	f.IntVar(&o.nlat, "nlat", 32, "cells along latitude")
	f.IntVar(&o.layers, "layers", 4, "vertical layers (0 for a surface field)")
	f.IntVar(&o.times, "timesteps", 3, "timesteps (0 for a static field)")
	f.Float64Var(&o.sliceLon, "slice-lon", 0, "longitude slice center in degrees")
	f.Float64Var(&o.sliceLat, "slice-lat", 0, "latitude slice center in degrees")
	f.Float64Var(&o.sliceWidth, "slice-width", 5, "slice width in degrees")
	f.IntVar(&o.fillEvery, "fill-every", 0, "mark every n-th cell as fill value (0 disables)")
	f.StringVar(&o.geojsonPath, "geojson", "", "write cell polygons as GeoJSON to this path")
	f.BoolVar(&o.printMetrics, "metrics", false, "print Prometheus text exposition after the summary")
	f.StringVar(&o.startTime, "start", "2014-09-10_00:00:00", "first timestep as an xtime string")
	f.IntVar(&o.timestepSeconds, "timestep-seconds", 21600, "timestep length in seconds")
	return cmd
}

func run(w io.Writer, o *options) error {
	cfg := config.Load()
	l := logger.Setup()
	if o.nlon < 2 || o.nlon%2 != 0 || o.nlat < 1 {
		return fmt.Errorf("invalid grid %dx%d: nlon must be even and >= 2, nlat >= 1", o.nlon, o.nlat)
	}

	reg := dataset.NewRegistry()
	defer reg.CloseAll()
	d, err := dataset.Open("synthetic", synth.LatLonGrid(o.nlon, o.nlat), cfg)
	if err != nil {
		return err
	}
	reg.Register(d)

	cells, err := d.Cells()
	if err != nil {
		return err
	}
	all, err := d.AllCells()
	if err != nil {
		return err
	}
	splits, err := d.SplitCells()
	if err != nil {
		return err
	}
	ext, err := d.Extents()
	if err != nil {
		return err
	}
	diam, err := d.AvgCellDiameter()
	if err != nil {
		return err
	}
	cat, err := d.Catalog()
	if err != nil {
		return err
	}

	fr := synth.NewFrame(fieldName, len(cells), o.layers, o.times, synth.Field{Fill: cfg.FillValue, FillEvery: o.fillEvery})
	desc := fieldDesc(o)
	class := cat.Classify(desc)
	if class == catalog.Unsupported {
		return fmt.Errorf("variable %s with dims %v is not plottable", desc.Name, desc.Dims)
	}
	s := summary{
		Variable:   variable{Name: desc.Name, Class: class.String(), Unit: cat.Unit(desc.Name, desc.Units), Dims: desc.Dims},
		Cells:      len(cells),
		IndexCells: len(all),
		SplitCells: len(splits),
		AvgDiamDeg: diam.Degrees(),
		LonMinDeg:  deg(ext.LonMin),
		LonMaxDeg:  deg(ext.LonMax),
		LatMinDeg:  deg(ext.LatMin),
		LatMaxDeg:  deg(ext.LatMax),
		DataRatio:  ext.DataRatio,
	}

	if o.times > 0 {
		start, err := frame.ParseXTime(o.startTime)
		if err != nil {
			return err
		}
		for _, t := range frame.TimeAxis(start, time.Duration(o.timestepSeconds)*time.Second, o.times) {
			s.Times = append(s.Times, t.Format(time.RFC3339))
		}
	}

	progress := 0
	ch, err := d.StartPlotMinMax(fr, minmax.ListenerFunc(func(minmax.Snapshot) { progress++ }))
	if err != nil {
		return err
	}
	global := <-ch
	s.Global = toExtremum(global)
	s.ScanProgress = progress

	lr := fr.Axes().LayerRange()
	for layer := lr.Origin; layer < lr.End(); layer++ {
		info, err := d.LayerMinMax(fr, layer, nil)
		if err != nil {
			return err
		}
		s.Layers = append(s.Layers, toExtremum(info))
	}

	ts := fr.Axes().TimeRange().Origin
	lon, err := d.PlotMinMaxLon(fr, ts, rad(o.sliceLon), rad(o.sliceWidth))
	if err != nil {
		return err
	}
	s.LonSlice = toExtremum(lon)
	lat, err := d.PlotMinMaxLat(fr, ts, rad(o.sliceLat), rad(o.sliceWidth))
	if err != nil {
		return err
	}
	s.LatSlice = toExtremum(lat)

	if o.geojsonPath != "" {
		b, err := d.GeoJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.geojsonPath, b, 0o644); err != nil {
			return fmt.Errorf("write geojson: %w", err)
		}
		l.Info("geojson_written", "path", o.geojsonPath, "bytes", len(b))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return err
	}
	if o.printMetrics {
		return metrics.WriteText(w)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.L().Error("meshstat_failed", "err", err)
		os.Exit(1)
	}
}
