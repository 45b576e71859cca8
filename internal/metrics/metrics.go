package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	CellsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mesh_cells_total",
		Help: "Number of cells in the spatial index, split halves included",
	})
	SplitCellsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mesh_split_cells_total",
		Help: "Number of cells split across the antimeridian",
	})
	BuildDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mesh_build_duration_ms",
		Help:    "Mesh construction duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 20000},
	})
	SliceQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mesh_slice_queries_total",
		Help: "Total slice min/max queries by axis",
	}, []string{"axis"})
	SliceCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mesh_slice_cache_hits_total",
		Help: "Slice queries answered from the in-memory cache",
	})
	SliceDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mesh_slice_duration_ms",
		Help:    "Slice query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	CalculatorCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mesh_calculator_cache_total",
		Help: "Level calculator cache lookups by result (hit/miss)",
	}, []string{"result"})
	ScanDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mesh_scan_duration_ms",
		Help:    "Full cube min/max scan duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 20000, 60000},
	})
	ValuesScreenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mesh_values_screened_total",
		Help: "Values excluded from min/max by sentinel screening",
	})
)

func init() {
	prometheus.MustRegister(CellsTotal)
	prometheus.MustRegister(SplitCellsTotal)
	prometheus.MustRegister(BuildDurationMs)
	prometheus.MustRegister(SliceQueriesTotal)
	prometheus.MustRegister(SliceCacheHitsTotal)
	prometheus.MustRegister(SliceDurationMs)
	prometheus.MustRegister(CalculatorCacheTotal)
	prometheus.MustRegister(ScanDurationMs)
	prometheus.MustRegister(ValuesScreenedTotal)
}

// 文档注释：以文本暴露格式输出已注册指标
// 背景：引擎不监听网络端口；由宿主程序或命令行工具决定输出位置（标准输出、日志或自有 HTTP 服务）。
func WriteText(w io.Writer) error {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
