// 包 config：集中读取环境变量（可由 .env 提供），生成网格引擎的不可变运行参数
package config

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// 文档注释：网格引擎运行参数
// 背景：原先散落在各模块的常量（分割阈值、哨兵值、缓存容量）统一在构造期注入，避免进程级可变状态。
// 约束：SplitSpan 以弧度表示；哨兵值需满足 BadValue/MissingValue 小于 FillValue，否则全部数值被屏蔽。
type Config struct {
	SplitSpan      float64
	BadValue       float64
	MissingValue   float64
	FillValue      float64
	ScanWorkers    int
	SliceCacheSize int
	SliceCacheTTL  time.Duration
	CatalogPath    string
}

// 默认哨兵值：与 I/O API 与 netCDF 约定一致
const (
	DefaultBadValue     = -9.999e36
	DefaultMissingValue = -9.999e36
	DefaultFillValue    = 9.9692099683868690e36
)

// Default：返回不读取环境的默认参数
func Default() Config {
	return Config{
		SplitSpan:      1.5 * math.Pi,
		BadValue:       DefaultBadValue,
		MissingValue:   DefaultMissingValue,
		FillValue:      DefaultFillValue,
		ScanWorkers:    runtime.NumCPU(),
		SliceCacheSize: 4096,
		SliceCacheTTL:  time.Hour,
	}
}

// 文档注释：加载配置
// 背景：先尝试读取工作目录下的 .env（缺失时忽略），再以环境变量覆盖默认值。
// 约束：数值解析失败或越界时静默回退默认值，与服务端环境变量约定保持一致。
func Load() Config {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv：仅从当前进程环境读取
func FromEnv() Config {
	c := Default()
	// MESH_SPLIT_SPAN 以 π 为单位，例如 1.5 表示 1.5π
	if f, ok := envFloat("MESH_SPLIT_SPAN"); ok && f > 0 && f < 2 {
		c.SplitSpan = f * math.Pi
	}
	if f, ok := envFloat("MESH_BAD_VALUE"); ok {
		c.BadValue = f
	}
	if f, ok := envFloat("MESH_MISSING_VALUE"); ok {
		c.MissingValue = f
	}
	if f, ok := envFloat("MESH_FILL_VALUE"); ok {
		c.FillValue = f
	}
	if n, ok := envInt("MESH_SCAN_WORKERS"); ok && n > 0 {
		c.ScanWorkers = n
	}
	if n, ok := envInt("MESH_SLICE_CACHE_SIZE"); ok && n >= 0 {
		c.SliceCacheSize = n
	}
	if n, ok := envInt("MESH_SLICE_CACHE_TTL_S"); ok && n > 0 {
		c.SliceCacheTTL = time.Duration(n) * time.Second
	}
	c.CatalogPath = os.Getenv("MESH_CATALOG_PATH")
	return c
}

func envFloat(k string) (float64, bool) {
	s := os.Getenv(k)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func envInt(k string) (int, bool) {
	s := os.Getenv(k)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
