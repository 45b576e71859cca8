package config

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"MESH_SPLIT_SPAN", "MESH_BAD_VALUE", "MESH_MISSING_VALUE", "MESH_FILL_VALUE",
		"MESH_SCAN_WORKERS", "MESH_SLICE_CACHE_SIZE", "MESH_SLICE_CACHE_TTL_S", "MESH_CATALOG_PATH"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, Default(), c)
	assert.InDelta(t, 1.5*math.Pi, c.SplitSpan, 1e-12)
	assert.Equal(t, DefaultFillValue, c.FillValue)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MESH_SPLIT_SPAN", "1.8")
	t.Setenv("MESH_FILL_VALUE", "1e20")
	t.Setenv("MESH_SCAN_WORKERS", "3")
	t.Setenv("MESH_SLICE_CACHE_SIZE", "0")
	t.Setenv("MESH_SLICE_CACHE_TTL_S", "5")
	t.Setenv("MESH_CATALOG_PATH", "/etc/mesh/catalog.yaml")
	c := FromEnv()
	assert.InDelta(t, 1.8*math.Pi, c.SplitSpan, 1e-12)
	assert.Equal(t, 1e20, c.FillValue)
	assert.Equal(t, 3, c.ScanWorkers)
	assert.Equal(t, 0, c.SliceCacheSize)
	assert.Equal(t, 5*time.Second, c.SliceCacheTTL)
	assert.Equal(t, "/etc/mesh/catalog.yaml", c.CatalogPath)
}

func TestFromEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("MESH_SPLIT_SPAN", "3")
	t.Setenv("MESH_BAD_VALUE", "NaN")
	t.Setenv("MESH_SCAN_WORKERS", "-2")
	t.Setenv("MESH_SLICE_CACHE_TTL_S", "soon")
	c := FromEnv()
	d := Default()
	assert.Equal(t, d.SplitSpan, c.SplitSpan)
	assert.Equal(t, d.BadValue, c.BadValue)
	assert.Equal(t, d.ScanWorkers, c.ScanWorkers)
	assert.Equal(t, d.SliceCacheTTL, c.SliceCacheTTL)
}
