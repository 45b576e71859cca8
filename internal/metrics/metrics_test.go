package metrics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextIncludesMeshCollectors(t *testing.T) {
	CellsTotal.Set(12)
	SliceQueriesTotal.WithLabelValues("lon").Inc()
	CalculatorCacheTotal.WithLabelValues("miss").Inc()

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "mesh_cells_total 12")
	assert.Contains(t, out, `mesh_slice_queries_total{axis="lon"}`)
	assert.Contains(t, out, `mesh_calculator_cache_total{result="miss"}`)
}
